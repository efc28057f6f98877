package util

import "github.com/gosimple/slug"

// Slugify строит URL slug из названия (транслитерация, нижний регистр, дефисы)
func Slugify(name string) string {
	return slug.Make(name)
}
