package util

import (
	"net/url"
	"strconv"
)

// Paginator разбирает limit/offset и строит ссылки на соседние страницы
type Paginator struct {
	DefaultLimit int
	MaxLimit     int
}

func NewPaginator(defaultLimit, maxLimit int) Paginator {
	return Paginator{DefaultLimit: defaultLimit, MaxLimit: maxLimit}
}

// Parse читает limit и offset из query. Некорректные значения заменяются
// значениями по умолчанию, limit выше потолка молча обрезается.
func (p Paginator) Parse(query url.Values) (limit, offset int) {
	limit = p.DefaultLimit
	if v, err := strconv.Atoi(query.Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > p.MaxLimit {
		limit = p.MaxLimit
	}

	if v, err := strconv.Atoi(query.Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// Links возвращает абсолютные ссылки next и previous или nil, если страницы нет.
// base - абсолютный URL запроса, его прочие параметры сохраняются.
func (p Paginator) Links(base *url.URL, count int64, limit, offset int) (next, previous *string) {
	if int64(offset+limit) < count {
		u := withPage(base, limit, offset+limit)
		next = &u
	}

	if offset > 0 {
		prev := offset - limit
		if prev < 0 {
			prev = 0
		}
		u := withPage(base, limit, prev)
		previous = &u
	}
	return next, previous
}

func withPage(base *url.URL, limit, offset int) string {
	u := *base
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	} else {
		q.Del("offset")
	}
	u.RawQuery = q.Encode()
	return u.String()
}
