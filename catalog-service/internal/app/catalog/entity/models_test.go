package entity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

var schemaCache = &sync.Map{}

// constraintsOf возвращает внешние ключи, которые AutoMigrate создаст для связей модели
func constraintsOf(t *testing.T, model interface{}) map[string]*schema.Constraint {
	t.Helper()

	s, err := schema.Parse(model, schemaCache, schema.NamingStrategy{})
	require.NoError(t, err)

	out := make(map[string]*schema.Constraint)
	for name, rel := range s.Relationships.Relations {
		if c := rel.ParseConstraint(); c != nil {
			out[name] = c
		}
	}
	return out
}

func TestCategory_DeleteRules(t *testing.T) {
	// Act
	constraints := constraintsOf(t, &Category{})

	// Assert
	require.Contains(t, constraints, "Products")
	assert.Equal(t, "SET NULL", constraints["Products"].OnDelete)
	assert.Equal(t, "products", constraints["Products"].Schema.Table)

	require.Contains(t, constraints, "Images")
	assert.Equal(t, "CASCADE", constraints["Images"].OnDelete)
}

func TestProduct_DeleteRules(t *testing.T) {
	// Act
	constraints := constraintsOf(t, &Product{})

	// Assert
	for _, rel := range []string{"Images", "Comments", "ProductAttributes"} {
		require.Contains(t, constraints, rel)
		assert.Equal(t, "CASCADE", constraints[rel].OnDelete, rel)
	}
}

func TestProduct_LikesJoinTableCascades(t *testing.T) {
	// Arrange
	s, err := schema.Parse(&Product{}, schemaCache, schema.NamingStrategy{})
	require.NoError(t, err)

	likes := s.Relationships.Relations["LikedBy"]
	require.NotNil(t, likes)
	require.NotNil(t, likes.JoinTable)
	assert.Equal(t, "product_likes", likes.JoinTable.Table)

	// Act
	var onDelete []string
	for _, rel := range likes.JoinTable.Relationships.Relations {
		if c := rel.ParseConstraint(); c != nil {
			onDelete = append(onDelete, c.OnDelete)
		}
	}

	// Assert: удаление товара или пользователя снимает лайк
	assert.Equal(t, []string{"CASCADE", "CASCADE"}, onDelete)
}

func TestDependents_BelongsToRulesNotDuplicated(t *testing.T) {
	// Ограничения для этих связей создаются со стороны has-many
	assert.NotContains(t, constraintsOf(t, &Comment{}), "Product")
	assert.NotContains(t, constraintsOf(t, &ProductAttribute{}), "Product")
	assert.NotContains(t, constraintsOf(t, &Product{}), "Category")
}

func TestComment_UserCascade(t *testing.T) {
	constraints := constraintsOf(t, &Comment{})

	require.Contains(t, constraints, "User")
	assert.Equal(t, "CASCADE", constraints["User"].OnDelete)
}
