package serializer

import (
	"encoding/json"
	"testing"

	"texnomart/catalog-service/internal/app/catalog/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func anonymous() Context {
	return Context{BaseURL: "http://shop.local", MediaURL: "/media/"}
}

func userContext(id uint, liked ...uint) Context {
	ctx := anonymous()
	ctx.UserID = uintPtr(id)
	ctx.Liked = map[uint]bool{}
	for _, p := range liked {
		ctx.Liked[p] = true
	}
	return ctx
}

func attr(id uint, name, value string) entity.ProductAttribute {
	return entity.ProductAttribute{
		ID:        id,
		Attribute: &entity.Attribute{AttributeName: name},
		Value:     &entity.AttributeValue{AttributeValue: value},
	}
}

func TestRating(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    int
	}{
		{"no comments", nil, 0},
		{"single", []int{4}, 4},
		{"rounds down", []int{4, 4, 5}, 4},  // 4.33
		{"rounds half up", []int{4, 5}, 5},  // 4.5
		{"rounds up", []int{5, 5, 4}, 5},    // 4.67
		{"lowest", []int{1, 1, 2, 1}, 1},    // 1.25
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comments := make([]entity.Comment, 0, len(tt.ratings))
			for _, r := range tt.ratings {
				comments = append(comments, entity.Comment{Rating: r})
			}

			assert.Equal(t, tt.want, Rating(comments))
		})
	}
}

func TestAttributeMap(t *testing.T) {
	// Arrange
	rows := []entity.ProductAttribute{attr(1, "color", "red"), attr(2, "size", "M")}

	// Act
	got := AttributeMap(rows)

	// Assert
	assert.Equal(t, map[string]string{"color": "red", "size": "M"}, got)
}

func TestAttributeMap_DuplicateKeepsLast(t *testing.T) {
	rows := []entity.ProductAttribute{attr(1, "color", "red"), attr(5, "color", "blue")}

	assert.Equal(t, map[string]string{"color": "blue"}, AttributeMap(rows))
}

func TestAttributeMap_SkipsDanglingRows(t *testing.T) {
	rows := []entity.ProductAttribute{{ID: 1}, attr(2, "size", "L")}

	assert.Equal(t, map[string]string{"size": "L"}, AttributeMap(rows))
}

func TestProduct_EmptyRelations(t *testing.T) {
	// Arrange
	p := &entity.Product{ID: 1, ProductName: "Kettle", Slug: "kettle", Price: decimal.RequireFromString("19.9")}

	// Act
	got := Product(p, anonymous())

	// Assert
	assert.Equal(t, 0, got.Rating)
	assert.False(t, got.IsLiked)
	assert.Nil(t, got.CategoryName)
	assert.Nil(t, got.PrimaryImage)
	assert.Empty(t, got.AllImages)
	assert.NotNil(t, got.AllImages)
	assert.Empty(t, got.Attributes)
	assert.Equal(t, "19.90", got.Price)
}

func TestProduct_ComputedFields(t *testing.T) {
	// Arrange
	p := &entity.Product{
		ID:          3,
		ProductName: "Smart TV",
		Price:       decimal.RequireFromString("499.00"),
		CategoryID:  uintPtr(2),
		Category:    &entity.Category{ID: 2, CategoryName: "TVs"},
		Images: []entity.Image{
			{ID: 1, Image: "products/tv-back.jpg"},
			{ID: 2, Image: "products/tv-front.jpg", IsPrimary: true},
			{ID: 3, Image: "products/tv-side.jpg", IsPrimary: true},
		},
		Comments: []entity.Comment{
			{ID: 1, ProductID: 3, UserID: 9, Rating: 5, Message: "great"},
			{ID: 2, ProductID: 3, UserID: 8, Rating: 4, Message: "ok"},
		},
		ProductAttributes: []entity.ProductAttribute{attr(1, "diagonal", "55")},
	}

	// Act
	got := Product(p, userContext(9, 3))

	// Assert
	require.NotNil(t, got.CategoryName)
	assert.Equal(t, "TVs", *got.CategoryName)
	require.NotNil(t, got.PrimaryImage)
	assert.Equal(t, "http://shop.local/media/products/tv-front.jpg", *got.PrimaryImage)
	assert.Equal(t, []string{
		"http://shop.local/media/products/tv-back.jpg",
		"http://shop.local/media/products/tv-front.jpg",
		"http://shop.local/media/products/tv-side.jpg",
	}, got.AllImages)
	assert.Equal(t, 5, got.Rating) // 4.5
	assert.True(t, got.IsLiked)
	assert.Len(t, got.Comments, 2)
	assert.Equal(t, map[string]string{"diagonal": "55"}, got.Attributes)
}

func TestProduct_IsLikedFalseForAnonymous(t *testing.T) {
	// Arrange: даже если карта лайков заполнена, аноним не видит лайк
	ctx := anonymous()
	ctx.Liked = map[uint]bool{1: true}
	p := &entity.Product{ID: 1}

	// Act
	got := Product(p, ctx)

	// Assert
	assert.False(t, got.IsLiked)
}

func TestProduct_IsLikedFalseForOtherUser(t *testing.T) {
	got := Product(&entity.Product{ID: 1}, userContext(2))

	assert.False(t, got.IsLiked)
}

func TestProduct_JSONShape(t *testing.T) {
	// Arrange
	p := &entity.Product{ID: 1, ProductName: "Kettle", Slug: "kettle", Price: decimal.NewFromInt(20)}

	// Act
	raw, err := json.Marshal(Product(p, anonymous()))
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))

	// Assert
	for _, field := range []string{
		"id", "product_name", "slug", "description", "price", "category", "created_at", "updated_at",
		"comments", "category_name", "primary_image", "all_images", "rating", "is_liked", "attributes",
	} {
		assert.Contains(t, got, field)
	}
	assert.NotContains(t, got, "users_like")
	assert.NotContains(t, got, "liked_by")
	assert.Nil(t, got["category_name"])
	assert.Nil(t, got["primary_image"])
}

func TestCategory_NestsProducts(t *testing.T) {
	c := &entity.Category{
		ID:           1,
		CategoryName: "Kitchen",
		Slug:         "kitchen",
		Products:     []entity.Product{{ID: 10}, {ID: 11}},
	}

	got := Category(c, anonymous())

	assert.Equal(t, "kitchen", got.Slug)
	require.Len(t, got.Products, 2)
	assert.Equal(t, uint(10), got.Products[0].ID)
}

func TestAbsoluteMedia(t *testing.T) {
	tests := []struct {
		name  string
		ctx   Context
		path  string
		want  string
	}{
		{"relative path", Context{BaseURL: "https://a.b", MediaURL: "/media/"}, "x/y.png", "https://a.b/media/x/y.png"},
		{"leading slash", Context{BaseURL: "https://a.b/", MediaURL: "media"}, "/x.png", "https://a.b/media/x.png"},
		{"no media prefix", Context{BaseURL: "https://a.b", MediaURL: ""}, "x.png", "https://a.b/x.png"},
		{"already absolute", Context{BaseURL: "https://a.b", MediaURL: "/media/"}, "https://cdn/x.png", "https://cdn/x.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ctx.AbsoluteMedia(tt.path))
		})
	}
}

func TestImage_RawPath(t *testing.T) {
	img := &entity.Image{ID: 4, Image: "products/a.jpg", IsPrimary: true, ProductID: uintPtr(3)}

	got := Image(img)

	assert.Equal(t, "products/a.jpg", got.Image)
	assert.Equal(t, uintPtr(3), got.Product)
	assert.Nil(t, got.Category)
}

func TestUser_OmitsPassword(t *testing.T) {
	raw, err := json.Marshal(User(&entity.User{ID: 1, Username: "alice", Email: "a@x.io", PasswordHash: "secret"}))
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":1,"username":"alice","email":"a@x.io"}`, string(raw))
}
