package handler

import (
	"context"
	"net/http"
	"strings"

	"texnomart/catalog-service/internal/app/catalog/entity"
	"texnomart/catalog-service/internal/app/catalog/serializer"
	"texnomart/catalog-service/internal/app/catalog/service"
	"texnomart/catalog-service/internal/app/catalog/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CatalogHandler обрабатывает HTTP запросы каталога
type CatalogHandler struct {
	catalogService service.CatalogServiceInterface
	validator      *validator.Validate
	paginator      util.Paginator
	mediaURL       string
}

// NewCatalogHandler создает handler каталога
func NewCatalogHandler(catalogService service.CatalogServiceInterface, paginator util.Paginator, mediaURL string) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		validator:      NewValidator(),
		paginator:      paginator,
		mediaURL:       mediaURL,
	}
}

// ==================== Categories ====================

// ListCategories GET /categories/
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	q := h.listQuery(c)
	categories, total, err := h.catalogService.ListCategories(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}

	var products []entity.Product
	for i := range categories {
		products = append(products, categories[i].Products...)
	}

	ctx, ok := h.serializerContext(c, products)
	if !ok {
		return
	}
	writePage(c, h.paginator, q, total, serializer.Categories(categories, ctx))
}

// GetCategory GET /category/:slug/
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	category, err := h.catalogService.GetCategory(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, ok := h.serializerContext(c, category.Products)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, serializer.Category(category, ctx))
}

// CreateCategory POST /category/add-category/
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req entity.CategoryRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		respondError(c, err)
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Category(category, h.baseContext(c)))
}

// UpdateCategory PUT /category/:slug/edit/ - все поля обязательны
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	var req entity.CategoryRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		respondError(c, err)
		return
	}
	h.applyCategoryUpdate(c, &entity.PatchCategoryRequest{CategoryName: &req.CategoryName})
}

// PatchCategory PATCH /category/:slug/edit/ - только переданные поля
func (h *CatalogHandler) PatchCategory(c *gin.Context) {
	var req entity.PatchCategoryRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		respondError(c, err)
		return
	}
	h.applyCategoryUpdate(c, &req)
}

func (h *CatalogHandler) applyCategoryUpdate(c *gin.Context, req *entity.PatchCategoryRequest) {
	category, err := h.catalogService.UpdateCategory(c.Request.Context(), c.Param("slug"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, ok := h.serializerContext(c, category.Products)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, serializer.Category(category, ctx))
}

// DeleteCategory DELETE /category/:slug/delete/
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.catalogService.DeleteCategory(c.Request.Context(), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ==================== Products ====================

// ListProducts GET /
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	q := h.listQuery(c)
	products, total, err := h.catalogService.ListProducts(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, ok := h.serializerContext(c, products)
	if !ok {
		return
	}
	writePage(c, h.paginator, q, total, serializer.Products(products, ctx))
}

// GetProduct GET /product/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.writeProduct(c, http.StatusOK, product)
}

// CreateProduct POST /product/add-product/
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req entity.ProductRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		respondError(c, err)
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.writeProduct(c, http.StatusCreated, product)
}

// UpdateProduct PUT /product/:id/edit/ - все поля обязательны
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req entity.ProductRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		respondError(c, err)
		return
	}
	h.applyProductUpdate(c, &entity.PatchProductRequest{
		ProductName: &req.ProductName,
		Description: &req.Description,
		Price:       &req.Price,
		Category:    req.Category,
	})
}

// PatchProduct PATCH /product/:id/edit/ - только переданные поля
func (h *CatalogHandler) PatchProduct(c *gin.Context) {
	var req entity.PatchProductRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		respondError(c, err)
		return
	}
	h.applyProductUpdate(c, &req)
}

func (h *CatalogHandler) applyProductUpdate(c *gin.Context, req *entity.PatchProductRequest) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.writeProduct(c, http.StatusOK, product)
}

// DeleteProduct DELETE /product/:id/delete/
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetProductAttributes GET /product/:id/product-attributes/
func (h *CatalogHandler) GetProductAttributes(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.ProductAttributes(product))
}

// LikeProduct POST /product/:id/like/
func (h *CatalogHandler) LikeProduct(c *gin.Context) {
	h.toggleLike(c, h.catalogService.LikeProduct)
}

// UnlikeProduct DELETE /product/:id/like/
func (h *CatalogHandler) UnlikeProduct(c *gin.Context) {
	h.toggleLike(c, h.catalogService.UnlikeProduct)
}

func (h *CatalogHandler) toggleLike(c *gin.Context, apply func(ctx context.Context, id, userID uint) error) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	user := currentUser(c)
	if user == nil {
		respondError(c, errCredentialsMissing)
		return
	}

	if err := apply(c.Request.Context(), id, user.ID); err != nil {
		respondError(c, err)
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.writeProduct(c, http.StatusOK, product)
}

// ==================== Attributes ====================

// ListAttributes GET /attribute-keys/
func (h *CatalogHandler) ListAttributes(c *gin.Context) {
	q := h.listQuery(c)
	items, total, err := h.catalogService.ListAttributes(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	writePage(c, h.paginator, q, total, items)
}

// ListAttributeValues GET /attribute-values/
func (h *CatalogHandler) ListAttributeValues(c *gin.Context) {
	q := h.listQuery(c)
	items, total, err := h.catalogService.ListAttributeValues(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	writePage(c, h.paginator, q, total, items)
}

// ==================== Comments ====================

// ListComments GET /comments/
func (h *CatalogHandler) ListComments(c *gin.Context) {
	q := h.listQuery(c)
	comments, total, err := h.catalogService.ListComments(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	writePage(c, h.paginator, q, total, serializer.Comments(comments))
}

// CreateComment POST /add-comment/ - автор берется из JWT
func (h *CatalogHandler) CreateComment(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, errCredentialsMissing)
		return
	}

	var req entity.CommentRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		respondError(c, err)
		return
	}

	comment, err := h.catalogService.CreateComment(c.Request.Context(), user.ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Comment(comment))
}

// ==================== Helpers ====================

func (h *CatalogHandler) listQuery(c *gin.Context) entity.ListQuery {
	limit, offset := h.paginator.Parse(c.Request.URL.Query())
	return entity.ListQuery{
		Search: strings.TrimSpace(c.Query("search")),
		Limit:  limit,
		Offset: offset,
	}
}

func (h *CatalogHandler) baseContext(c *gin.Context) serializer.Context {
	return serializer.Context{
		UserID:   currentUserID(c),
		BaseURL:  baseURL(c.Request),
		MediaURL: h.mediaURL,
		Liked:    map[uint]bool{},
	}
}

// serializerContext собирает контекст сериализации и одним запросом загружает лайки
func (h *CatalogHandler) serializerContext(c *gin.Context, products []entity.Product) (serializer.Context, bool) {
	ctx := h.baseContext(c)

	liked, err := h.catalogService.LikedProducts(c.Request.Context(), ctx.UserID, products)
	if err != nil {
		respondError(c, err)
		return ctx, false
	}
	ctx.Liked = liked
	return ctx, true
}

func (h *CatalogHandler) writeProduct(c *gin.Context, status int, product *entity.Product) {
	ctx, ok := h.serializerContext(c, []entity.Product{*product})
	if !ok {
		return
	}
	c.JSON(status, serializer.Product(product, ctx))
}

func writePage[T any](c *gin.Context, p util.Paginator, q entity.ListQuery, total int64, results []T) {
	if results == nil {
		results = []T{}
	}
	next, previous := p.Links(absoluteURL(c.Request), total, q.Limit, q.Offset)
	c.JSON(http.StatusOK, entity.Page[T]{
		Count:    total,
		Next:     next,
		Previous: previous,
		Results:  results,
	})
}
