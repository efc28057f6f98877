package handler

import (
	"net/http"

	"texnomart/catalog-service/internal/app/catalog/entity"
	"texnomart/catalog-service/internal/app/catalog/serializer"
	"texnomart/catalog-service/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// AuthHandler обрабатывает регистрацию, вход и выдачу токенов
type AuthHandler struct {
	authService service.AuthServiceInterface
	validator   *validator.Validate
}

func NewAuthHandler(authService service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   NewValidator(),
	}
}

// Register POST /register/
func (h *AuthHandler) Register(c *gin.Context) {
	var req entity.RegisterRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.User(user))
}

// Login POST /login/ и /api-token-auth/ - выдает opaque токен
func (h *AuthHandler) Login(c *gin.Context) {
	var req entity.LoginRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		respondError(c, err)
		return
	}

	token, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.TokenResponse{Token: token})
}

// Logout POST /logout/ - удаляет opaque токен вызывающего
func (h *AuthHandler) Logout(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, errCredentialsMissing)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Successfully logged out."})
}

// ObtainTokenPair POST /api/token/
func (h *AuthHandler) ObtainTokenPair(c *gin.Context) {
	var req entity.LoginRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		respondError(c, err)
		return
	}

	pair, err := h.authService.ObtainTokenPair(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// RefreshToken POST /api/token/refresh/
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req entity.RefreshRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		respondError(c, err)
		return
	}

	access, err := h.authService.RefreshAccessToken(c.Request.Context(), req.Refresh)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.AccessResponse{Access: access})
}
