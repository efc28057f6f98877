package handler

import (
	"strings"

	"texnomart/catalog-service/internal/app/catalog/apperror"
	"texnomart/catalog-service/internal/app/catalog/entity"
	"texnomart/catalog-service/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
)

// Scheme - схема аутентификации маршрута
type Scheme int

const (
	SchemeNone  Scheme = iota // открытый маршрут
	SchemeToken               // Authorization: Token <key>
	SchemeJWT                 // Authorization: Bearer <jwt>
)

// Policy - требование маршрута к аутентификации.
// AllowAnonymous пропускает запрос без заголовка, но проверяет заголовок, если он есть.
type Policy struct {
	Scheme         Scheme
	AllowAnonymous bool
}

// PolicyTable сопоставляет "METHOD /route/:template" с политикой
type PolicyTable map[string]Policy

var (
	openPolicy  = Policy{Scheme: SchemeNone, AllowAnonymous: true}
	tokenPolicy = Policy{Scheme: SchemeToken}
	jwtPolicy   = Policy{Scheme: SchemeJWT}
)

// defaultPolicy применяется к маршрутам, которых нет в таблице
var defaultPolicy = tokenPolicy

const userContextKey = "user"

var (
	errCredentialsMissing = apperror.New(apperror.KindAuthentication, "Authentication credentials were not provided.")
	errWrongScheme        = apperror.New(apperror.KindAuthentication, "Invalid authorization header format")
)

// DefaultPolicies - политики всех маршрутов API
func DefaultPolicies() PolicyTable {
	return PolicyTable{
		"GET /categories/":               tokenPolicy,
		"GET /category/:slug/":           tokenPolicy,
		"POST /category/add-category/":   tokenPolicy,
		"PUT /category/:slug/edit/":      tokenPolicy,
		"PATCH /category/:slug/edit/":    tokenPolicy,
		"DELETE /category/:slug/delete/": tokenPolicy,

		"GET /":                                jwtPolicy,
		"GET /product/:id":                     tokenPolicy,
		"POST /product/add-product/":           tokenPolicy,
		"PUT /product/:id/edit/":               tokenPolicy,
		"PATCH /product/:id/edit/":             tokenPolicy,
		"DELETE /product/:id/delete/":          tokenPolicy,
		"GET /product/:id/product-attributes/": openPolicy,
		"POST /product/:id/like/":              tokenPolicy,
		"DELETE /product/:id/like/":            tokenPolicy,

		"GET /attribute-keys/":   openPolicy,
		"GET /attribute-values/": openPolicy,
		"GET /comments/":         openPolicy,
		"POST /add-comment/":     jwtPolicy,

		"POST /register/":          openPolicy,
		"POST /login/":             openPolicy,
		"POST /api-token-auth/":    openPolicy,
		"POST /logout/":            tokenPolicy,
		"POST /api/token/":         openPolicy,
		"POST /api/token/refresh/": openPolicy,

		"GET /modelviewset/categories/":          tokenPolicy,
		"POST /modelviewset/categories/":         tokenPolicy,
		"GET /modelviewset/categories/:slug/":    tokenPolicy,
		"PUT /modelviewset/categories/:slug/":    tokenPolicy,
		"PATCH /modelviewset/categories/:slug/":  tokenPolicy,
		"DELETE /modelviewset/categories/:slug/": tokenPolicy,
		"GET /modelviewset/products/":            tokenPolicy,
		"POST /modelviewset/products/":           tokenPolicy,
		"GET /modelviewset/products/:id/":        tokenPolicy,
		"PUT /modelviewset/products/:id/":        tokenPolicy,
		"PATCH /modelviewset/products/:id/":      tokenPolicy,
		"DELETE /modelviewset/products/:id/":     tokenPolicy,

		"GET /health":  openPolicy,
		"GET /metrics": openPolicy,
	}
}

// Lookup возвращает политику маршрута
func (t PolicyTable) Lookup(method, route string) Policy {
	if p, ok := t[method+" "+route]; ok {
		return p
	}
	return defaultPolicy
}

// AuthMiddleware - единая точка проверки политик, ставится на весь engine
type AuthMiddleware struct {
	authService service.AuthServiceInterface
	policies    PolicyTable
}

func NewAuthMiddleware(authService service.AuthServiceInterface, policies PolicyTable) *AuthMiddleware {
	return &AuthMiddleware{authService: authService, policies: policies}
}

// Enforce проверяет политику найденного маршрута до вызова handler
func (m *AuthMiddleware) Enforce() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			// 404/405 отдает сам gin
			c.Next()
			return
		}

		policy := m.policies.Lookup(c.Request.Method, route)
		if policy.Scheme == SchemeNone {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			if policy.AllowAnonymous {
				c.Next()
				return
			}
			respondError(c, errCredentialsMissing)
			return
		}

		user, err := m.authenticate(c, policy.Scheme, header)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context, scheme Scheme, header string) (*entity.User, error) {
	prefix, credentials, ok := strings.Cut(header, " ")
	credentials = strings.TrimSpace(credentials)
	if !ok || credentials == "" {
		return nil, errWrongScheme
	}

	ctx := c.Request.Context()
	switch {
	case scheme == SchemeToken && strings.EqualFold(prefix, "Token"):
		return m.authService.AuthenticateToken(ctx, credentials)
	case scheme == SchemeJWT && strings.EqualFold(prefix, "Bearer"):
		return m.authService.AuthenticateJWT(ctx, credentials)
	default:
		return nil, errWrongScheme
	}
}

// currentUser возвращает аутентифицированного пользователя или nil
func currentUser(c *gin.Context) *entity.User {
	if v, ok := c.Get(userContextKey); ok {
		if user, ok := v.(*entity.User); ok {
			return user
		}
	}
	return nil
}

// currentUserID возвращает id пользователя или nil для анонимного запроса
func currentUserID(c *gin.Context) *uint {
	if user := currentUser(c); user != nil {
		id := user.ID
		return &id
	}
	return nil
}
