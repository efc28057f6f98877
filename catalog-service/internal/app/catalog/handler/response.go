package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"texnomart/catalog-service/internal/app/catalog/apperror"
	"texnomart/catalog-service/internal/app/catalog/entity"
	"texnomart/pkg/logger"

	"github.com/gin-gonic/gin"
)

// respondError отдает ошибку в формате {error, message, fields}.
// Внутренние ошибки логируются, клиент видит только общее сообщение.
func respondError(c *gin.Context, err error) {
	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindInternal {
		_ = c.Error(err)
		logger.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Msg("request failed")
	}

	c.AbortWithStatusJSON(appErr.Kind.Status(), entity.ErrorResponse{
		Error:   string(appErr.Kind),
		Message: appErr.Message,
		Fields:  appErr.Fields,
	})
}

var errNotFound = apperror.New(apperror.KindNotFound, "not found")

// idParam разбирает числовой id из пути, нечисловой id означает несуществующий ресурс
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, errNotFound)
		return 0, false
	}
	return uint(id), true
}

// baseURL возвращает scheme://host запроса с учетом reverse proxy
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

// absoluteURL возвращает полный URL запроса для ссылок пагинации
func absoluteURL(r *http.Request) *url.URL {
	u, err := url.Parse(baseURL(r))
	if err != nil {
		u = &url.URL{}
	}
	u.Path = r.URL.Path
	u.RawQuery = r.URL.RawQuery
	return u
}
