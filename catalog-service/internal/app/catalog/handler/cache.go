package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"texnomart/catalog-service/internal/app/catalog/util"
	"texnomart/pkg/logger"
	"texnomart/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// bodyRecorder дублирует тело ответа для записи в кеш
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CachePage кеширует ответы 200 на GET на время ttl.
// Ключ учитывает пользователя, так как ответ содержит is_liked.
// Инвалидации нет, изменения становятся видны по истечении ttl.
func CachePage(cache util.PageCache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cache == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		route := c.FullPath()
		key := pageCacheKey(c)
		ctx := c.Request.Context()

		body, found, err := cache.GetPage(ctx, key)
		switch {
		case err != nil:
			metrics.RecordPageCache(route, "error")
			logger.Warn().Err(err).Str("key", key).Msg("page cache lookup failed")
		case found:
			metrics.RecordPageCache(route, "hit")
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", body)
			c.Abort()
			return
		default:
			metrics.RecordPageCache(route, "miss")
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		if recorder.Status() != http.StatusOK || recorder.body.Len() == 0 {
			return
		}
		if err := cache.SetPage(ctx, key, recorder.body.Bytes(), ttl); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("failed to store page in cache")
		}
	}
}

// pageCacheKey: METHOD:scheme://host/path?отсортированный query:u:<user id|anon>.
// Хост и схема входят в ключ, так как ссылки next/previous абсолютные.
func pageCacheKey(c *gin.Context) string {
	user := "anon"
	if id := currentUserID(c); id != nil {
		user = strconv.FormatUint(uint64(*id), 10)
	}

	key := c.Request.Method + ":" + baseURL(c.Request) + c.Request.URL.Path
	if q := c.Request.URL.Query().Encode(); q != "" {
		key += "?" + q
	}
	return key + ":u:" + user
}
