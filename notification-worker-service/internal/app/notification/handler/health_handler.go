package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"texnomart/notification-worker-service/internal/app/notification/repository"
	"texnomart/pkg/logger"
)

// HealthCheckHandler отдает состояние зависимостей воркера
type HealthCheckHandler struct {
	redisClient *redis.Client
	mongoClient *mongo.Client // nil, если аудит в MongoDB выключен
	retryQueue  repository.RetryQueue
}

func NewHealthCheckHandler(
	redisClient *redis.Client,
	mongoClient *mongo.Client,
	retryQueue repository.RetryQueue,
) *HealthCheckHandler {
	return &HealthCheckHandler{
		redisClient: redisClient,
		mongoClient: mongoClient,
		retryQueue:  retryQueue,
	}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}

func (h *HealthCheckHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	overallStatus := "healthy"

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		checks["redis"] = "unhealthy: " + err.Error()
		overallStatus = "unhealthy"
	} else {
		checks["redis"] = "healthy"
	}

	// MongoDB - дополнительный приемник, его недоступность не валит воркер
	if h.mongoClient != nil {
		if err := h.mongoClient.Ping(ctx, nil); err != nil {
			checks["mongo"] = "warning: " + err.Error()
		} else {
			checks["mongo"] = "healthy"
		}
	}

	if pending, err := h.retryQueue.Len(ctx); err == nil {
		checks["pending_notifications"] = strconv.FormatInt(pending, 10)
	}

	response := HealthResponse{
		Status:    overallStatus,
		Checks:    checks,
		Timestamp: time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	if overallStatus != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Warn().Err(err).Msg("failed to encode health response")
	}
}

func (h *HealthCheckHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		http.Error(w, "redis not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

func (h *HealthCheckHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}

func (h *HealthCheckHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/health/readiness", h.Readiness)
	mux.HandleFunc("/health/liveness", h.Liveness)
}
