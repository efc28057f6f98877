package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"texnomart/notification-worker-service/internal/app/notification/config"
	"texnomart/notification-worker-service/internal/app/notification/handler"
	"texnomart/notification-worker-service/internal/app/notification/processor"
	"texnomart/notification-worker-service/internal/app/notification/repository"
	"texnomart/notification-worker-service/internal/app/notification/service"
	"texnomart/pkg/logger"
)

func main() {
	// === ИНИЦИАЛИЗАЦИЯ КОНФИГУРАЦИИ ===
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("notification-worker", cfg.Log.Level)
	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, "notification-worker", cfg.Log.Level); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Log.LogstashAddr).Msg("logstash unavailable, logging to stdout only")
		}
	}
	logger.Info().Msg("starting notification worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === ПОДКЛЮЧЕНИЕ К REDIS ===
	// Redis хранит очередь неотправленных уведомлений
	redisClient, err := connectRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	logger.Info().Str("addr", cfg.Redis.Address()).Msg("connected to redis")

	// === ПРИЕМНИКИ АУДИТА ===
	sinks := []repository.AuditSink{
		repository.NewFileAuditSink(cfg.Audit.FilePath, cfg.Audit.Mode),
	}

	var mongoClient *mongo.Client
	if cfg.Mongo.MongoEnabled() {
		mongoClient, err = connectMongoDB(cfg.Mongo)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to mongodb")
		}
		defer func() {
			disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer disconnectCancel()
			mongoClient.Disconnect(disconnectCtx)
		}()

		mongoSink := repository.NewMongoAuditSink(
			mongoClient.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection),
		)
		if err := mongoSink.EnsureIndexes(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to ensure audit indexes")
		}
		sinks = append(sinks, mongoSink)
		logger.Info().Str("database", cfg.Mongo.Database).Msg("mongodb audit sink enabled")
	}

	// === ИНИЦИАЛИЗАЦИЯ СЕРВИСОВ ===
	retryQueue := repository.NewRedisRetryQueue(redisClient)
	mailer := service.NewSMTPMailer(cfg.SMTP)

	notificationSvc := service.NewNotificationService(
		mailer,
		retryQueue,
		sinks,
		cfg.Notify.OperatorEmail,
		cfg.Notify.MaxAttempts,
		cfg.Notify.SendTimeout,
	)

	// === ИНИЦИАЛИЗАЦИЯ KAFKA CONSUMER ===
	kafkaConsumer := processor.NewKafkaConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.Topic,
		cfg.Kafka.GroupID,
		cfg.Kafka.MinBytes,
		cfg.Kafka.MaxBytes,
		notificationSvc,
	)
	kafkaConsumer.Start(ctx)

	// === ИНИЦИАЛИЗАЦИЯ CRON SCHEDULER ===
	cronScheduler := processor.NewCronScheduler(notificationSvc)
	if err := cronScheduler.Start(ctx, cfg.Notify.RetrySchedule); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.Notify.RetrySchedule).Msg("failed to start cron scheduler")
	}

	// === HEALTHCHECK И METRICS ===
	healthHandler := handler.NewHealthCheckHandler(redisClient, mongoClient, retryQueue)

	mux := http.NewServeMux()
	healthHandler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("starting health server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("health server error")
		}
	}()

	logger.Info().
		Str("topic", cfg.Kafka.Topic).
		Str("operator", cfg.Notify.OperatorEmail).
		Str("audit_file", cfg.Audit.FilePath).
		Msg("notification worker is running")

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down notification worker")

	// сначала останавливаем прием событий, затем отменяем текущие операции
	kafkaConsumer.Stop()
	cronScheduler.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("health server shutdown error")
	}

	logger.Info().Msg("notification worker stopped")
}

// connectRedis устанавливает соединение с Redis с повторными попытками
func connectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	var err error
	for i := 0; i < 10; i++ {
		if err = client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		logger.Warn().Int("attempt", i+1).Err(err).Msg("failed to connect to redis, retrying")
		time.Sleep(3 * time.Second)
	}

	client.Close()
	return nil, fmt.Errorf("failed to connect to redis after 10 attempts: %w", err)
}

// connectMongoDB подключается к MongoDB с повторными попытками
func connectMongoDB(cfg config.MongoConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	var client *mongo.Client
	var err error

	for i := 0; i < 10; i++ {
		client, err = tryConnectMongo(clientOptions)
		if err == nil {
			return client, nil
		}

		logger.Warn().Int("attempt", i+1).Err(err).Msg("failed to connect to mongodb, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, err
}

func tryConnectMongo(clientOptions *options.ClientOptions) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}
