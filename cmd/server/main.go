package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quest-server/internal/clients"
	"quest-server/internal/config"
	"quest-server/internal/handler"
	"quest-server/internal/messaging"
	"quest-server/internal/middleware"
	"quest-server/internal/repository"
	"quest-server/internal/service"
	"quest-server/migrations"
	"quest-server/pkg/database"
	pkgLogger "quest-server/pkg/logger"
	"quest-server/pkg/migration"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	log.Println("Запуск Quest Service...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger, err := pkgLogger.New(pkgLogger.Config{
		Level: cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer logger.Sync()
	logger.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))

	ctx := context.Background()

	// Подключение к PostgreSQL
	dbPool, err := database.NewPool(ctx, database.Config{
		DSN:         cfg.GetDSN(),
		MaxConns:    cfg.DBMaxConns,
		IdleTimeout: cfg.DBIdleTimeout,
	})
	if err != nil {
		logger.Fatal("Не удалось подключиться к БД", zap.Error(err))
	}
	defer dbPool.Close()
	logger.Info("Успешное подключение к PostgreSQL")

	// Миграции схемы
	migrator := migration.NewMigrator(migration.Config{
		MigrationsPath: migrations.Dir,
		MigrationsFS:   migrations.FS,
	}, dbPool)
	if err := migrator.Up(ctx); err != nil {
		logger.Fatal("Не удалось применить миграции", zap.Error(err))
	}

	// Redis-кэш документов историй
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	var storyCache repository.StoryCache
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// Кэш опционален: без Redis все чтения документов идут в БД.
		logger.Warn("Redis недоступен, кэш документов отключен", zap.Error(err))
	} else {
		storyCache = repository.NewRedisStoryCache(redisClient, cfg.StoryCacheTTL, logger)
		logger.Info("Успешное подключение к Redis")
	}

	// RabbitMQ - очередь обновлений забегов для socket-слоя
	var runUpdatePublisher messaging.RunUpdatePublisher
	if cfg.RabbitMQURL != "" {
		rabbitConn, err := connectRabbitMQ(cfg.RabbitMQURL, logger)
		if err != nil {
			logger.Fatal("Не удалось подключиться к RabbitMQ", zap.Error(err))
		}
		defer rabbitConn.Close()

		runUpdatePublisher, err = messaging.NewRabbitMQRunUpdatePublisher(rabbitConn, cfg.RunUpdatesQueueName)
		if err != nil {
			logger.Fatal("Не удалось создать RunUpdatePublisher", zap.Error(err))
		}
		logger.Info("Успешное подключение к RabbitMQ")
	} else {
		logger.Warn("RABBITMQ_URL не задан, обновления забегов публиковаться не будут")
	}

	// Инициализация зависимостей
	storyRepo := repository.NewPgStoryRepository(dbPool, logger)
	bindingRepo := repository.NewPgBindingRepository(dbPool, logger)
	runRepo := repository.NewPgRunRepository(dbPool, logger)

	gameAPIClient := clients.NewHTTPGameAPIClient(cfg.GameAPIURL, cfg.InterServiceToken, logger)

	storyService := service.NewStoryService(storyRepo, storyCache, logger)
	bindingService := service.NewBindingService(bindingRepo, storyService, logger)
	runManager := service.NewRunManager(runRepo, logger)
	dispatcher := service.NewEffectDispatcher(gameAPIClient, gameAPIClient, gameAPIClient, logger)
	navigationService := service.NewNavigationService(
		storyService, runManager, bindingRepo, dispatcher, runUpdatePublisher, logger)

	questHandler := handler.NewQuestHandler(storyService, bindingService, navigationService, cfg.JWTSecret, logger)

	// Настройка Gin
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	prom := ginprometheus.NewPrometheus("quest")
	prom.Use(router)

	questHandler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Quest сервер слушает", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Ошибка запуска HTTP сервера", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Получен сигнал завершения, начинаем graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка при graceful shutdown HTTP сервера", zap.Error(err))
	}

	log.Println("Quest Service успешно остановлен")
}

// connectRabbitMQ пытается подключиться к RabbitMQ с несколькими попытками
func connectRabbitMQ(url string, logger *zap.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	maxRetries := 5
	retryDelay := 5 * time.Second
	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		logger.Warn("Не удалось подключиться к RabbitMQ",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Duration("retry_delay", retryDelay),
			zap.Error(err),
		)
		time.Sleep(retryDelay)
	}
	return nil, err
}
