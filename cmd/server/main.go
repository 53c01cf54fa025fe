package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/homecare-backend/internal/config"
	"github.com/ignatzorin/homecare-backend/internal/db"
	"github.com/ignatzorin/homecare-backend/internal/gateway"
	"github.com/ignatzorin/homecare-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/homecare-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/homecare-backend/internal/http/router"
	"github.com/ignatzorin/homecare-backend/internal/logger"
	"github.com/ignatzorin/homecare-backend/internal/repository"
	"github.com/ignatzorin/homecare-backend/internal/service"
	"github.com/ignatzorin/homecare-backend/internal/storage"
	"github.com/ignatzorin/homecare-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	photoStorage, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	gatewayClient := gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewayAPIKey, cfg.GatewayTimeout)
	cache := service.NewCacheService()

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	professionalRepo := repository.NewProfessionalRepository(dbConn)
	availabilityRepo := repository.NewAvailabilityRepository(dbConn)
	proposalRepo := repository.NewProposalRepository(dbConn)
	jobRepo := repository.NewJobRepository(dbConn)
	ratingRepo := repository.NewRatingRepository(dbConn)
	paymentRepo := repository.NewPaymentRepository(dbConn)
	cashOutRepo := repository.NewCashOutRepository(dbConn)
	messageRepo := repository.NewMessageRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub()
	goroutine.SafeGo(hub.Run)
	chatNotifier := ws.NewChatNotifier(hub)

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	profileService := service.NewProfileService(userRepo, professionalRepo, gatewayClient, photoStorage, cache)
	availabilityService := service.NewAvailabilityService(availabilityRepo, professionalRepo)
	negotiationService := service.NewNegotiationService(proposalRepo, professionalRepo, jobRepo, cfg.MinServicePrice)
	jobService := service.NewJobService(jobRepo, professionalRepo, ratingRepo, paymentRepo)
	paymentService := service.NewPaymentService(paymentRepo, jobRepo, userRepo, professionalRepo, gatewayClient, cache)
	cashOutService := service.NewCashOutService(cashOutRepo, professionalRepo, gatewayClient)
	messageService := service.NewMessageService(messageRepo, jobRepo, paymentRepo, professionalRepo, chatNotifier)

	// Периодическая чистка протухших refresh сессий.
	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := userRepo.DeleteExpiredSessions(ctx, time.Now()); err != nil {
					logger.Log.WithError(err).Warn("main: не удалось удалить протухшие сессии")
				}
			}
		}
	})

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	profileHandler := httpHandlers.NewProfileHandler(profileService)
	professionalHandler := httpHandlers.NewProfessionalHandler(profileService)
	availabilityHandler := httpHandlers.NewAvailabilityHandler(availabilityService)
	proposalHandler := httpHandlers.NewProposalHandler(negotiationService)
	jobHandler := httpHandlers.NewJobHandler(jobService)
	paymentHandler := httpHandlers.NewPaymentHandler(paymentService)
	cashOutHandler := httpHandlers.NewCashOutHandler(cashOutService)
	chatHandler := httpHandlers.NewChatHandler(messageService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		profileHandler,
		professionalHandler,
		availabilityHandler,
		proposalHandler,
		jobHandler,
		paymentHandler,
		cashOutHandler,
		chatHandler,
		wsHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
