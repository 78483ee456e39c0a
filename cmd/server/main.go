package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/easyhome-app/easyhome-backend/internal/config"
	"github.com/easyhome-app/easyhome-backend/internal/db"
	httpHandlers "github.com/easyhome-app/easyhome-backend/internal/http/handlers"
	httpRouter "github.com/easyhome-app/easyhome-backend/internal/http/router"
	"github.com/easyhome-app/easyhome-backend/internal/identity"
	"github.com/easyhome-app/easyhome-backend/internal/logger"
	"github.com/easyhome-app/easyhome-backend/internal/payments"
	"github.com/easyhome-app/easyhome-backend/internal/repository"
	repocommon "github.com/easyhome-app/easyhome-backend/internal/repository/common"
	"github.com/easyhome-app/easyhome-backend/internal/service"
	"github.com/easyhome-app/easyhome-backend/internal/storage"
	"github.com/easyhome-app/easyhome-backend/internal/ws"
)

func main() {
	// Contexto para el apagado ordenado.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: error al cargar la configuración: %v", err)
	}

	// Logger
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Base de datos y migraciones.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: error al conectar con la base: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: error en las migraciones: %v", err)
	}

	// Colaboradores externos.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	objectStorage, err := storage.NewS3Storage(storage.Config{
		Region:   cfg.S3Region,
		Bucket:   cfg.S3Bucket,
		Endpoint: cfg.S3Endpoint,
		Timeout:  cfg.ExternalTimeout,
	})
	if err != nil {
		log.Fatalf("main: no se pudo preparar el almacenamiento de objetos: %v", err)
	}

	var groupDirectory identity.GroupDirectory
	if cfg.CognitoUserPoolID != "" {
		directory, err := identity.NewCognitoDirectory(cfg.CognitoRegion, cfg.CognitoUserPoolID, cfg.ExternalTimeout)
		if err != nil {
			log.Fatalf("main: no se pudo preparar el directorio de identidad: %v", err)
		}
		groupDirectory = directory
	} else {
		logger.Log.Warn("main: COGNITO_USER_POOL_ID no configurado, se omite la sincronización de grupos")
	}

	// Repositorios.
	userRepo := repository.NewUserRepository(dbConn)
	engagementRepo := repository.NewEngagementRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	reviewRepo := repository.NewReviewRepository(dbConn)
	reportRepo := repository.NewReportRepository(dbConn)
	providerRepo := repository.NewProviderRepository(dbConn)
	listingRepo := repository.NewListingRepository(dbConn)
	subscriptionRepo := repository.NewSubscriptionRepository(dbConn)
	txManager := repocommon.NewTxManager(dbConn)

	// Servicios.
	authService := service.NewAuthService(userRepo, tokenManager, objectStorage, cfg.PresignTTL, logger.Log)
	notificationService := service.NewNotificationService(notificationRepo, logger.Log)
	engagementService := service.NewEngagementService(engagementRepo, notificationRepo, userRepo, listingRepo, txManager, objectStorage, cfg.PresignTTL, logger.Log)
	reviewService := service.NewReviewService(reviewRepo, engagementRepo, objectStorage, cfg.PresignTTL, logger.Log)
	reportService := service.NewReportService(reportRepo, engagementRepo, notificationRepo, cfg.AdminRecipientID, logger.Log)
	providerService := service.NewProviderService(providerRepo, userRepo, notificationService, objectStorage, groupDirectory, cfg.ProviderGroupName, txManager, cfg.PresignTTL, logger.Log)
	listingService := service.NewListingService(listingRepo, userRepo)

	var subscriptionService *service.SubscriptionService
	if cfg.StripeSecretKey != "" {
		stripeClient, err := payments.NewStripeClient(payments.StripeConfig{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			SuccessURL:    cfg.StripeSuccessURL,
			CancelURL:     cfg.StripeCancelURL,
			Logger:        logger.Log,
		})
		if err != nil {
			log.Fatalf("main: no se pudo preparar la pasarela de pago: %v", err)
		}
		subscriptionService = service.NewSubscriptionService(subscriptionRepo, stripeClient, notificationService, logger.Log)
	} else {
		logger.Log.Warn("main: STRIPE_SECRET_KEY no configurado, las suscripciones quedan deshabilitadas")
	}

	// WebSockets.
	hub := ws.NewHub(ctx, logger.Log)
	go hub.Run()

	engagementService.SetHub(hub)
	notificationService.SetHub(hub)

	// Handlers HTTP.
	authHandler := httpHandlers.NewAuthHandler(authService)
	engagementHandler := httpHandlers.NewEngagementHandler(engagementService)
	reviewHandler := httpHandlers.NewReviewHandler(reviewService)
	reportHandler := httpHandlers.NewReportHandler(reportService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	providerHandler := httpHandlers.NewProviderHandler(providerService)
	listingHandler := httpHandlers.NewListingHandler(listingService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	var subscriptionHandler *httpHandlers.SubscriptionHandler
	if subscriptionService != nil {
		subscriptionHandler = httpHandlers.NewSubscriptionHandler(subscriptionService)
	}

	// Router.
	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		engagementHandler,
		reviewHandler,
		reportHandler,
		notificationHandler,
		providerHandler,
		listingHandler,
		subscriptionHandler,
		wsHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Paramos el servidor al recibir una señal.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: error al detener el servidor http: %v", err)
		}
	}()

	log.Printf("main: servidor HTTP escuchando en el puerto %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: el servidor terminó con error: %v", err)
	}
}

// safeClose cierra la conexión con la base.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: error al cerrar la base: %v", err)
	}
}
