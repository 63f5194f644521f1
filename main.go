package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	api "careertrack-backend/cmd/api"
	appDelivery "careertrack-backend/internal/application/delivery"
	appdomain "careertrack-backend/internal/application/domain"
	appRepo "careertrack-backend/internal/application/repository"
	appUsecase "careertrack-backend/internal/application/usecase"
	emailDelivery "careertrack-backend/internal/email/delivery"
	emaildomain "careertrack-backend/internal/email/domain"
	emailRepo "careertrack-backend/internal/email/repository"
	emailUsecase "careertrack-backend/internal/email/usecase"
	"careertrack-backend/internal/jobs"
	jobsDelivery "careertrack-backend/internal/jobs/delivery"
	networkDelivery "careertrack-backend/internal/network/delivery"
	networkdomain "careertrack-backend/internal/network/domain"
	networkRepo "careertrack-backend/internal/network/repository"
	networkUsecase "careertrack-backend/internal/network/usecase"
	"careertrack-backend/internal/settings"
	settingsDelivery "careertrack-backend/internal/settings/delivery"
	"careertrack-backend/pkg/classifier"
	"careertrack-backend/pkg/config"
	"careertrack-backend/pkg/database"
	"careertrack-backend/pkg/logger"
	"careertrack-backend/pkg/provider"
	"careertrack-backend/pkg/vault"
)

func main() {
	cfg := config.Load()

	log := logger.Setup(&logger.Config{
		Level:      cfg.LogLevel,
		FormatJSON: cfg.LogFormatJSON,
		Rotation: logger.Rotation{
			File:       cfg.LogFile,
			MaxSizeMB:  cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAgeDays: cfg.LogMaxAgeDays,
		},
	})
	defer log.Sync()

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&appdomain.Application{},
		&appdomain.FollowUp{},
		&appdomain.DocumentVariant{},
		&emaildomain.Credential{},
		&emaildomain.MessageRecord{},
		&networkdomain.Contact{},
		&settings.Setting{},
	); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	tokenVault := vault.New(cfg.EncryptionKey, log)

	providers := provider.NewRegistry(
		provider.NewGmail(cfg.GmailClientID, cfg.GmailClientSecret, log),
		provider.NewOutlook(cfg.OutlookClientID, cfg.OutlookClientSecret, log),
	)

	stageClassifier := classifier.NewService(cfg.GeminiAPIKey)

	// Repositories
	settingsRepo := settings.NewRepository(db)
	credentialRepo := emailRepo.NewCredentialRepository(db)
	messageRepo := emailRepo.NewMessageRepository(db)
	applicationRepo := appRepo.NewApplicationRepository(db)
	followUpRepo := appRepo.NewFollowUpRepository(db)
	variantRepo := appRepo.NewVariantRepository(db)
	contactRepo := networkRepo.NewContactRepository(db)

	// Use cases
	accounts := emailUsecase.NewAccountService(providers, credentialRepo, tokenVault, log)
	reconciler := emailUsecase.NewReconciler(messageRepo, applicationRepo, followUpRepo, settingsRepo, log)
	monitor := emailUsecase.NewMonitor(providers, credentialRepo, applicationRepo, reconciler, stageClassifier, tokenVault, settingsRepo, log)
	decay := networkUsecase.NewDecayService(contactRepo, settingsRepo, log)
	variants := appUsecase.NewVariantAnalysisService(variantRepo, settingsRepo, log)

	// Background schedule
	scheduler, err := jobs.NewService(log)
	if err != nil {
		log.Fatal("scheduler init failed", zap.Error(err))
	}
	if err := jobs.RegisterAll(scheduler, jobs.Deps{
		Monitor:   monitor,
		Decay:     decay,
		Variants:  variants,
		FollowUps: followUpRepo,
		Messages:  messageRepo,
		Settings:  settingsRepo,
		DB:        db,
		Log:       log,
	}); err != nil {
		log.Fatal("job registration failed", zap.Error(err))
	}
	scheduler.Start()

	r := gin.Default()
	api.SetupRoutes(r, api.Handlers{
		Email:        emailDelivery.NewEmailHandler(accounts, monitor, messageRepo),
		Applications: appDelivery.NewApplicationHandler(applicationRepo, followUpRepo, variants),
		Contacts:     networkDelivery.NewContactHandler(contactRepo),
		Jobs:         jobsDelivery.NewJobsHandler(scheduler),
		Settings:     settingsDelivery.NewSettingsHandler(settingsRepo),
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	if err := scheduler.Shutdown(); err != nil {
		log.Error("scheduler shutdown failed", zap.Error(err))
	}
}
