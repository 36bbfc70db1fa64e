package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/unclebandit/scaletracker-backend/internal/config"
	"github.com/unclebandit/scaletracker-backend/internal/controller"
	"github.com/unclebandit/scaletracker-backend/internal/db"
	"github.com/unclebandit/scaletracker-backend/internal/events"
	"github.com/unclebandit/scaletracker-backend/internal/repository"
	"github.com/unclebandit/scaletracker-backend/internal/service"
	"github.com/unclebandit/scaletracker-backend/internal/sheets"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on OS environment variables")
	}

	cfg, err := config.LoadFromEnv("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	conn, err := db.Connect(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	defer conn.Close()

	if err := db.Migrate(conn); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	campaignRepo := &repository.CampaignRepository{DB: conn}
	notificationRepo := &repository.NotificationRepository{DB: conn}
	settingsRepo := &repository.SettingsRepository{DB: conn}

	// The sink reads its OAuth material lazily from settings, so
	// credentials can be configured at runtime without a restart.
	sink := sheets.NewClient(func() (sheets.Credentials, error) {
		settings, err := settingsRepo.All()
		if err != nil {
			return sheets.Credentials{}, err
		}
		return sheets.Credentials{
			ClientID:     settings[repository.SettingGoogleClientID],
			ClientSecret: settings[repository.SettingGoogleClientSecret],
			RefreshToken: settings[repository.SettingGoogleRefreshToken],
			SheetID:      settings[repository.SettingGoogleSheetID],
		}, nil
	}, cfg.Sheets.Timeout())

	var publisher events.Publisher = events.NewBus()
	if cfg.AMQP.URL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			log.Printf("reminder event fan-out disabled, AMQP unreachable: %v", err)
		} else {
			defer amqpPub.Close()
			publisher = amqpPub
		}
	}

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	notificationSvc := &service.NotificationService{
		Campaigns: campaignRepo,
		Ledger:    notificationRepo,
		Sink:      sink,
		Events:    publisher,
		Location:  loc,
	}

	scheduler, err := service.NewScheduler(notificationSvc, cfg.Scheduler)
	if err != nil {
		log.Fatalf("failed to build scheduler: %v", err)
	}
	if err := scheduler.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}

	campaignController := &controller.CampaignController{
		Repo:     campaignRepo,
		Settings: settingsRepo,
		Service:  notificationSvc,
	}
	notificationController := &controller.NotificationController{
		Service:   notificationSvc,
		Scheduler: scheduler,
		Ledger:    notificationRepo,
	}
	settingsController := &controller.SettingsController{Repo: settingsRepo}

	r := chi.NewRouter()

	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/campaigns", func(r chi.Router) {
		r.Get("/", campaignController.ListCampaigns)
		r.Post("/", campaignController.CreateCampaign)
		r.Get("/summary", campaignController.Summary)
		r.Get("/ready-for-scaling/check", campaignController.CheckReadyForScaling)
		r.Get("/{id}", campaignController.GetCampaign)
		r.Put("/{id}", campaignController.UpdateCampaign)
		r.Delete("/{id}", campaignController.DeleteCampaign)
		r.Post("/{id}/scaled", campaignController.MarkScaled)
		r.Put("/{id}/status", campaignController.UpdateStatus)
	})

	r.Route("/api/notifications", func(r chi.Router) {
		r.Post("/send/{campaignId}", notificationController.Send)
		r.Post("/send-all-ready", notificationController.SendAllReady)
		r.Get("/history", notificationController.History)
	})

	r.Route("/api/settings", func(r chi.Router) {
		r.Get("/", settingsController.GetAll)
		r.Get("/{key}", settingsController.Get)
		r.Put("/{key}", settingsController.Set)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Printf("server running on :%d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
