package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"eventdesk/internal/config"
	"eventdesk/internal/credential"
	"eventdesk/internal/credential/credential_api"
	"eventdesk/internal/database/migrations"
	"eventdesk/internal/engagement"
	engagement_db "eventdesk/internal/engagement/db"
	"eventdesk/internal/engagement/engagement_api"
	"eventdesk/internal/engagement/notify"
	"eventdesk/internal/engagement/stream"
	"eventdesk/internal/kafka"
	"eventdesk/internal/logger"
	"eventdesk/internal/moderation"
	registration_db "eventdesk/internal/registration/db"
	"eventdesk/internal/registration/registration_api"
	registration "eventdesk/internal/registration/service"
)

func verifyConnections(cfg *config.Config, log *logger.Logger) (*bun.DB, *redis.Client) {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.Database.Username, cfg.Database.Password,
			cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	}

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", dsn)
		if err == nil {
			err = sqldb.Ping()
		}
		if err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Could not connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	log.Info("DATABASE", "PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err))
	}
	log.Info("REDIS", fmt.Sprintf("Connected to Redis at %s", cfg.Redis.Addr))

	return bunDB, rdb
}

func main() {
	_ = godotenv.Load() // Loads .env file if present

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	bunDB, rdb := verifyConnections(cfg, log)
	defer bunDB.Close()
	defer rdb.Close()

	// Schema migrations
	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := runner.RunMigrations(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}

	// Kafka producer for registration status events
	var producer *kafka.Producer
	if cfg.Kafka.Enabled && !cfg.Kafka.MockMode {
		if err := kafka.CreateTopicIfNotExists(cfg.Kafka.Brokers, cfg.Kafka.Topics.RegistrationStatus); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic setup failed, continuing anyway: %v", err))
		}
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.RegistrationStatus)
		defer producer.Close()
	} else {
		log.Warn("KAFKA", "Kafka disabled, registration status events will not be published")
	}

	// Registration state machine + credential gate share one store layer
	regDB := &registration_db.DB{Bun: bunDB}
	var regService *registration.Service
	if producer != nil {
		regService = registration.NewService(regDB, producer, log)
	} else {
		regService = registration.NewService(regDB, nil, log)
	}
	regHandler := registration_api.NewHandler(regService, log)

	httpClient := &http.Client{Timeout: 15 * time.Second}
	resolver := credential.NewHTTPResolver(httpClient, cfg.Badge.IPLookupURL, cfg.Badge.LookupTimeout)
	credService := credential.NewService(regDB, resolver, log)
	credHandler := credential_api.NewHandler(credService, httpClient, log)

	// Engagement hub: change notifications in, session fan-out updates out
	engDB := &engagement_db.DB{Bun: bunDB}
	notifier := notify.NewNotifier(rdb, log)
	subscriber := notify.NewSubscriber(rdb, log)
	emitter := stream.NewEmitter()

	hub := engagement.NewHub(engDB, subscriber, emitter, log)
	if err := hub.Start(); err != nil {
		log.Fatal("HUB", fmt.Sprintf("Failed to start engagement hub: %v", err))
	}
	defer hub.Close()

	modService := moderation.NewService(engDB, notifier, log)
	engHandler := engagement_api.NewHandler(hub, modService, emitter, log)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", regHandler.Dashboard)

		r.Route("/events/{eventID}", func(r chi.Router) {
			r.Post("/registrations", regHandler.Submit)
			r.Get("/registrations", regHandler.ListByEvent)
			r.Post("/announcements", engHandler.CreateAnnouncement)
			r.Get("/announcements", engHandler.ListAnnouncements)
			r.Get("/stream", engHandler.StreamEvent)
		})

		r.Route("/registrations/{registrationID}", func(r chi.Router) {
			r.Patch("/status", regHandler.SetStatus)
			r.Put("/", regHandler.Edit)
			r.Delete("/", regHandler.Delete)
			r.Get("/ticket", credHandler.GetTicket)
			r.Get("/badge", credHandler.DownloadBadge)
		})

		r.Route("/announcements/{announcementID}", func(r chi.Router) {
			r.Get("/comments", engHandler.ListComments)
			r.Get("/interactions", engHandler.ListInteractions)
			r.Post("/toggle-comments", engHandler.ToggleAnnouncementComments)
			r.Delete("/", engHandler.DeleteAnnouncement)
			r.Get("/stream", engHandler.StreamAnnouncement)
		})

		r.Route("/comments/{commentID}", func(r chi.Router) {
			r.Post("/block", engHandler.BlockComment)
			r.Post("/unblock", engHandler.UnblockComment)
			r.Delete("/", engHandler.DeleteComment)
		})

		r.Delete("/interactions/{interactionID}", engHandler.DeleteInteraction)

		r.Get("/engagement/search", engHandler.Search)
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("Dashboard service on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)
	log.Info("SERVER", "Dashboard service shutdown complete")
}
