package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flightguard/internal/advisor"
	"flightguard/internal/api"
	"flightguard/internal/cache"
	"flightguard/internal/monitor"
	"flightguard/internal/notification"
	"flightguard/internal/ports"
	"flightguard/internal/repository"
	"flightguard/internal/service"
	"flightguard/internal/utils"
	"flightguard/internal/weather"
	"flightguard/pkg/config"
	"flightguard/pkg/health"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/wb-go/wbf/logger"
)

const migrationsDir = "migrations"

type App struct {
	config  *config.Config
	log     logger.Logger
	server  *http.Server
	db      *pgxpool.Pool
	monitor *monitor.Monitor
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		config: cfg,
		log:    log,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.runMigrations(); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}

	if err := a.setupDatabase(ctx); err != nil {
		return fmt.Errorf("database setup failed: %w", err)
	}

	if err := a.setupServer(ctx); err != nil {
		return fmt.Errorf("server setup failed: %w", err)
	}

	return nil
}

func (a *App) runMigrations() error {
	db, err := sql.Open("postgres", a.config.Database.MigrationsDSN())
	if err != nil {
		return fmt.Errorf("open db for migrations: %w", err)
	}
	defer db.Close()

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	a.log.Info("migrations applied")
	return nil
}

func (a *App) setupDatabase(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(a.config.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = pool
	a.log.LogAttrs(ctx, logger.InfoLevel, "database connected",
		logger.String("host", a.config.Database.Host),
		logger.String("database", a.config.Database.Name),
	)
	return nil
}

type Services struct {
	Booking      ports.BookingService
	Availability ports.AvailabilityService
	Safety       ports.SafetyService
	Briefing     ports.BriefingService
	Checks       ports.WeatherCheckRepository
	Audit        ports.AuditRepository
	Hours        ports.HoursRepository
	Bookings     ports.BookingRepository
}

func (a *App) setupServices() (Services, error) {
	bookingRepo := repository.NewBookingRepository(a.db)
	studentRepo := repository.NewStudentRepository(a.db)
	checkRepo := repository.NewWeatherCheckRepository(a.db)
	auditRepo := repository.NewAuditRepository(a.db)
	notificationRepo := repository.NewNotificationRepository(a.db)
	hoursRepo := repository.NewHoursRepository(a.db)

	provider, err := a.weatherProvider()
	if err != nil {
		return Services{}, err
	}
	advisorClient := advisor.NewClient(
		advisor.WithBaseURL(a.config.Advisor.BaseURL),
		advisor.WithModel(a.config.Advisor.Model),
	)
	briefings := cache.New(cache.DefaultTTL)
	notifier := notification.NewStoreNotifier(notificationRepo, a.log)

	availability := service.NewAvailabilityService(bookingRepo)
	safety := service.NewSafetyService(bookingRepo, studentRepo, provider)
	booking := service.NewBookingService(
		bookingRepo, studentRepo, checkRepo, hoursRepo,
		availability, safety, advisorClient, notifier, briefings,
	)
	briefing := service.NewBriefingService(briefings, provider, advisorClient)

	return Services{
		Booking:      booking,
		Availability: availability,
		Safety:       safety,
		Briefing:     briefing,
		Checks:       checkRepo,
		Audit:        auditRepo,
		Hours:        hoursRepo,
		Bookings:     bookingRepo,
	}, nil
}

// weatherProvider picks the live client, or in demo mode the canned scenario
// provider. An unknown scenario id aborts startup rather than silently
// degrading to live weather; with no scenario pinned the demo provider serves
// clear skies.
func (a *App) weatherProvider() (ports.WeatherProvider, error) {
	if !a.config.Weather.DemoMode {
		return weather.NewClient(
			weather.WithBaseURL(a.config.Weather.BaseURL),
			weather.WithAPIKey(a.config.Weather.APIKey),
		), nil
	}

	provider, err := weather.NewScenarioProvider(a.config.Weather.Scenario)
	if err != nil {
		return nil, fmt.Errorf("weather demo mode: %w", err)
	}
	a.log.Info("using canned weather scenario",
		logger.String("scenario", a.config.Weather.Scenario),
	)
	return provider, nil
}

func (a *App) setupServer(ctx context.Context) error {
	services, err := a.setupServices()
	if err != nil {
		return err
	}
	router := a.setupRouter(services)

	if a.config.Monitor.Enabled {
		a.monitor = monitor.New(services.Bookings, services.Booking, a.config.Monitor.Schedule, a.log)
		if err := a.monitor.Start(ctx); err != nil {
			return fmt.Errorf("monitor start failed: %w", err)
		}
	}

	a.server = &http.Server{
		Addr:         a.config.Server.Address,
		Handler:      router,
		WriteTimeout: a.config.Server.WriteTimeout,
		ReadTimeout:  a.config.Server.ReadTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	return nil
}

func (a *App) setupRouter(services Services) http.Handler {
	router := http.NewServeMux()
	const versionPrefix = "/v1"

	jsonOnly := func(h http.HandlerFunc, methods ...string) http.HandlerFunc {
		return utils.AllowedMethods(
			utils.AllowedContentTypes(h, "application/json"),
			methods...,
		)
	}

	router.HandleFunc(versionPrefix+"/health", health.HealthGet(a.db))

	router.HandleFunc(versionPrefix+"/bookings",
		jsonOnly(api.BookingHandler(services.Booking), "POST", "GET"))
	router.HandleFunc(versionPrefix+"/bookings/{id}",
		jsonOnly(api.BookingByIDHandler(services.Booking), "GET", "PATCH", "DELETE"))
	router.HandleFunc(versionPrefix+"/bookings/{id}/complete",
		jsonOnly(api.CompleteHandler(services.Booking), "POST"))
	router.HandleFunc(versionPrefix+"/bookings/{id}/weather-check",
		jsonOnly(api.WeatherCheckHandler(services.Booking), "POST"))
	router.HandleFunc(versionPrefix+"/bookings/{id}/weather-checks",
		jsonOnly(api.WeatherCheckLogHandler(services.Checks), "GET"))
	router.HandleFunc(versionPrefix+"/bookings/{id}/history",
		jsonOnly(api.HistoryHandler(services.Audit), "GET"))
	router.HandleFunc(versionPrefix+"/bookings/{id}/reschedule-options",
		jsonOnly(api.RescheduleOptionsHandler(services.Booking), "GET"))
	router.HandleFunc(versionPrefix+"/bookings/{id}/reschedule",
		jsonOnly(api.RescheduleConfirmHandler(services.Booking), "POST"))

	router.HandleFunc(versionPrefix+"/weather/safety",
		jsonOnly(api.LocationSafetyHandler(services.Safety), "GET"))
	router.HandleFunc(versionPrefix+"/slots",
		jsonOnly(api.SlotsHandler(services.Availability), "GET"))
	router.HandleFunc(versionPrefix+"/briefing",
		jsonOnly(api.BriefingHandler(services.Briefing), "GET"))
	router.HandleFunc(versionPrefix+"/students/{id}/hours",
		jsonOnly(api.StudentHoursHandler(services.Hours), "GET"))

	return router
}

func (a *App) Run(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		a.log.Info("starting server", logger.String("address", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-shutdown:
		a.log.Info("starting graceful shutdown")
		return a.Shutdown()
	case <-ctx.Done():
		return a.Shutdown()
	}
}

func (a *App) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.monitor != nil {
		a.monitor.Stop()
	}

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if a.db != nil {
		a.db.Close()
	}

	return nil
}

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog, err := logger.InitLogger(
		cfg.Logger.LogEngine(),
		"flightguard",
		cfg.Logger.Mode,
		logger.WithLevel(cfg.Logger.LogLevel()),
	)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	app := NewApp(cfg, appLog)
	if err := app.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
