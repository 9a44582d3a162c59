package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"

	"lumiere/internal/api"
	"lumiere/internal/config"
	"lumiere/internal/database"
	"lumiere/internal/domain"
	"lumiere/internal/events"
	"lumiere/internal/export"
	"lumiere/internal/google"
	"lumiere/internal/locks"
	"lumiere/internal/logging"
	"lumiere/internal/metrics"
	"lumiere/internal/models"
	"lumiere/internal/notify"
	"lumiere/internal/repository"
	"lumiere/internal/service"
	"lumiere/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg); err != nil {
		return err
	}

	metrics.Register()

	db, err := initDatabase(cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, otpStore := initOTPStore(ctx, cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	notifier := buildNotifier(cfg, &logger)
	eventBus := events.NewEventBus()
	locker := locks.NewManager(&logger)
	clock := service.NewClock()

	var syncWorker domain.SyncWorker
	if sheetsWorker := initSheetsSync(ctx, cfg, db, redisClient, &logger); sheetsWorker != nil {
		syncWorker = sheetsWorker
	}

	reservations := service.NewReservationService(db, locker, clock, notifier, eventBus, syncWorker, &logger)
	authService := service.NewAuthService(db, otpStore, notifier, clock, cfg.Auth, &logger)
	tableService := service.NewTableService(db, locker, &logger)
	menuService := service.NewMenuService(db, clock, &logger)
	statsService := service.NewStatsService(db, locker, clock, &logger)
	exporter := export.NewExporter(db, cfg.Exports.Path, &logger)
	reminder := worker.NewReminder(db, notifier, clock, &logger)

	sweeper := worker.NewSweeper(reservations, models.SweepInterval, &logger)
	go sweeper.Start(ctx)
	if cfg.SMS.Enabled {
		go reminder.Start(ctx)
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(cfg.Monitoring.PrometheusPort, &logger)
	}

	server := api.NewServer(cfg.Server, api.Deps{
		Limits:       cfg.Reservations,
		Auth:         authService,
		Reservations: reservations,
		Tables:       tableService,
		Menu:         menuService,
		Stats:        statsService,
		Exporter:     exporter,
		Reminder:     reminder,
		Locker:       locker,
	}, &logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("API server error")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}

	logger.Info().Msg("shutdown complete")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()
	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return err
	}
	return os.MkdirAll(cfg.Exports.Path, 0o755)
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Msg("database initialization failed")
		return nil, err
	}

	if cfg.Database.SeedTables != "" {
		tables, err := loadSeedTables(cfg.Database.SeedTables)
		if err != nil {
			logger.Error().Err(err).Str("path", cfg.Database.SeedTables).Msg("seed tables load failed")
			return nil, err
		}
		if err := db.SyncTables(context.Background(), tables); err != nil {
			logger.Error().Err(err).Msg("seed tables sync failed")
			return nil, err
		}
		logger.Info().Int("tables", len(tables)).Msg("floor plan synced")
	}
	return db, nil
}

func loadSeedTables(path string) ([]*models.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var seed struct {
		Tables []struct {
			Number   int    `yaml:"number"`
			Capacity int    `yaml:"capacity"`
			Location string `yaml:"location"`
		} `yaml:"tables"`
	}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, err
	}

	tables := make([]*models.Table, 0, len(seed.Tables))
	for _, t := range seed.Tables {
		if t.Number < 1 || t.Capacity < 1 {
			return nil, fmt.Errorf("table %d: number and capacity must be positive", t.Number)
		}
		tables = append(tables, &models.Table{
			ID:        uuid.New().String(),
			Number:    t.Number,
			Capacity:  t.Capacity,
			Location:  t.Location,
			Available: true,
		})
	}
	return tables, nil
}

func initOTPStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *repository.FailoverOTPStore) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if err := repository.Ping(ctx, redisClient); err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, OTP storage starts on the memory fallback")
		}
	}

	primary := repository.NewRedisOTPStore(redisClient)
	fallback := repository.NewMemoryOTPStore()
	return redisClient, repository.NewFailoverOTPStore(primary, fallback, logger)
}

func buildNotifier(cfg *config.Config, logger *zerolog.Logger) *notify.Notifier {
	var sms notify.SMSSender
	if cfg.SMS.Enabled {
		sms = notify.NewTwilioSender(cfg.SMS, logger)
	}

	var staff notify.StaffSender
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram, logger)
		if err != nil {
			logger.Error().Err(err).Msg("telegram init failed, staff notifications disabled")
		} else {
			staff = tg
		}
	}

	return notify.New(sms, staff, logger)
}

func initSheetsSync(ctx context.Context, cfg *config.Config, db *database.DB, redisClient *redis.Client, logger *zerolog.Logger) *worker.SheetsWorker {
	if !cfg.Google.Enabled {
		return nil
	}

	sheetsSvc, err := google.NewSheetsService(cfg.Google.CredentialsFile, cfg.Google.ReservationsSpreadsheetID)
	if err != nil {
		logger.Error().Err(err).Msg("Google Sheets init failed, sync disabled")
		return nil
	}
	if err := sheetsSvc.TestConnection(ctx); err != nil {
		logger.Error().Err(err).Msg("Google Sheets connection test failed, sync disabled")
		return nil
	}

	retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
	sheetsWorker := worker.NewSheetsWorker(db, sheetsSvc, redisClient, retryPolicy, logger)
	go sheetsWorker.Start(ctx)

	logger.Info().Msg("Google Sheets sync enabled")
	return sheetsWorker
}

func startMetricsServer(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	logger.Info().Str("addr", addr).Msg("metrics listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
