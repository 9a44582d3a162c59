package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"lumiere/internal/config"
	"lumiere/internal/domain"
	"lumiere/internal/export"
	"lumiere/internal/service"
	"lumiere/internal/worker"
)

// Server is the HTTP surface over the reservation services.
type Server struct {
	cfg          config.ServerConfig
	limits       config.ReservationsConfig
	auth         *service.AuthService
	reservations *service.ReservationService
	tables       *service.TableService
	menu         *service.MenuService
	stats        *service.StatsService
	exporter     *export.Exporter
	reminder     *worker.Reminder
	locker       domain.Locker
	limiter      *rateLimiter
	logger       *zerolog.Logger
	server       *http.Server
}

type Deps struct {
	Limits       config.ReservationsConfig
	Auth         *service.AuthService
	Reservations *service.ReservationService
	Tables       *service.TableService
	Menu         *service.MenuService
	Stats        *service.StatsService
	Exporter     *export.Exporter
	Reminder     *worker.Reminder
	Locker       domain.Locker
}

func NewServer(cfg config.ServerConfig, deps Deps, logger *zerolog.Logger) *Server {
	s := &Server{
		cfg:          cfg,
		limits:       deps.Limits,
		auth:         deps.Auth,
		reservations: deps.Reservations,
		tables:       deps.Tables,
		menu:         deps.Menu,
		stats:        deps.Stats,
		exporter:     deps.Exporter,
		reminder:     deps.Reminder,
		locker:       deps.Locker,
		limiter:      newRateLimiter(cfg.RateLimit),
		logger:       logger,
	}

	handler := s.loggingMiddleware(s.rateLimitMiddleware(s.routes()))
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	// Auth
	mux.HandleFunc("POST /api/v1/auth/send-otp", s.handleSendOTP)
	mux.HandleFunc("POST /api/v1/auth/verify-otp", s.handleVerifyOTP)
	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/v1/auth/me", s.withAuth(s.handleMe))

	// Public browsing
	mux.HandleFunc("GET /api/v1/tables/available", s.handleAvailableTables)
	mux.HandleFunc("GET /api/v1/reservations/{id}/status", s.handleReservationStatus)
	mux.HandleFunc("GET /api/v1/menu", s.handleListMenu)
	mux.HandleFunc("GET /api/v1/cafe-info", s.handleCafeInfo)

	// Reservation lifecycle
	mux.HandleFunc("POST /api/v1/reservations/lock", s.withAuth(s.handleLock))
	mux.HandleFunc("POST /api/v1/reservations/{id}/confirm", s.withAuth(s.handleConfirm))
	mux.HandleFunc("POST /api/v1/reservations/{id}/cancel", s.withAuth(s.handleCancel))
	mux.HandleFunc("GET /api/v1/reservations/my", s.withAuth(s.handleMyReservations))
	mux.HandleFunc("GET /api/v1/reservations/{id}", s.withAuth(s.handleGetReservation))
	mux.HandleFunc("POST /api/v1/reservations", s.withAuth(s.handleCreatePending))

	// Staff
	mux.HandleFunc("GET /api/v1/agent/dashboard", s.staffOnly(s.handleDashboard))
	mux.HandleFunc("GET /api/v1/agent/reservations", s.staffOnly(s.handleSearchReservations))
	mux.HandleFunc("POST /api/v1/agent/book", s.staffOnly(s.handleAgentBook))
	mux.HandleFunc("POST /api/v1/agent/send-reminder", s.staffOnly(s.handleSendReminders))
	mux.HandleFunc("GET /api/v1/tables/{id}/schedule", s.staffOnly(s.handleTableSchedule))
	mux.HandleFunc("GET /api/v1/tables", s.handleListTables)

	// Admin
	mux.HandleFunc("GET /api/v1/reservations", s.adminOnly(s.handleListReservations))
	mux.HandleFunc("PATCH /api/v1/reservations/{id}/status", s.adminOnly(s.handleSetStatus))
	mux.HandleFunc("POST /api/v1/reservations/release-expired", s.adminOnly(s.handleReleaseExpired))
	mux.HandleFunc("POST /api/v1/tables", s.adminOnly(s.handleCreateTable))
	mux.HandleFunc("PUT /api/v1/tables/{id}", s.adminOnly(s.handleUpdateTable))
	mux.HandleFunc("DELETE /api/v1/tables/{id}", s.adminOnly(s.handleDeleteTable))
	mux.HandleFunc("POST /api/v1/menu", s.adminOnly(s.handleCreateMenuItem))
	mux.HandleFunc("PUT /api/v1/menu/{id}", s.adminOnly(s.handleUpdateMenuItem))
	mux.HandleFunc("DELETE /api/v1/menu/{id}", s.adminOnly(s.handleDeleteMenuItem))
	mux.HandleFunc("PUT /api/v1/cafe-info", s.adminOnly(s.handleUpdateCafeInfo))
	mux.HandleFunc("GET /api/v1/stats", s.adminOnly(s.handleStats))
	mux.HandleFunc("GET /api/v1/stats/export", s.adminOnly(s.handleExport))
	mux.HandleFunc("GET /api/v1/locks", s.adminOnly(s.handleLockStatus))
	mux.HandleFunc("POST /api/v1/locks/release", s.adminOnly(s.handleForceRelease))

	return mux
}

// Handler exposes the composed middleware chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
