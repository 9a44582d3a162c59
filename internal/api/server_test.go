package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumiere/internal/config"
	"lumiere/internal/database"
	"lumiere/internal/events"
	"lumiere/internal/export"
	"lumiere/internal/locks"
	"lumiere/internal/models"
	"lumiere/internal/notify"
	"lumiere/internal/repository"
	"lumiere/internal/service"
)

const (
	adminPhone    = "+79991111111"
	agentPhone    = "+79992222222"
	customerPhone = "+79990000001"
)

type testAPI struct {
	srv    *httptest.Server
	db     *database.DB
	client *http.Client
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := zerolog.Nop()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "api.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	locker := locks.NewManager(&logger)
	clock := service.NewClock()
	notifier := notify.New(nil, nil, &logger)
	bus := events.NewEventBus()

	authCfg := config.AuthConfig{
		JWTSecret:   "test-secret",
		DevMode:     true,
		AdminPhones: []string{adminPhone},
		AgentPhones: []string{agentPhone},
	}

	reservations := service.NewReservationService(db, locker, clock, notifier, bus, nil, &logger)
	auth := service.NewAuthService(db, repository.NewMemoryOTPStore(), notifier, clock, authCfg, &logger)
	tables := service.NewTableService(db, locker, &logger)
	menu := service.NewMenuService(db, clock, &logger)
	stats := service.NewStatsService(db, locker, clock, &logger)
	exporter := export.NewExporter(db, t.TempDir(), &logger)

	server := NewServer(config.ServerConfig{Port: 0}, Deps{
		Limits:       config.ReservationsConfig{MaxAdvanceDays: 60, MaxGuests: 20},
		Auth:         auth,
		Reservations: reservations,
		Tables:       tables,
		Menu:         menu,
		Stats:        stats,
		Exporter:     exporter,
		Locker:       locker,
	}, &logger)

	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)

	return &testAPI{srv: srv, db: db, client: srv.Client()}
}

func (a *testAPI) request(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, a.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

// login runs the full OTP dance in dev mode and returns a bearer token.
func (a *testAPI) login(t *testing.T, phone, name string) string {
	t.Helper()
	resp, body := a.request(t, http.MethodPost, "/api/v1/auth/send-otp", "", map[string]string{"phone": phone})
	require.Equal(t, http.StatusOK, resp.StatusCode, "send-otp: %v", body)
	code, _ := body["code"].(string)
	require.NotEmpty(t, code)

	resp, body = a.request(t, http.MethodPost, "/api/v1/auth/verify-otp", "", map[string]string{
		"phone": phone, "code": code, "name": name,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "verify-otp: %v", body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (a *testAPI) createTable(t *testing.T, adminToken string, number, capacity int) string {
	t.Helper()
	resp, body := a.request(t, http.MethodPost, "/api/v1/tables", adminToken, map[string]any{
		"number": number, "capacity": capacity, "location": "main hall",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create table: %v", body)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestHealth(t *testing.T) {
	a := newTestAPI(t)
	resp, body := a.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestAuthRequired(t *testing.T) {
	a := newTestAPI(t)

	resp, _ := a.request(t, http.MethodPost, "/api/v1/reservations/lock", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = a.request(t, http.MethodPost, "/api/v1/reservations/lock", "garbage-token", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoleGuards(t *testing.T) {
	a := newTestAPI(t)
	customer := a.login(t, customerPhone, "Anna")
	agent := a.login(t, agentPhone, "Host")

	resp, _ := a.request(t, http.MethodGet, "/api/v1/stats", customer, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = a.request(t, http.MethodGet, "/api/v1/agent/dashboard", customer, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Agents can see the dashboard but not admin stats
	resp, _ = a.request(t, http.MethodGet, "/api/v1/agent/dashboard", agent, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = a.request(t, http.MethodGet, "/api/v1/stats", agent, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLockConfirmFlow(t *testing.T) {
	a := newTestAPI(t)
	admin := a.login(t, adminPhone, "Boss")
	customer := a.login(t, customerPhone, "Anna")
	tableID := a.createTable(t, admin, 1, 4)

	// Search shows the table
	resp, body := a.request(t, http.MethodGet, "/api/v1/tables/available?guests=2&date=2026-09-02&time=18:00", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["tables"], 1)

	// Lock
	resp, body = a.request(t, http.MethodPost, "/api/v1/reservations/lock", customer, map[string]any{
		"table_id": tableID, "date": "2026-09-02", "time": "18:00", "guests": 2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "lock: %v", body)
	reservationID, _ := body["id"].(string)
	require.NotEmpty(t, reservationID)
	assert.Equal(t, models.StatusHeld, body["status"])

	// Public status shows the countdown
	resp, body = a.request(t, http.MethodGet, "/api/v1/reservations/"+reservationID+"/status", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.StatusHeld, body["status"])
	assert.NotNil(t, body["seconds_remaining"])

	// A second customer cannot lock the same slot
	other := a.login(t, "+79990000002", "Boris")
	resp, _ = a.request(t, http.MethodPost, "/api/v1/reservations/lock", other, map[string]any{
		"table_id": tableID, "date": "2026-09-02", "time": "18:00", "guests": 2,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Confirm
	resp, body = a.request(t, http.MethodPost, "/api/v1/reservations/"+reservationID+"/confirm", customer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "confirm: %v", body)
	assert.Equal(t, models.StatusConfirmed, body["status"])

	// Another customer cannot cancel someone else's reservation
	resp, _ = a.request(t, http.MethodPost, "/api/v1/reservations/"+reservationID+"/cancel", other, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Owner sees it under /my
	resp, body = a.request(t, http.MethodGet, "/api/v1/reservations/my", customer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["reservations"], 1)
}

func TestConfirmUnknownReservation(t *testing.T) {
	a := newTestAPI(t)
	customer := a.login(t, customerPhone, "Anna")

	resp, _ := a.request(t, http.MethodPost, "/api/v1/reservations/no-such-id/confirm", customer, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestValidationErrors(t *testing.T) {
	a := newTestAPI(t)
	admin := a.login(t, adminPhone, "Boss")
	customer := a.login(t, customerPhone, "Anna")
	tableID := a.createTable(t, admin, 1, 2)

	// Bad slot
	resp, _ := a.request(t, http.MethodPost, "/api/v1/reservations/lock", customer, map[string]any{
		"table_id": tableID, "date": "02.09.2026", "time": "18:00", "guests": 2,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Party too big
	resp, _ = a.request(t, http.MethodPost, "/api/v1/reservations/lock", customer, map[string]any{
		"table_id": tableID, "date": "2026-09-02", "time": "18:00", "guests": 6,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown table
	resp, _ = a.request(t, http.MethodPost, "/api/v1/reservations/lock", customer, map[string]any{
		"table_id": "nope", "date": "2026-09-02", "time": "18:00", "guests": 2,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Beyond the configured limits
	resp, _ = a.request(t, http.MethodPost, "/api/v1/reservations/lock", customer, map[string]any{
		"table_id": tableID, "date": "2026-09-02", "time": "18:00", "guests": 25,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = a.request(t, http.MethodPost, "/api/v1/reservations/lock", customer, map[string]any{
		"table_id": tableID, "date": "2027-12-31", "time": "18:00", "guests": 2,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAgentBookAndSearch(t *testing.T) {
	a := newTestAPI(t)
	admin := a.login(t, adminPhone, "Boss")
	agent := a.login(t, agentPhone, "Host")
	tableID := a.createTable(t, admin, 2, 4)

	resp, body := a.request(t, http.MethodPost, "/api/v1/agent/book", agent, map[string]any{
		"table_id": tableID, "date": "2026-09-03", "time": "19:00", "guests": 3,
		"name": "Walk-in Guest", "customer_phone": "+79995555555",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "agent book: %v", body)
	assert.Equal(t, models.StatusConfirmed, body["status"])

	resp, body = a.request(t, http.MethodGet, "/api/v1/agent/reservations?date=2026-09-03", agent, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["reservations"], 1)
}

func TestAdminSetStatusAndList(t *testing.T) {
	a := newTestAPI(t)
	admin := a.login(t, adminPhone, "Boss")
	customer := a.login(t, customerPhone, "Anna")
	tableID := a.createTable(t, admin, 3, 4)

	resp, body := a.request(t, http.MethodPost, "/api/v1/reservations/lock", customer, map[string]any{
		"table_id": tableID, "date": "2026-09-04", "time": "12:00", "guests": 2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reservationID := body["id"].(string)

	resp, body = a.request(t, http.MethodPatch, "/api/v1/reservations/"+reservationID+"/status", admin, map[string]string{
		"status": models.StatusCancelled,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "set status: %v", body)
	assert.Equal(t, models.StatusCancelled, body["status"])

	resp, body = a.request(t, http.MethodGet, fmt.Sprintf("/api/v1/reservations?status=%s", models.StatusCancelled), admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["reservations"], 1)

	resp, _ = a.request(t, http.MethodPatch, "/api/v1/reservations/"+reservationID+"/status", admin, map[string]string{
		"status": "bogus",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMenuAndCafeInfo(t *testing.T) {
	a := newTestAPI(t)
	admin := a.login(t, adminPhone, "Boss")

	resp, body := a.request(t, http.MethodPost, "/api/v1/menu", admin, map[string]any{
		"name": "Espresso", "category": "coffee", "price": 3.5, "available": true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create item: %v", body)

	resp, body = a.request(t, http.MethodGet, "/api/v1/menu", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["items"], 1)

	resp, _ = a.request(t, http.MethodPut, "/api/v1/cafe-info", admin, map[string]any{
		"name": "Café Lumière", "address": "12 Rue de la Paix",
		"hours": map[string]string{"mon": "09:00-22:00"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = a.request(t, http.MethodGet, "/api/v1/cafe-info", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Café Lumière", body["name"])
}

func TestLocksEndpoint(t *testing.T) {
	a := newTestAPI(t)
	admin := a.login(t, adminPhone, "Boss")

	resp, body := a.request(t, http.MethodGet, "/api/v1/locks", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["held"])

	resp, _ = a.request(t, http.MethodPost, "/api/v1/locks/release", admin, map[string]string{"key": "table:whatever"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReleaseExpiredEndpoint(t *testing.T) {
	a := newTestAPI(t)
	admin := a.login(t, adminPhone, "Boss")

	resp, body := a.request(t, http.MethodPost, "/api/v1/reservations/release-expired", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["released"])
}

func TestExportEndpoint(t *testing.T) {
	a := newTestAPI(t)
	admin := a.login(t, adminPhone, "Boss")

	req, err := http.NewRequest(http.MethodGet, a.srv.URL+"/api/v1/stats/export", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+admin)
	resp, err := a.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
}
