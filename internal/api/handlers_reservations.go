package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lumiere/internal/service"
)

type holdBody struct {
	TableID         string `json:"table_id"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
	Guests          int    `json:"guests"`
	Name            string `json:"name"`
	ContactPhone    string `json:"contact_phone"`
	SpecialRequests string `json:"special_requests"`
}

// checkLimits enforces the configured booking window and party ceiling
// before a request reaches the lock scope. Date format errors are left to
// the service so both paths reject them identically.
func (s *Server) checkLimits(date string, guests int) error {
	if s.limits.MaxGuests > 0 && guests > s.limits.MaxGuests {
		return fmt.Errorf("parties larger than %d require a phone call", s.limits.MaxGuests)
	}
	if s.limits.MaxAdvanceDays > 0 {
		if parsed, err := time.Parse("2006-01-02", date); err == nil {
			if parsed.After(time.Now().AddDate(0, 0, s.limits.MaxAdvanceDays)) {
				return fmt.Errorf("reservations open %d days ahead", s.limits.MaxAdvanceDays)
			}
		}
	}
	return nil
}

func (s *Server) handleAvailableTables(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	guests, err := strconv.Atoi(q.Get("guests"))
	if err != nil || guests < 1 {
		writeError(w, http.StatusBadRequest, "guests must be a positive integer")
		return
	}
	duration := 0
	if raw := q.Get("duration"); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil || duration < 1 {
			writeError(w, http.StatusBadRequest, "duration must be a positive integer")
			return
		}
	}

	tables, err := s.reservations.FindAvailableTables(r.Context(), guests, q.Get("date"), q.Get("time"), duration)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	var body holdBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.checkLimits(body.Date, body.Guests); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	caller := callerFrom(r)
	name := strings.TrimSpace(body.Name)
	if name == "" {
		if user, err := s.auth.GetUser(r.Context(), caller.Phone); err == nil {
			name = user.Name
		}
	}

	created, err := s.reservations.CreateHold(r.Context(), service.HoldRequest{
		HolderPhone:     caller.Phone,
		HolderName:      name,
		ContactPhone:    strings.TrimSpace(body.ContactPhone),
		TableID:         body.TableID,
		Date:            body.Date,
		Time:            body.Time,
		DurationMinutes: body.DurationMinutes,
		Guests:          body.Guests,
		SpecialRequests: body.SpecialRequests,
		BookedByRole:    caller.Role,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	confirmed, err := s.reservations.Confirm(r.Context(), r.PathValue("id"), callerFrom(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, confirmed)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.reservations.Cancel(r.Context(), r.PathValue("id"), callerFrom(r)); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleReservationStatus(w http.ResponseWriter, r *http.Request) {
	result, err := s.reservations.Status(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMyReservations(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)
	email := ""
	if user, err := s.auth.GetUser(r.Context(), caller.Phone); err == nil {
		email = user.Email
	}

	reservations, err := s.reservations.ByHolder(r.Context(), caller.Phone, email)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": reservations})
}

func (s *Server) handleGetReservation(w http.ResponseWriter, r *http.Request) {
	reservation, err := s.reservations.Get(r.Context(), r.PathValue("id"), callerFrom(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

// handleCreatePending keeps the pre-lock-flow creation path alive: a
// reservation request without a table that staff assign manually.
func (s *Server) handleCreatePending(w http.ResponseWriter, r *http.Request) {
	var body holdBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.checkLimits(body.Date, body.Guests); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	caller := callerFrom(r)
	name := strings.TrimSpace(body.Name)
	if name == "" {
		if user, err := s.auth.GetUser(r.Context(), caller.Phone); err == nil {
			name = user.Name
		}
	}

	created, err := s.reservations.CreatePending(r.Context(), service.HoldRequest{
		HolderPhone:     caller.Phone,
		HolderName:      name,
		ContactPhone:    strings.TrimSpace(body.ContactPhone),
		Date:            body.Date,
		Time:            body.Time,
		DurationMinutes: body.DurationMinutes,
		Guests:          body.Guests,
		SpecialRequests: body.SpecialRequests,
		BookedByRole:    caller.Role,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reservations, err := s.reservations.List(r.Context(), q.Get("status"), q.Get("date"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": reservations})
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	updated, err := s.reservations.AdminSetStatus(r.Context(), r.PathValue("id"), body.Status)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleReleaseExpired(w http.ResponseWriter, r *http.Request) {
	n, err := s.reservations.SweepExpired(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"released": n})
}

func (s *Server) handleTableSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := s.reservations.TableSchedule(r.Context(), r.PathValue("id"), r.URL.Query().Get("date"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": schedule})
}
