package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"lumiere/internal/models"
	"lumiere/internal/service"
)

// Tables

func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Number   int    `json:"number"`
		Capacity int    `json:"capacity"`
		Location string `json:"location"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	table, err := s.tables.Create(r.Context(), body.Number, body.Capacity, body.Location)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, table)
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.tables.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

func (s *Server) handleUpdateTable(w http.ResponseWriter, r *http.Request) {
	var body models.Table
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	body.ID = r.PathValue("id")

	if err := s.tables.Update(r.Context(), &body); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleDeleteTable(w http.ResponseWriter, r *http.Request) {
	if err := s.tables.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Menu and café info

func (s *Server) handleListMenu(w http.ResponseWriter, r *http.Request) {
	items, err := s.menu.ListItems(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleCreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var item models.MenuItem
	if err := decodeJSON(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.menu.CreateItem(r.Context(), &item); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	var item models.MenuItem
	if err := decodeJSON(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	item.ID = r.PathValue("id")

	if err := s.menu.UpdateItem(r.Context(), &item); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	if err := s.menu.DeleteItem(r.Context(), r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleCafeInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.menu.CafeInfo(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleUpdateCafeInfo(w http.ResponseWriter, r *http.Request) {
	var info models.CafeInfo
	if err := decodeJSON(r, &info); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.menu.UpdateCafeInfo(r.Context(), &info); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Stats, export, locks

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Overview(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	path, err := s.exporter.Reservations(r.Context(), q.Get("status"), q.Get("date"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(path))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	http.ServeFile(w, r, path)
}

func (s *Server) handleLockStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"held": s.locker.Held(),
		"keys": s.locker.Keys(),
	})
}

func (s *Server) handleForceRelease(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key string `json:"key"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Key) == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	s.locker.Release(body.Key)
	writeJSON(w, http.StatusOK, map[string]string{"status": "released"})
}

// Agent surface

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.stats.Dashboard(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (s *Server) handleSearchReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reservations, err := s.reservations.Search(r.Context(), q.Get("date"), q.Get("status"), q.Get("search"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": reservations})
}

func (s *Server) handleAgentBook(w http.ResponseWriter, r *http.Request) {
	var body struct {
		holdBody
		CustomerPhone string `json:"customer_phone"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	caller := callerFrom(r)
	booked, err := s.reservations.AgentBook(r.Context(), service.HoldRequest{
		HolderPhone:     strings.TrimSpace(body.CustomerPhone),
		HolderName:      strings.TrimSpace(body.Name),
		ContactPhone:    strings.TrimSpace(body.ContactPhone),
		TableID:         body.TableID,
		Date:            body.Date,
		Time:            body.Time,
		DurationMinutes: body.DurationMinutes,
		Guests:          body.Guests,
		SpecialRequests: body.SpecialRequests,
		BookedByRole:    caller.Role,
		BookedByAgent:   caller.Phone,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booked)
}

func (s *Server) handleSendReminders(w http.ResponseWriter, r *http.Request) {
	if s.reminder == nil {
		writeError(w, http.StatusServiceUnavailable, "reminders are not configured")
		return
	}
	sent, err := s.reminder.SendReminders(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}
