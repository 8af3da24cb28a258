package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-gridstat/internal/integration"
	"github.com/nerrad567/gray-logic-gridstat/internal/platform"
)

// handleHealth reports liveness and the running version.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

// entryView is the redacted wire form of a config entry.
// The stored auth token never leaves the server.
type entryView struct {
	EntryID   string                      `json:"entry_id"`
	Domain    string                      `json:"domain"`
	Title     string                      `json:"title"`
	Username  string                      `json:"username"`
	Accounts  map[string]platform.Account `json:"accounts"`
	UpdatedAt string                      `json:"updated_at"`
}

func toEntryView(e platform.ConfigEntry) entryView {
	return entryView{
		EntryID:   e.EntryID,
		Domain:    e.Domain,
		Title:     e.Title,
		Username:  e.Data.Username,
		Accounts:  e.Data.Accounts,
		UpdatedAt: e.Data.UpdatedAt,
	}
}

// handleListEntries returns every stored entry of the domain.
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.Entries(r.Context(), integration.DomainGridStat)
	if err != nil {
		s.logger.Error("listing entries", "error", err)
		writeInternalError(w, "listing entries")
		return
	}

	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, toEntryView(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": views})
}

// handleGetEntry returns one stored entry.
func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")

	entry, err := s.store.Get(r.Context(), entryID)
	if err != nil {
		if errors.Is(err, platform.ErrEntryNotFound) {
			writeNotFound(w, "entry not found")
			return
		}
		s.logger.Error("loading entry", "entry_id", entryID, "error", err)
		writeInternalError(w, "loading entry")
		return
	}
	writeJSON(w, http.StatusOK, toEntryView(*entry))
}

// handleSetupEntry loads an entry.
func (s *Server) handleSetupEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")

	if err := s.lifecycle.SetupEntry(r.Context(), entryID); err != nil {
		switch {
		case errors.Is(err, platform.ErrEntryNotFound):
			writeNotFound(w, "entry not found")
		case errors.Is(err, integration.ErrAuthExpired):
			writeError(w, http.StatusConflict, ErrCodeConflict, "stored session expired, reauthentication required")
		default:
			s.logger.Error("entry setup failed", "entry_id", entryID, "error", err)
			writeInternalError(w, "entry setup failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"entry_id": entryID, "state": "loaded"})
}

// handleUnloadEntry unloads a loaded entry.
func (s *Server) handleUnloadEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")

	if err := s.lifecycle.UnloadEntry(r.Context(), entryID); err != nil {
		if errors.Is(err, integration.ErrEntryNotLoaded) {
			writeError(w, http.StatusConflict, ErrCodeConflict, "entry not loaded")
			return
		}
		s.logger.Error("entry unload failed", "entry_id", entryID, "error", err)
		writeInternalError(w, "entry unload failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"entry_id": entryID, "state": "unloaded"})
}

// handleRemoveEntry removes an entry permanently.
func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")

	if err := s.lifecycle.RemoveEntry(r.Context(), entryID); err != nil {
		if errors.Is(err, platform.ErrEntryNotFound) {
			writeNotFound(w, "entry not found")
			return
		}
		s.logger.Error("entry removal failed", "entry_id", entryID, "error", err)
		writeInternalError(w, "entry removal failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"entry_id": entryID, "state": "removed"})
}

// handleRemoveDevice removes one account's device from an entry.
func (s *Server) handleRemoveDevice(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")
	deviceID := chi.URLParam(r, "deviceID")

	if err := s.lifecycle.RemoveDevice(r.Context(), entryID, deviceID); err != nil {
		switch {
		case errors.Is(err, platform.ErrEntryNotFound):
			writeNotFound(w, "entry not found")
		case errors.Is(err, platform.ErrDeviceNotFound):
			writeNotFound(w, "device not found")
		default:
			s.logger.Error("device removal failed",
				"entry_id", entryID, "device_id", deviceID, "error", err)
			writeInternalError(w, "device removal failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"entry_id":  entryID,
		"device_id": deviceID,
		"state":     "removed",
	})
}

// handleCallService invokes a registered service through the bus.
// The request body, if present, is the service payload.
func (s *Server) handleCallService(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")
	service := chi.URLParam(r, "service")

	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "invalid JSON payload")
		return
	}

	if err := s.bus.Call(r.Context(), domain, service, data, true); err != nil {
		switch {
		case errors.Is(err, platform.ErrServiceNotFound):
			writeNotFound(w, "service not registered")
		case errors.Is(err, platform.ErrInvalidServiceData):
			writeBadRequest(w, err.Error())
		default:
			s.logger.Error("service call failed",
				"domain", domain, "service", service, "error", err)
			writeInternalError(w, "service call failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"domain":  domain,
		"service": service,
		"state":   "completed",
	})
}
