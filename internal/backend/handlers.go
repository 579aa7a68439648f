package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/bankdash/internal/state"
	"github.com/leapstack-labs/bankdash/pkg/core"
)

type handlers struct {
	store  state.Store
	logger *slog.Logger
}

// moduleDetail is the body of GET /api/{panel}/details/{title}.
type moduleDetail struct {
	Panel       string      `json:"panel"`
	Title       string      `json:"title"`
	Count       string      `json:"count"`
	RawCount    float64     `json:"rawCount"`
	Status      core.Status `json:"status"`
	StatusText  string      `json:"statusText"`
	Description string      `json:"description,omitempty"`
	Position    int         `json:"position"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type connectionView struct {
	ID string `json:"id"`
	core.ConnectionRequest
	CreatedAt time.Time `json:"created_at"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) modules(w http.ResponseWriter, r *http.Request) {
	panel := chi.URLParam(r, "panel")

	rows, err := h.store.Modules(r.Context(), panel)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	payload := core.ModulesPayload{Modules: make([]core.Module, 0, len(rows))}
	for _, row := range rows {
		payload.Modules = append(payload.Modules, row.Module())
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *handlers) moduleDetail(w http.ResponseWriter, r *http.Request) {
	panel := chi.URLParam(r, "panel")
	title := pathParam(r, "title")

	row, err := h.store.Module(r.Context(), panel, title)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, moduleDetail{
		Panel:       row.Panel,
		Title:       row.Title,
		Count:       row.Module().Count,
		RawCount:    row.Count,
		Status:      row.Status,
		StatusText:  row.StatusText,
		Description: row.Description,
		Position:    row.Position,
		UpdatedAt:   row.UpdatedAt,
	})
}

func (h *handlers) exportData(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ExportRows(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *handlers) databaseTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.store.DatabaseTypes(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, core.DatabaseTypesPayload{Databases: types})
}

func (h *handlers) connections(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.Connections(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]connectionView, 0, len(list))
	for _, c := range list {
		out = append(out, connectionView{ID: c.ID, ConnectionRequest: c.ConnectionRequest, CreatedAt: c.CreatedAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{"connections": out})
}

func (h *handlers) saveConnection(w http.ResponseWriter, r *http.Request) {
	var req core.ConnectionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, core.SaveResult{Message: "invalid JSON body: " + err.Error()})
		return
	}

	if missing := missingFields(req); len(missing) > 0 {
		writeJSON(w, http.StatusOK, core.SaveResult{
			Message: "missing required fields: " + strings.Join(missing, ", "),
		})
		return
	}

	saved, err := h.store.SaveConnection(r.Context(), req)
	if errors.Is(err, state.ErrDuplicateConnection) {
		writeJSON(w, http.StatusOK, core.SaveResult{Message: err.Error()})
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info("connection saved", "id", saved.ID, "name", req.ConnectionName, "type", req.DatabaseType)
	writeJSON(w, http.StatusOK, core.SaveResult{
		Success: true,
		Message: fmt.Sprintf("Connection '%s' saved with id %s", req.ConnectionName, saved.ID),
	})
}

func missingFields(req core.ConnectionRequest) []string {
	var missing []string
	check := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	check("connection_name", req.ConnectionName)
	check("database_type", req.DatabaseType)
	check("server_name", req.ServerName)
	check("database_name", req.DatabaseName)
	check("username", req.Username)
	if req.Port <= 0 {
		missing = append(missing, "port")
	}
	return missing
}

// fail maps store errors to HTTP responses.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, state.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// pathParam returns an unescaped chi URL parameter. chi matches against the
// raw path when the request has one, so escaped titles arrive encoded.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
