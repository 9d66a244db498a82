package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"budget-tracker/internal/events"
	"budget-tracker/internal/models"
	"budget-tracker/internal/storage"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DefaultSessionDuration is how long login sessions last when no TTL is configured (30 days).
const DefaultSessionDuration = 30 * 24 * time.Hour

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db         *storage.DB
	events     events.Publisher
	log        *zap.Logger
	templates  fs.FS
	sessionTTL time.Duration
}

// Options configures optional Handlers dependencies.
type Options struct {
	Publisher  events.Publisher
	Logger     *zap.Logger
	SessionTTL time.Duration
}

// NewHandlers creates a new Handlers instance. templates holds base.html and the page views.
func NewHandlers(db *storage.DB, templates fs.FS, opts Options) *Handlers {
	h := &Handlers{
		db:         db,
		events:     opts.Publisher,
		log:        opts.Logger,
		templates:  templates,
		sessionTTL: opts.SessionTTL,
	}
	if h.events == nil {
		h.events = events.NopPublisher{}
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	if h.sessionTTL <= 0 {
		h.sessionTTL = DefaultSessionDuration
	}
	return h
}

// Health reports service liveness and database reachability.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.log.Error("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "UNAVAILABLE"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

type messageResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON decodes the request body into v, writing a 400 response on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// pathID parses the {id} URL parameter. An id that is not an integer can name no row, so it
// gets the same 404 as a missing one. Zero and negative ids reach storage and miss there.
func pathID(w http.ResponseWriter, r *http.Request, notFound string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, notFound)
		return 0, false
	}
	return id, true
}

// storageError maps a storage or validation error to a response.
func (h *Handlers) storageError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var verr *models.ValidationError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, storage.ErrDuplicateUsername):
		writeError(w, http.StatusBadRequest, "Username already exists")
	case errors.Is(err, storage.ErrUnknownUser):
		writeError(w, http.StatusBadRequest, "User does not exist")
	case errors.As(err, &verr):
		if verr.Field == "category" {
			writeError(w, http.StatusBadRequest, "Invalid category")
			return
		}
		writeError(w, http.StatusBadRequest, verr.Error())
	default:
		h.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// publish delivers an event after a committed write. Failures are logged only.
func (h *Handlers) publish(ctx context.Context, e events.Event) {
	if err := h.events.Publish(ctx, e); err != nil {
		h.log.Warn("failed to publish event",
			zap.String("type", e.Type),
			zap.Int64("id", e.ID),
			zap.Error(err),
		)
	}
}
