// Package handler translates HTTP requests and responses to and from the
// service layer. Typed JSON operations are registered through huma; uploads,
// static files and probes are plain chi handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Shivanand-hulikatti/event-portal/internal/auth"
	"github.com/Shivanand-hulikatti/event-portal/internal/logger"
	"github.com/Shivanand-hulikatti/event-portal/internal/model"
	"github.com/Shivanand-hulikatti/event-portal/internal/service"
	"github.com/Shivanand-hulikatti/event-portal/internal/telemetry"
	"github.com/danielgtaylor/huma/v2"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Registrations *service.RegistrationService
	Students      *service.StudentService
	Events        *service.EventService
	Status        *service.StatusService
	Auth          *auth.Authenticator
	Metrics       *telemetry.Metrics
	Log           *slog.Logger

	// UploadDir is served read-only under /uploads/.
	UploadDir  string
	CORSOrigin string
}

// Handler holds all HTTP handlers for the portal API.
type Handler struct {
	registrations *service.RegistrationService
	students      *service.StudentService
	events        *service.EventService
	status        *service.StatusService
	auth          *auth.Authenticator
	log           *slog.Logger
	now           func() time.Time
}

func newHandler(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{
		registrations: d.Registrations,
		students:      d.Students,
		events:        d.Events,
		status:        d.Status,
		auth:          d.Auth,
		log:           log,
		now:           time.Now,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

// statusFor maps service errors to an HTTP status and client-safe message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid credentials"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// apiError converts a service error into a huma error, logging anything
// that is not the caller's fault.
func (h *Handler) apiError(op string, err error) error {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "op", op, "error", err)
	}
	return huma.NewError(status, msg)
}

// HealthCheck handles GET /health.
func HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
