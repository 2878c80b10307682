package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/event-portal/internal/storage"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const bearerScheme = "bearerAuth"

// NewRouter builds the HTTP handler for the whole API.
func NewRouter(d Deps) http.Handler {
	h := newHandler(d)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logger(h.log))
	r.Use(chimiddleware.Recoverer)
	r.Use(Metrics(d.Metrics))
	r.Use(CORS(d.CORSOrigin))

	r.Get("/health", HealthCheck)
	r.Handle("/metrics", d.Metrics.Handler())
	if d.UploadDir != "" {
		r.Handle(storage.PublicPrefix+"*", http.StripPrefix(storage.PublicPrefix, http.FileServer(http.Dir(d.UploadDir))))
	}

	config := huma.DefaultConfig("Event Portal API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		bearerScheme: {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
	}
	api := humachi.New(r, config)

	// Public
	huma.Post(api, "/students", h.SignIn)
	huma.Get(api, "/students/{id}", h.GetStudent)
	huma.Get(api, "/events", h.ListEvents)
	huma.Get(api, "/events/{id}", h.GetEvent)
	huma.Post(api, "/events/{id}/registrations", h.Register)
	huma.Post(api, "/events/{id}/team-registrations", h.RegisterTeam)
	huma.Get(api, "/events/{id}/registrations/{studentID}", h.GetRegistration)
	huma.Get(api, "/status", h.GetStatus)
	huma.Post(api, "/admin/login", h.Login)

	// Admin
	admin := func(o *huma.Operation) {
		o.Security = []map[string][]string{{bearerScheme: {}}}
		o.Middlewares = append(o.Middlewares, h.requireAdmin(api))
	}
	created := func(o *huma.Operation) { o.DefaultStatus = http.StatusCreated }

	huma.Post(api, "/admin/events", h.CreateEvent, admin, created)
	huma.Put(api, "/admin/events/{id}", h.UpdateEvent, admin)
	huma.Delete(api, "/admin/events/{id}", h.DeleteEvent, admin)
	huma.Put(api, "/admin/events/{id}/team-mode", h.SetTeamMode, admin)
	huma.Put(api, "/admin/events/{id}/team-size", h.SetTeamSize, admin)
	huma.Get(api, "/admin/events/{id}/participants", h.Participants, admin)
	huma.Get(api, "/admin/events/{id}/participants.pdf", h.ParticipantsPDF, admin)
	huma.Put(api, "/admin/status", h.SetStatus, admin)

	r.With(h.adminOnly).Post("/admin/events/{id}/image", h.UploadImage)

	return r
}
