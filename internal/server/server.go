package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meltforce/mapty/internal/app"
	"github.com/meltforce/mapty/internal/models"
	"github.com/meltforce/mapty/internal/view"
)

// Controller is the part of app.Controller the handlers drive. Every call is
// an event on the controller loop.
type Controller interface {
	ClickMap(ctx context.Context, at models.Coordinates) error
	ChangeKind(ctx context.Context, kind string) error
	Submit(ctx context.Context, v app.FormValues) (models.Workout, error)
	LogWorkout(ctx context.Context, at models.Coordinates, v app.FormValues) (models.Workout, error)
	Select(ctx context.Context, id string) (models.Workout, error)
	Reset(ctx context.Context) error
	Snapshot(ctx context.Context) (app.Snapshot, error)
}

// Views are the headless surfaces the controller renders into. Any of them
// may be nil.
type Views struct {
	Map     *view.Map
	Form    *view.Form
	List    *view.List
	Notices *view.Notices
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	ctl       Controller
	views     Views
	log       *slog.Logger
	apiKey    string
	tailscale WhoIser
	router    chi.Router
}

// New creates a new Server with all routes configured.
func New(ctl Controller, views Views, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		ctl:    ctl,
		views:  views,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale enables identity lookups for requests arriving over tsnet.
func (s *Server) SetTailscale(lc WhoIser) {
	s.tailscale = lc
}

// Mount attaches an extra handler, such as the MCP endpoint, under pattern.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.Mount(pattern, h)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestID)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Get("/api/v1/state", s.handleState)
	s.router.Post("/api/v1/map/click", s.handleMapClick)
	s.router.Post("/api/v1/form/kind", s.handleKind)
	s.router.Post("/api/v1/form/submit", s.handleSubmit)
	s.router.Get("/api/v1/notices", s.handleNotices)

	s.router.Route("/api/v1/workouts", func(r chi.Router) {
		r.Get("/", s.handleListWorkouts)
		r.Post("/", s.handleLogWorkout)
		r.Get("/{id}", s.handleGetWorkout)
		r.Post("/{id}/select", s.handleSelectWorkout)

		// Destructive, so guarded when a key is configured
		r.Group(func(r chi.Router) {
			if s.apiKey != "" {
				r.Use(APIKeyAuth(s.apiKey))
			}
			r.Delete("/", s.handleReset)
		})
	})

	s.router.Handle("/metrics", promhttp.Handler())
}

// identity resolves the caller through Tailscale once SetTailscale was
// called and falls back to the dev identity otherwise.
func (s *Server) identity(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.tailscale == nil {
			dev.ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.tailscale, s.log)(next).ServeHTTP(w, r)
	})
}
