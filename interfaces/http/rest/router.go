package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"mindmap-backend/infrastructure/config"
	"mindmap-backend/interfaces/http/rest/handlers"
	"mindmap-backend/interfaces/http/rest/middleware"
	"mindmap-backend/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	config    *config.Config
	documents *handlers.DocumentHandler
	nodes     *handlers.NodeHandler
	clipboard *handlers.ClipboardHandler
	tracer    *observability.Tracer
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	documents *handlers.DocumentHandler,
	nodes *handlers.NodeHandler,
	clipboard *handlers.ClipboardHandler,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *Router {
	return &Router{
		config:    cfg,
		documents: documents,
		nodes:     nodes,
		clipboard: clipboard,
		tracer:    tracer,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(rt.tracer.Middleware)

	// CORS configuration
	if rt.config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.config, rt.logger))

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", rt.documents.ListDocuments)
			r.Post("/", rt.documents.CreateDocument)

			r.Route("/{documentID}", func(r chi.Router) {
				r.Get("/", rt.documents.GetDocument)
				r.Put("/", rt.documents.RenameDocument)
				r.Delete("/", rt.documents.DeleteDocument)
				r.Post("/import", rt.documents.ImportDocument)
				r.Get("/export", rt.documents.ExportDocument)
				r.Post("/undo", rt.documents.Undo)
				r.Put("/viewport", rt.documents.SaveViewport)
				r.Post("/viewport/gestures", rt.documents.ViewportGesture)

				r.Route("/nodes", func(r chi.Router) {
					r.Post("/", rt.nodes.AddNode)
					r.Patch("/{nodeID}", rt.nodes.UpdateNode)
					r.Delete("/{nodeID}", rt.nodes.DeleteNode)
					r.Post("/bulk-delete", rt.nodes.BulkDeleteNodes)
					r.Post("/{nodeID}/collapse", rt.nodes.ToggleCollapse)
					r.Post("/move", rt.nodes.MoveNodes)
				})

				r.Route("/clipboard", func(r chi.Router) {
					r.Post("/copy", rt.clipboard.Copy)
					r.Post("/cut", rt.clipboard.Cut)
					r.Post("/paste", rt.clipboard.Paste)
				})

				r.Route("/selection", func(r chi.Router) {
					r.Put("/", rt.clipboard.Select)
					r.Post("/marquee", rt.clipboard.Marquee)
				})
			})
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
