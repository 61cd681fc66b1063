package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/ventas/internal/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterOptions struct {
	APIKey         string
	AllowedOrigins []string
	// RequestTimeout bounds a whole request, every external call included.
	RequestTimeout time.Duration
}

// NewRouter registers the public routes.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(RequestDeadline(opts.RequestTimeout))
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", common.APIKeyHeaderName},
		MaxAge:         300,
	}))

	r.Get("/", handleRoot)
	r.Post("/ventas", h.handleSubmit)

	r.Group(func(r chi.Router) {
		r.Use(APIKeyMiddleware(opts.APIKey))
		r.Get("/sales", h.handleListSales)
	})

	return r
}
