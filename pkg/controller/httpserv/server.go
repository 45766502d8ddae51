package httpserv

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
)

// Server is the dev backend: a chi router exposing the pantry wire contract
// (filtered/paginated listings with X-Pagination, ETag-conditional mutation,
// 422 validation bodies) over a pluggable repository.
type Server struct {
	router  *chi.Mux
	repo    interfaces.Repository
	metrics *Metrics
}

type Option func(*Server)

// WithMetrics attaches a request metrics collector and a /metrics endpoint
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

func New(repo interfaces.Repository, opts ...Option) *Server {
	s := &Server{
		router: chi.NewRouter(),
		repo:   repo,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := s.router
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.middleware)
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	}

	r.Route("/ingredients", func(r chi.Router) {
		r.Get("/", s.listIngredients)
		r.Post("/", s.createIngredient)
		r.Get("/{id}", s.getIngredient)
		r.Put("/{id}", s.updateIngredient)
		r.Delete("/{id}", s.deleteIngredient)
	})

	r.Route("/items", func(r chi.Router) {
		r.Get("/", s.listItems)
		r.Post("/", s.createItem)
		r.Get("/{id}", s.getItem)
		r.Put("/{id}", s.updateItem)
		r.Delete("/{id}", s.deleteItem)
	})

	r.Route("/recipes", func(r chi.Router) {
		r.Get("/", s.listRecipes)
		r.Post("/", s.createRecipe)
		r.Get("/{id}", s.getRecipe)
		r.Put("/{id}", s.updateRecipe)
		r.Delete("/{id}", s.deleteRecipe)
		r.Get("/{id}/ingredients", s.recipeIngredients)
		r.Get("/{id}/tags", s.recipeTags)
		r.Post("/{id}/tags", s.setRecipeTags)
	})

	r.Route("/tags", func(r chi.Router) {
		r.Get("/", s.listTags)
		r.Post("/", s.createTag)
		r.Get("/{id}", s.getTag)
		r.Delete("/{id}", s.deleteTag)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
