package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	core_port "github.com/Maureenhddi/sergic-app/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Listings     *ListingsHandler
	Cache        *CacheHandler
	Favorites    *FavoritesHandler
	Connectivity *ConnectivityHandler
}

type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

// NewRouter builds the chi router; exposed so tests can drive it through httptest.
func NewRouter(handlers Handlers, allowedOrigins []string, baseLogger core_port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// websocket upgrade must not get a JSON content type
		r.Get("/connectivity/ws", handlers.Connectivity.Stream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.SetHeader("Content-Type", "application/json"))

			r.Route("/listings", func(r chi.Router) {
				r.Get("/", handlers.Listings.GetListings)
				r.Get("/browse", handlers.Listings.BrowseListings)
				r.Post("/refresh", handlers.Listings.RefreshListings)
				r.Get("/{slug}", handlers.Listings.GetListing)
				r.Get("/{slug}/pictures", handlers.Listings.GetPictures)
				r.Get("/{slug}/agency", handlers.Listings.GetAgency)
				r.Post("/{slug}/share", handlers.Listings.ShareListing)
			})

			r.Route("/cache", func(r chi.Router) {
				r.Get("/stats", handlers.Cache.GetStats)
				r.Get("/listings", handlers.Cache.GetCachedListings)
				r.Delete("/", handlers.Cache.ClearCache)
			})
			r.Get("/images", handlers.Cache.GetImageURL)

			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", handlers.Favorites.GetFavorites)
				r.Post("/", handlers.Favorites.AddFavorite)
				r.Delete("/", handlers.Favorites.ClearFavorites)
				r.Post("/toggle", handlers.Favorites.ToggleFavorite)
				r.Delete("/{reference}", handlers.Favorites.RemoveFavorite)
			})

			r.Route("/compare", func(r chi.Router) {
				r.Get("/", handlers.Favorites.GetCompare)
				r.Post("/", handlers.Favorites.AddToCompare)
				r.Delete("/", handlers.Favorites.ClearCompare)
				r.Post("/toggle", handlers.Favorites.ToggleCompare)
				r.Delete("/{reference}", handlers.Favorites.RemoveFromCompare)
			})

			r.Get("/connectivity", handlers.Connectivity.GetState)
			r.Put("/connectivity", handlers.Connectivity.SetState)
		})
	})

	return r
}

func NewServer(port string, handlers Handlers, allowedOrigins []string, baseLogger core_port.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           NewRouter(handlers, allowedOrigins, baseLogger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: baseLogger,
	}
}

// Start blocks until the server stops. A graceful Stop is not an error.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", core_port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
