package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/cors"
	"rowlly_listings/models"
	"rowlly_listings/selection"
	"rowlly_listings/services"
)

// ImageChecker is the part of the image check worker the admin routes use.
type ImageChecker interface {
	Trigger()
	Broken() []models.ImageCheck
}

type Server struct {
	listings *services.ListingService
	health   *services.HealthcheckService
	sessions *selection.Registry
	images   ImageChecker
}

func New(listings *services.ListingService, health *services.HealthcheckService, sessions *selection.Registry, images ImageChecker) *Server {
	return &Server{
		listings: listings,
		health:   health,
		sessions: sessions,
		images:   images,
	}
}

// Handler wraps the routes with CORS for the given browser origins.
func (s *Server) Handler(origins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowCredentials: true,
	})
	return c.Handler(s.routes())
}

// ListenAndServe runs the API until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string, origins []string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(origins),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
