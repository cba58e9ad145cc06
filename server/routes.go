package server

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) routes() http.Handler {
	standardMiddleware := alice.New(recoverPanic, logRequest, secureHeaders, makeResponseJSON)
	sessionMiddleware := standardMiddleware.Append(withSession)

	mux := pat.New()

	// Listings
	mux.Get("/properties", sessionMiddleware.ThenFunc(s.listProperties))
	mux.Get("/properties/featured", sessionMiddleware.ThenFunc(s.featuredProperties))
	mux.Get("/properties/:id", sessionMiddleware.ThenFunc(s.getProperty))
	mux.Get("/suggestions", standardMiddleware.ThenFunc(s.suggestions))

	// Agents
	mux.Get("/agents", standardMiddleware.ThenFunc(s.listAgents))
	mux.Get("/agents/:id", sessionMiddleware.ThenFunc(s.getAgent))

	// Selections
	mux.Get("/selection", sessionMiddleware.ThenFunc(s.getSelection))
	mux.Get("/favorites", sessionMiddleware.ThenFunc(s.getFavorites))
	mux.Post("/favorites/:id", sessionMiddleware.ThenFunc(s.toggleFavorite))
	mux.Del("/favorites", sessionMiddleware.ThenFunc(s.clearFavorites))
	mux.Get("/compare", sessionMiddleware.ThenFunc(s.getCompare))
	mux.Post("/compare/:id", sessionMiddleware.ThenFunc(s.toggleCompare))
	mux.Del("/compare", sessionMiddleware.ThenFunc(s.clearCompare))

	// Operations
	mux.Get("/healthz", standardMiddleware.ThenFunc(s.healthz))
	mux.Get("/metrics", promhttp.Handler())
	mux.Post("/admin/catalog/reload", standardMiddleware.ThenFunc(s.reloadCatalog))
	mux.Get("/admin/images/broken", standardMiddleware.ThenFunc(s.brokenImages))
	mux.Post("/admin/images/check", standardMiddleware.ThenFunc(s.checkImages))

	return mux
}
