package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"rowlly_listings/logging"
	"rowlly_listings/models"
	"rowlly_listings/search"
	"rowlly_listings/selection"
	"rowlly_listings/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warnf("http: encode response: %v", err)
	}
}

func clientError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func serverError(w http.ResponseWriter, err error) {
	logging.Errorf("http: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": http.StatusText(http.StatusInternalServerError)})
}

func notFound(w http.ResponseWriter, err error) {
	clientError(w, http.StatusNotFound, err.Error())
}

func (s *Server) manager(r *http.Request) *selection.Manager {
	return s.sessions.Get(r.Context(), sessionID(r))
}

// selections is the read path. A session issued by this very request has
// nothing stored, so no manager is loaded or cached for it.
func (s *Server) selections(r *http.Request) models.SelectionState {
	if newSession(r) {
		return models.SelectionState{Favorites: []string{}, Compare: []string{}}
	}
	return s.manager(r).State()
}

func (s *Server) listProperties(w http.ResponseWriter, r *http.Request) {
	spec, err := decodeFilterSpec(r.URL.Query())
	if err != nil {
		clientError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.listings.Search(spec, s.selections(r)))
}

func (s *Server) featuredProperties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.listings.Featured(s.selections(r)))
}

func (s *Server) getProperty(w http.ResponseWriter, r *http.Request) {
	detail, err := s.listings.Detail(r.URL.Query().Get(":id"), s.selections(r))
	if errors.Is(err, services.ErrNotFound) {
		notFound(w, err)
		return
	}
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// suggestions backs the quick-search box, which only submits two or more
// characters.
func (s *Server) suggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if len(strings.TrimSpace(q)) < search.MinQueryLength {
		writeJSON(w, http.StatusOK, []string{})
		return
	}
	writeJSON(w, http.StatusOK, s.listings.Suggest(q))
}

func (s *Server) listAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.listings.Agents())
}

func (s *Server) getAgent(w http.ResponseWriter, r *http.Request) {
	profile, err := s.listings.AgentProfile(r.URL.Query().Get(":id"), s.selections(r))
	if errors.Is(err, services.ErrNotFound) {
		notFound(w, err)
		return
	}
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) getSelection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.selections(r))
}

func (s *Server) getFavorites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.listings.Favorites(s.selections(r)))
}

func (s *Server) getCompare(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.listings.Compare(s.selections(r)))
}

func (s *Server) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	s.toggle(w, r, (*selection.Manager).ToggleFavorite)
}

func (s *Server) toggleCompare(w http.ResponseWriter, r *http.Request) {
	s.toggle(w, r, (*selection.Manager).ToggleCompare)
}

type toggleFunc = func(*selection.Manager, context.Context, string) (models.SelectionState, error)

// toggle answers with the resulting selection. A compare add against a full
// list is not an error; the id is simply absent from the response.
func (s *Server) toggle(w http.ResponseWriter, r *http.Request, fn toggleFunc) {
	id := r.URL.Query().Get(":id")
	if _, ok := s.listings.Catalog().Property(id); !ok {
		clientError(w, http.StatusNotFound, "unknown property "+id)
		return
	}
	state, err := fn(s.manager(r), r.Context(), id)
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) clearFavorites(w http.ResponseWriter, r *http.Request) {
	s.clear(w, r, models.SelectionFavorites)
}

func (s *Server) clearCompare(w http.ResponseWriter, r *http.Request) {
	s.clear(w, r, models.SelectionCompare)
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request, kind models.SelectionKind) {
	state, err := s.manager(r).ClearAll(r.Context(), kind)
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	h := s.health.Check(r.Context())
	status := http.StatusOK
	if h.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, h)
}

func (s *Server) reloadCatalog(w http.ResponseWriter, r *http.Request) {
	if err := s.listings.Reload(r.Context()); err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"listings": s.listings.Catalog().Len()})
}

func (s *Server) brokenImages(w http.ResponseWriter, r *http.Request) {
	if s.images == nil {
		writeJSON(w, http.StatusOK, []models.ImageCheck{})
		return
	}
	writeJSON(w, http.StatusOK, s.images.Broken())
}

func (s *Server) checkImages(w http.ResponseWriter, r *http.Request) {
	if s.images == nil {
		clientError(w, http.StatusServiceUnavailable, "image checks are disabled")
		return
	}
	s.images.Trigger()
	w.WriteHeader(http.StatusAccepted)
}
