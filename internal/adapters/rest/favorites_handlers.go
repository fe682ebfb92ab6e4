package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Maureenhddi/sergic-app/internal/contextkeys"
	"github.com/Maureenhddi/sergic-app/internal/core/domain"
	"github.com/Maureenhddi/sergic-app/internal/core/port"
	"github.com/Maureenhddi/sergic-app/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
)

// FavoritesHandler serves both the favorites list and the compare list.
type FavoritesHandler struct {
	registry usecases_port.FavoritesRegistryPort
}

func NewFavoritesHandler(registry usecases_port.FavoritesRegistryPort) *FavoritesHandler {
	return &FavoritesHandler{registry: registry}
}

func decodeListing(r *http.Request) (domain.Listing, error) {
	var l domain.Listing
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		return l, badRequest("invalid listing body")
	}
	if strings.TrimSpace(l.Reference) == "" {
		return l, badRequest("reference is required")
	}
	return l, nil
}

// GetFavorites handles GET /api/v1/favorites
func (h *FavoritesHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, newListResponse(h.registry.Favorites()))
}

// AddFavorite handles POST /api/v1/favorites
func (h *FavoritesHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "AddFavorite"})

	listing, err := decodeListing(r)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.registry.AddFavorite(r.Context(), listing)
	logger.Info("Favorite added", port.Fields{"reference": listing.Reference})
	RespondWithJSON(w, http.StatusCreated, newListResponse(h.registry.Favorites()))
}

// ToggleFavorite handles POST /api/v1/favorites/toggle
func (h *FavoritesHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	listing, err := decodeListing(r)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	added := h.registry.ToggleFavorite(r.Context(), listing)
	RespondWithJSON(w, http.StatusOK, toggleResponse{
		Reference: listing.Reference,
		Added:     added,
		Count:     len(h.registry.Favorites()),
	})
}

// RemoveFavorite handles DELETE /api/v1/favorites/{reference}
func (h *FavoritesHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.registry.RemoveFavorite(r.Context(), chi.URLParam(r, "reference"))
	w.WriteHeader(http.StatusNoContent)
}

// ClearFavorites handles DELETE /api/v1/favorites
func (h *FavoritesHandler) ClearFavorites(w http.ResponseWriter, r *http.Request) {
	h.registry.ClearFavorites(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// GetCompare handles GET /api/v1/compare
func (h *FavoritesHandler) GetCompare(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, newListResponse(h.registry.CompareList()))
}

// AddToCompare handles POST /api/v1/compare. A full list answers 409.
func (h *FavoritesHandler) AddToCompare(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "AddToCompare"})

	listing, err := decodeListing(r)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.registry.IsInCompare(listing.Reference) {
		RespondWithJSON(w, http.StatusOK, newListResponse(h.registry.CompareList()))
		return
	}
	if !h.registry.AddToCompare(r.Context(), listing) {
		logger.Info("Compare list is full", port.Fields{"reference": listing.Reference})
		WriteJSONError(w, http.StatusConflict, "Compare list is full")
		return
	}
	RespondWithJSON(w, http.StatusCreated, newListResponse(h.registry.CompareList()))
}

// ToggleCompare handles POST /api/v1/compare/toggle. Adding to a full list answers 409.
func (h *FavoritesHandler) ToggleCompare(w http.ResponseWriter, r *http.Request) {
	listing, err := decodeListing(r)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	wasIn := h.registry.IsInCompare(listing.Reference)
	added := h.registry.ToggleCompare(r.Context(), listing)
	if !wasIn && !added {
		WriteJSONError(w, http.StatusConflict, "Compare list is full")
		return
	}
	RespondWithJSON(w, http.StatusOK, toggleResponse{
		Reference: listing.Reference,
		Added:     added,
		Count:     len(h.registry.CompareList()),
	})
}

// RemoveFromCompare handles DELETE /api/v1/compare/{reference}
func (h *FavoritesHandler) RemoveFromCompare(w http.ResponseWriter, r *http.Request) {
	h.registry.RemoveFromCompare(r.Context(), chi.URLParam(r, "reference"))
	w.WriteHeader(http.StatusNoContent)
}

// ClearCompare handles DELETE /api/v1/compare
func (h *FavoritesHandler) ClearCompare(w http.ResponseWriter, r *http.Request) {
	h.registry.ClearCompare(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
