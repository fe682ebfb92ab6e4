package rest

import (
	"net/http"
	"strings"

	"github.com/Maureenhddi/sergic-app/internal/contextkeys"
	"github.com/Maureenhddi/sergic-app/internal/core/domain"
	"github.com/Maureenhddi/sergic-app/internal/core/port"
	"github.com/Maureenhddi/sergic-app/internal/core/port/usecases_port"
)

type CacheHandler struct {
	cache usecases_port.OfflineCachePort
}

func NewCacheHandler(cache usecases_port.OfflineCachePort) *CacheHandler {
	return &CacheHandler{cache: cache}
}

// GetStats handles GET /api/v1/cache/stats
func (h *CacheHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, newCacheStatsResponse(h.cache.Stats(r.Context())))
}

// GetCachedListings handles GET /api/v1/cache/listings?category=
// Without a category the aggregate view is returned.
func (h *CacheHandler) GetCachedListings(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("category"))
	if raw == "" {
		all := h.cache.GetAllCachedListings(r.Context())
		RespondWithJSON(w, http.StatusOK, cacheListingsResponse{Announcements: all, Total: len(all)})
		return
	}

	category, err := domain.ParseCategory(raw)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	listings := h.cache.GetCachedListings(r.Context(), category)
	RespondWithJSON(w, http.StatusOK, cacheListingsResponse{
		Category:      category.String(),
		Announcements: listings,
		Total:         len(listings),
	})
}

// ClearCache handles DELETE /api/v1/cache
func (h *CacheHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	contextkeys.LoggerFromContext(r.Context()).Info("Clearing offline cache on request", port.Fields{"handler": "ClearCache"})
	h.cache.ClearCache(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// GetImageURL handles GET /api/v1/images?ref=
func (h *CacheHandler) GetImageURL(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, imageResponse{URL: h.cache.GetImageURL(r.URL.Query().Get("ref"))})
}
