package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Maureenhddi/sergic-app/internal/contextkeys"
	"github.com/Maureenhddi/sergic-app/internal/core/domain"
	"github.com/Maureenhddi/sergic-app/internal/core/port"
	"github.com/Maureenhddi/sergic-app/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
)

type ListingsHandler struct {
	listings usecases_port.ListingServicePort
	browse   usecases_port.BrowseListingsPort
	share    usecases_port.ShareListingPort
	agencies port.AgencyDirectoryPort
}

func NewListingsHandler(
	listings usecases_port.ListingServicePort,
	browse usecases_port.BrowseListingsPort,
	share usecases_port.ShareListingPort,
	agencies port.AgencyDirectoryPort,
) *ListingsHandler {
	return &ListingsHandler{
		listings: listings,
		browse:   browse,
		share:    share,
		agencies: agencies,
	}
}

// GetListings handles GET /api/v1/listings
func (h *ListingsHandler) GetListings(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetListings"})

	filters, err := parseFilters(r.URL.Query())
	if err != nil {
		logger.Warn("Invalid filters", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.listings.GetAll(r.Context(), filters)
	if err != nil {
		status := statusFromError(err)
		logger.Error("Get listings use case failed", err, port.Fields{"status": status})
		WriteJSONError(w, status, publicMessage(err, status))
		return
	}
	RespondWithJSON(w, http.StatusOK, page)
}

// BrowseListings handles GET /api/v1/listings/browse
func (h *ListingsHandler) BrowseListings(w http.ResponseWriter, r *http.Request) {
	h.runBrowse(w, r, "BrowseListings", h.browse.Execute)
}

// RefreshListings handles POST /api/v1/listings/refresh (pull-to-refresh)
func (h *ListingsHandler) RefreshListings(w http.ResponseWriter, r *http.Request) {
	h.runBrowse(w, r, "RefreshListings", h.browse.Refresh)
}

func (h *ListingsHandler) runBrowse(
	w http.ResponseWriter,
	r *http.Request,
	name string,
	run func(ctx context.Context, q domain.BrowseQuery) (*domain.BrowseResult, error),
) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": name})

	query, err := parseBrowseQuery(r.URL.Query())
	if err != nil {
		logger.Warn("Invalid browse query", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := run(r.Context(), query)
	if err != nil {
		status := statusFromError(err)
		logger.Error("Browse use case failed", err, port.Fields{"status": status})
		WriteJSONError(w, status, publicMessage(err, status))
		return
	}
	RespondWithJSON(w, http.StatusOK, result)
}

// GetListing handles GET /api/v1/listings/{slug}
func (h *ListingsHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetListing", "slug": slug})

	detail, err := h.listings.GetBySlug(r.Context(), slug)
	if err != nil {
		status := statusFromError(err)
		logger.Warn("Listing detail unavailable", port.Fields{"error": err.Error(), "status": status})
		WriteJSONError(w, status, publicMessage(err, status))
		return
	}
	RespondWithJSON(w, http.StatusOK, detail)
}

// GetPictures handles GET /api/v1/listings/{slug}/pictures
func (h *ListingsHandler) GetPictures(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	detail, err := h.listings.GetBySlug(r.Context(), slug)
	if err != nil {
		status := statusFromError(err)
		WriteJSONError(w, status, publicMessage(err, status))
		return
	}
	RespondWithJSON(w, http.StatusOK, picturesResponse{Slug: slug, Pictures: detail.PictureURLs()})
}

// GetAgency handles GET /api/v1/listings/{slug}/agency
func (h *ListingsHandler) GetAgency(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	detail, err := h.listings.GetBySlug(r.Context(), slug)
	if err != nil {
		status := statusFromError(err)
		WriteJSONError(w, status, publicMessage(err, status))
		return
	}
	RespondWithJSON(w, http.StatusOK, h.agencies.Lookup(detail.AgencySiret()))
}

// ShareListing handles POST /api/v1/listings/{slug}/share
func (h *ListingsHandler) ShareListing(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ShareListing", "slug": slug})

	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	payload, err := h.share.Execute(r.Context(), slug, req.URL)
	if err != nil {
		status := statusFromError(err)
		logger.Warn("Share failed", port.Fields{"error": err.Error(), "status": status})
		WriteJSONError(w, status, publicMessage(err, status))
		return
	}
	RespondWithJSON(w, http.StatusOK, payload)
}
