package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Maureenhddi/sergic-app/internal/contextkeys"
	"github.com/Maureenhddi/sergic-app/internal/core/domain"
	"github.com/Maureenhddi/sergic-app/internal/core/port"
	"github.com/Maureenhddi/sergic-app/internal/core/port/usecases_port"
)

const deviceCommandTimeout = 10 * time.Second

// BrowseListingsUseCase narrows, sorts and pages the listings served by the listing service.
type BrowseListingsUseCase struct {
	listings     usecases_port.ListingServicePort
	geocoder     port.GeocoderPort
	device       port.DeviceBridgePort
	connectivity port.ConnectivityPort
}

func NewBrowseListingsUseCase(
	listings usecases_port.ListingServicePort,
	geocoder port.GeocoderPort,
	device port.DeviceBridgePort,
	connectivity port.ConnectivityPort,
) *BrowseListingsUseCase {
	return &BrowseListingsUseCase{
		listings:     listings,
		geocoder:     geocoder,
		device:       device,
		connectivity: connectivity,
	}
}

func (uc *BrowseListingsUseCase) Execute(ctx context.Context, query domain.BrowseQuery) (*domain.BrowseResult, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "BrowseListings",
		"query":    query.Query,
		"sort":     string(query.Sort),
	})

	page, err := uc.listings.GetAll(ctx, query.Filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}

	radius := query.RadiusKm
	if radius <= 0 {
		radius = domain.DefaultRadiusKm
	}

	listings := query.Filters.Apply(page.Announcements)

	var center *domain.GeoPoint
	if query.Query != "" {
		center = uc.searchCenter(ctx, query.Query, listings)
		if center != nil {
			listings = domain.FilterByRadius(listings, *center, radius)
		} else {
			listings = matchText(listings, query.Query)
		}
	}

	listings = domain.FilterByRooms(listings, query.RoomsMin, query.RoomsMax)

	if query.UserLocation != nil {
		listings = domain.FilterByRadius(listings, *query.UserLocation, radius)
	}

	sorted := domain.SortListings(listings, query.Sort)
	pageNum := query.Page
	if pageNum < 1 {
		pageNum = 1
	}
	visible, hasMore := domain.Paginate(sorted, pageNum)

	logger.Debug("Browse result built.", port.Fields{
		"total":    len(sorted),
		"visible":  len(visible),
		"has_more": hasMore,
	})

	return &domain.BrowseResult{
		Listings: visible,
		Total:    len(sorted),
		Page:     pageNum,
		HasMore:  hasMore,
		Offline:  uc.connectivity.IsOffline(),
		Center:   center,
	}, nil
}

// Refresh reloads the list and asks the device for a light haptic.
func (uc *BrowseListingsUseCase) Refresh(ctx context.Context, query domain.BrowseQuery) (*domain.BrowseResult, error) {
	uc.haptic(ctx, domain.HapticLight)
	query.Page = 1
	return uc.Execute(ctx, query)
}

// searchCenter geocodes the query when online. Otherwise, or when the geocoder finds nothing,
// the first listing matching the text and having coordinates is used.
func (uc *BrowseListingsUseCase) searchCenter(ctx context.Context, text string, listings []domain.Listing) *domain.GeoPoint {
	if uc.geocoder != nil && !uc.connectivity.IsOffline() {
		point, err := uc.geocoder.Geocode(ctx, text)
		if err != nil {
			contextkeys.LoggerFromContext(ctx).Warn("Geocoding failed, using listing coordinates.", port.Fields{
				"query": text, "error": err.Error(),
			})
		} else if point != nil {
			return point
		}
	}

	for _, l := range listings {
		if !domain.MatchesQuery(l, text) {
			continue
		}
		if point, ok := l.Coordinates(); ok {
			return &point
		}
	}
	return nil
}

func matchText(listings []domain.Listing, text string) []domain.Listing {
	result := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if domain.MatchesQuery(l, text) {
			result = append(result, l)
		}
	}
	return result
}

func (uc *BrowseListingsUseCase) haptic(ctx context.Context, style domain.HapticStyle) {
	if uc.device == nil {
		return
	}
	logger := contextkeys.LoggerFromContext(ctx)
	cmdCtx := context.WithoutCancel(ctx)
	go func() {
		timeoutCtx, cancel := context.WithTimeout(cmdCtx, deviceCommandTimeout)
		defer cancel()
		if err := uc.device.Haptic(timeoutCtx, style); err != nil {
			logger.Warn("Haptic feedback failed.", port.Fields{"style": string(style), "error": err.Error()})
		}
	}()
}
