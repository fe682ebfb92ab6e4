package usecase

import (
	"context"
	"fmt"

	"github.com/Maureenhddi/sergic-app/internal/contextkeys"
	"github.com/Maureenhddi/sergic-app/internal/core/domain"
	"github.com/Maureenhddi/sergic-app/internal/core/port"
	"github.com/Maureenhddi/sergic-app/internal/core/port/usecases_port"

	"golang.org/x/sync/errgroup"
)

// ListingService decides per request between the network and the offline cache.
type ListingService struct {
	api          port.ListingsAPIPort
	cache        usecases_port.OfflineCachePort
	connectivity port.ConnectivityPort
}

func NewListingService(
	api port.ListingsAPIPort,
	cache usecases_port.OfflineCachePort,
	connectivity port.ConnectivityPort,
) *ListingService {
	return &ListingService{
		api:          api,
		cache:        cache,
		connectivity: connectivity,
	}
}

// GetAll returns listings matching filters.
//
// Offline: cached data narrowed locally, never an error.
// Holiday or single category: network result written through; a network error is returned as is.
// No category: purchase and rental fetched concurrently and concatenated; if either fails the
// offline path answers instead.
func (s *ListingService) GetAll(ctx context.Context, filters domain.Filters) (*domain.ListingPage, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":      "GetAllListings",
		"contract_type": filters.ContractType.String(),
	})

	if s.connectivity.IsOffline() {
		logger.Info("Offline, serving listings from cache.", nil)
		return s.offlinePage(ctx, filters), nil
	}

	switch filters.ContractType {
	case domain.CategoryHoliday:
		page, err := s.api.FetchHolidays(ctx, filters)
		if err != nil {
			logger.Error("Failed to fetch holiday listings", err, nil)
			return nil, fmt.Errorf("failed to fetch holiday listings: %w", err)
		}
		page = normalizePage(page)
		s.cache.CacheListings(ctx, page.Announcements, domain.CategoryHoliday)
		return page, nil

	case "":
		page, err := s.fetchCombined(ctx, filters)
		if err != nil {
			logger.Warn("Combined fetch failed, falling back to offline cache.", port.Fields{"error": err.Error()})
			return s.offlinePage(ctx, filters), nil
		}
		logger.Info("Combined listings fetched.", port.Fields{"total": page.TotalResult})
		return page, nil

	default:
		page, err := s.api.FetchListings(ctx, filters)
		if err != nil {
			logger.Error("Failed to fetch listings", err, nil)
			return nil, fmt.Errorf("failed to fetch %s listings: %w", filters.ContractType, err)
		}
		page = normalizePage(page)
		s.cache.CacheListings(ctx, page.Announcements, filters.ContractType)
		return page, nil
	}
}

// fetchCombined issues the purchase and rental requests concurrently and joins them.
// Each branch writes through on its own success, even if the other one fails.
func (s *ListingService) fetchCombined(ctx context.Context, filters domain.Filters) (*domain.ListingPage, error) {
	var purchase, rental *domain.ListingPage

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := s.api.FetchListings(gctx, filters.WithContractType(domain.CategoryPurchase))
		if err != nil {
			return fmt.Errorf("purchase listings: %w", err)
		}
		purchase = normalizePage(page)
		s.cache.CacheListings(ctx, purchase.Announcements, domain.CategoryPurchase)
		return nil
	})
	g.Go(func() error {
		page, err := s.api.FetchListings(gctx, filters.WithContractType(domain.CategoryRental))
		if err != nil {
			return fmt.Errorf("rental listings: %w", err)
		}
		rental = normalizePage(page)
		s.cache.CacheListings(ctx, rental.Announcements, domain.CategoryRental)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]domain.Listing, 0, len(purchase.Announcements)+len(rental.Announcements))
	merged = append(merged, purchase.Announcements...)
	merged = append(merged, rental.Announcements...)
	narrowed := filters.Apply(merged)

	return &domain.ListingPage{
		Self:          purchase.Self,
		Announcements: narrowed,
		TotalResult:   len(narrowed),
		Order:         purchase.Order,
	}, nil
}

func (s *ListingService) offlinePage(ctx context.Context, filters domain.Filters) *domain.ListingPage {
	var cached []domain.Listing
	if filters.ContractType.IsValid() {
		cached = s.cache.GetCachedListings(ctx, filters.ContractType)
	} else {
		cached = s.cache.GetAllCachedListings(ctx)
	}
	narrowed := filters.Apply(cached)
	return &domain.ListingPage{
		Announcements: narrowed,
		TotalResult:   len(narrowed),
	}
}

// GetBySlug returns a listing detail, falling back to the detail cache.
func (s *ListingService) GetBySlug(ctx context.Context, slug string) (*domain.ListingDetail, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "GetListingBySlug",
		"slug":     slug,
	})

	if s.connectivity.IsOffline() {
		if cached, ok := s.cache.GetCachedListingDetail(ctx, slug); ok {
			logger.Info("Offline, serving cached detail.", nil)
			return cached, nil
		}
		logger.Warn("Offline and detail not cached.", nil)
		return nil, fmt.Errorf("%w: %s", domain.ErrNotAvailableOffline, slug)
	}

	detail, err := s.api.FetchDetail(ctx, slug)
	if err != nil {
		if cached, ok := s.cache.GetCachedListingDetail(ctx, slug); ok {
			logger.Warn("Detail fetch failed, serving cached copy.", port.Fields{"error": err.Error()})
			return cached, nil
		}
		logger.Error("Detail fetch failed and nothing cached", err, nil)
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrNotAvailable, slug, err)
	}
	if detail == nil {
		return nil, fmt.Errorf("%w: %s: empty response", domain.ErrNotAvailable, slug)
	}

	s.cache.CacheListingDetail(ctx, *detail)
	return detail, nil
}

func normalizePage(page *domain.ListingPage) *domain.ListingPage {
	if page == nil {
		return domain.EmptyListingPage()
	}
	if page.Announcements == nil {
		page.Announcements = []domain.Listing{}
	}
	return page
}
