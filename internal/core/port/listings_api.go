package port

import (
	"context"

	"github.com/Maureenhddi/sergic-app/internal/core/domain"
)

// ListingsAPIPort - remote listings API.
type ListingsAPIPort interface {
	// FetchListings queries the purchase/rental endpoint with the filters' contract type.
	FetchListings(ctx context.Context, filters domain.Filters) (*domain.ListingPage, error)
	// FetchHolidays queries the holiday endpoint; the contract type is not sent.
	FetchHolidays(ctx context.Context, filters domain.Filters) (*domain.ListingPage, error)
	FetchDetail(ctx context.Context, slug string) (*domain.ListingDetail, error)
}

// DetailFetcherPort resolves a listing detail by slug.
type DetailFetcherPort interface {
	GetBySlug(ctx context.Context, slug string) (*domain.ListingDetail, error)
}
