package usecases_port

import (
	"context"

	"github.com/Maureenhddi/sergic-app/internal/core/domain"
)

type ListingServicePort interface {
	GetAll(ctx context.Context, filters domain.Filters) (*domain.ListingPage, error)
	GetBySlug(ctx context.Context, slug string) (*domain.ListingDetail, error)
}
