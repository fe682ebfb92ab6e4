package usecases_port

import (
	"context"

	"github.com/Maureenhddi/sergic-app/internal/core/domain"
)

type BrowseListingsPort interface {
	Execute(ctx context.Context, query domain.BrowseQuery) (*domain.BrowseResult, error)
	// Refresh is the pull-to-refresh variant; it also triggers a light haptic.
	Refresh(ctx context.Context, query domain.BrowseQuery) (*domain.BrowseResult, error)
}
