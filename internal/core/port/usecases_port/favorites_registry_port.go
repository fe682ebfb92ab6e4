package usecases_port

import (
	"context"

	"github.com/Maureenhddi/sergic-app/internal/core/domain"
)

// FavoritesRegistryPort - persisted favorites list and the compare list (at most 3 entries).
type FavoritesRegistryPort interface {
	Favorites() []domain.Listing
	IsFavorite(reference string) bool
	ToggleFavorite(ctx context.Context, listing domain.Listing) bool
	AddFavorite(ctx context.Context, listing domain.Listing)
	RemoveFavorite(ctx context.Context, reference string)
	ClearFavorites(ctx context.Context)

	CompareList() []domain.Listing
	IsInCompare(reference string) bool
	ToggleCompare(ctx context.Context, listing domain.Listing) bool
	AddToCompare(ctx context.Context, listing domain.Listing) bool
	RemoveFromCompare(ctx context.Context, reference string)
	ClearCompare(ctx context.Context)
	CanAddToCompare() bool
}
