package usecases_port

import (
	"context"

	"github.com/Maureenhddi/sergic-app/internal/core/domain"
)

type ShareListingPort interface {
	Execute(ctx context.Context, slug, url string) (*domain.SharePayload, error)
}
