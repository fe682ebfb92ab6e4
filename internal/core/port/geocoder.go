package port

import (
	"context"

	"github.com/Maureenhddi/sergic-app/internal/core/domain"
)

// GeocoderPort resolves a city or postal code to coordinates. A nil point means "not found".
type GeocoderPort interface {
	Geocode(ctx context.Context, query string) (*domain.GeoPoint, error)
}

// AgencyDirectoryPort finds the agency card for a SIRET, falling back to the default agency.
type AgencyDirectoryPort interface {
	Lookup(siret string) domain.AgencyInfo
}
