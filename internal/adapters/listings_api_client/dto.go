package listings_api_client

import "github.com/Maureenhddi/sergic-app/internal/core/domain"

// pageResponse - body of GET /announcements/ and GET /holidays/.
type pageResponse struct {
	Self          string           `json:"self"`
	Announcements []domain.Listing `json:"announcements"`
	TotalResult   int              `json:"total_result"`
	Order         string           `json:"order"`
}

func (r pageResponse) toDomain() *domain.ListingPage {
	announcements := r.Announcements
	if announcements == nil {
		announcements = []domain.Listing{}
	}
	return &domain.ListingPage{
		Self:          r.Self,
		Announcements: announcements,
		TotalResult:   r.TotalResult,
		Order:         r.Order,
	}
}
