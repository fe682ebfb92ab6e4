package domain

import (
	"encoding/json"
	"time"
)

// Listing - summary of an announcement as returned by the list endpoints.
// Field names follow the listings API, so the same struct is used for the wire and the cache.
type Listing struct {
	Reference       string   `json:"reference"`
	City            string   `json:"city"`
	Price           float64  `json:"price"`
	SquareMeter     float64  `json:"square_meter"`
	ZipCode         string   `json:"zip_code"`
	Type            string   `json:"type"`
	ContractType    string   `json:"contract_type"`
	Slug            string   `json:"slug"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Benefit         string   `json:"benefit"`
	PlaceType       string   `json:"place_type"`
	IsProfessional  bool     `json:"is_professional"`
	IsExactLocation bool     `json:"is_exact_location"`
	LabelType       string   `json:"label_type"`
	RentalHtHc      float64  `json:"rental_ht_hc"`
	IsAgencyCost    bool     `json:"is_agency_cost"`
	NumberOfBeds    *int     `json:"number_of_beds"`
	ExpenseSearch   *float64 `json:"expense_search"`
	Picture         string   `json:"picture"`
	Pictures        []string `json:"pictures"`
	Detail          string   `json:"detail"`
	Date            string   `json:"date"`

	// Title is filled lazily from the detail endpoint.
	Title string `json:"title,omitempty"`
}

// Coordinates returns the listing position. Missing or zero coordinates count as absent.
func (l Listing) Coordinates() (GeoPoint, bool) {
	if l.Latitude == nil || l.Longitude == nil || *l.Latitude == 0 || *l.Longitude == 0 {
		return GeoPoint{}, false
	}
	return GeoPoint{Lat: *l.Latitude, Lng: *l.Longitude}, true
}

// PublishedAt parses Date. Unparseable dates sort as the zero time.
func (l Listing) PublishedAt() time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, l.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// DisplayTitle - title when enriched, label otherwise.
func (l Listing) DisplayTitle() string {
	if l.Title != "" {
		return l.Title
	}
	return l.LabelType
}

// Rooms - number_of_beds when known, otherwise parsed from the label.
func (l Listing) Rooms() (int, bool) {
	if l.NumberOfBeds != nil {
		return *l.NumberOfBeds, true
	}
	return RoomsFromLabel(l.LabelType)
}

// Extra - free-form name/value attribute of a detail.
type Extra struct {
	Name  string  `json:"name"`
	Value *string `json:"value"`
}

type Agency struct {
	Siret string `json:"siret"`
}

// Dpe - energy and emissions diagnostic.
type Dpe struct {
	IsDiagnostic bool     `json:"is_diagnostic"`
	NumberDpe    *float64 `json:"number_dpe"`
	LetterDpe    *string  `json:"letter_dpe"`
	NumberGes    *float64 `json:"number_ges"`
	LetterGes    *string  `json:"letter_ges"`
	Date         *string  `json:"date"`
	MinPrice     *float64 `json:"min_price"`
	MaxPrice     *float64 `json:"max_price"`
	PriceIndex   *float64 `json:"price_index"`
}

// ListingDetail - full announcement fetched by slug.
type ListingDetail struct {
	Listing
	Agency             *Agency `json:"agency"`
	AnnouncementExtras []Extra `json:"announcement_extras"`
	NumberOfBedrooms   *int    `json:"number_of_bedrooms"`
	Dpe                *Dpe    `json:"dpe"`
	AvailableAt        *string `json:"available_at"`
	Self               string  `json:"self"`
	List               string  `json:"list"`
}

// ExtraValue returns the value of the named extra.
func (d ListingDetail) ExtraValue(name string) (string, bool) {
	for _, e := range d.AnnouncementExtras {
		if e.Name == name && e.Value != nil {
			return *e.Value, true
		}
	}
	return "", false
}

// PictureURLs decodes the "pictures" extra, a JSON array stored as a string.
func (d ListingDetail) PictureURLs() []string {
	raw, ok := d.ExtraValue("pictures")
	if !ok || raw == "" {
		return []string{}
	}
	var pictures []string
	if err := json.Unmarshal([]byte(raw), &pictures); err != nil || pictures == nil {
		return []string{}
	}
	return pictures
}

// AgencySiret returns the agency identifier, empty when the detail has none.
func (d ListingDetail) AgencySiret() string {
	if d.Agency == nil {
		return ""
	}
	return d.Agency.Siret
}

// ListingPage - response of the list endpoints.
type ListingPage struct {
	Self          string    `json:"self"`
	Announcements []Listing `json:"announcements"`
	TotalResult   int       `json:"total_result"`
	Order         string    `json:"order"`
}

// EmptyListingPage is what the offline path returns when nothing is cached.
func EmptyListingPage() *ListingPage {
	return &ListingPage{Announcements: []Listing{}}
}
