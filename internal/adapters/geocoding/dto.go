package geocoding

// searchResponse - GeoJSON answer of the address search API.
type searchResponse struct {
	Features []struct {
		Geometry struct {
			// Coordinates are [lng, lat].
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label    string `json:"label"`
			City     string `json:"city"`
			Postcode string `json:"postcode"`
		} `json:"properties"`
	} `json:"features"`
}
