package domain

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// HapticStyle - impact strength requested from the device.
type HapticStyle string

const (
	HapticLight  HapticStyle = "light"
	HapticMedium HapticStyle = "medium"
	HapticHeavy  HapticStyle = "heavy"
)

// SharePayload - content handed to the native share sheet.
type SharePayload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// NewSharePayload builds the share text for a listing.
func NewSharePayload(l Listing, url string) SharePayload {
	title := l.DisplayTitle()
	return SharePayload{
		Title: title,
		Text:  fmt.Sprintf("Découvrez cette annonce : %s - %s € - %s", title, FormatPriceFR(l.Price), l.City),
		URL:   url,
	}
}

// FormatPriceFR formats a price with french digit grouping, without decimals when whole.
func FormatPriceFR(price float64) string {
	p := message.NewPrinter(language.French)
	if price == math.Trunc(price) {
		return p.Sprintf("%d", int64(price))
	}
	return p.Sprintf("%.2f", price)
}

// AgencyInfo - contact card of the agency publishing a listing.
type AgencyInfo struct {
	Name    string `json:"name" toml:"name"`
	Address string `json:"address" toml:"address"`
	ZipCode string `json:"zip_code" toml:"zip_code"`
	City    string `json:"city" toml:"city"`
	Phone   string `json:"phone,omitempty" toml:"phone"`
}
