package domain

import (
	"fmt"
	"strings"
)

// Category - contract category of a listing. Values match the listings API.
type Category string

const (
	CategoryPurchase Category = "achat"
	CategoryRental   Category = "location"
	CategoryHoliday  Category = "vacance"
)

// Categories in aggregate precedence order.
var Categories = []Category{CategoryPurchase, CategoryRental, CategoryHoliday}

// ParseCategory accepts the API values and their english aliases.
func ParseCategory(raw string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "achat", "purchase", "buy":
		return CategoryPurchase, nil
	case "location", "rental", "rent":
		return CategoryRental, nil
	case "vacance", "vacances", "holiday", "holidays":
		return CategoryHoliday, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
}

func (c Category) String() string { return string(c) }

func (c Category) IsValid() bool {
	return c == CategoryPurchase || c == CategoryRental || c == CategoryHoliday
}
