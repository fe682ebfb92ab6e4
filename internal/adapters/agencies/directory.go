package agencies

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/Maureenhddi/sergic-app/internal/core/domain"

	toml "github.com/pelletier/go-toml/v2"
)

//go:embed agencies.toml
var embeddedTable []byte

type table struct {
	Default  domain.AgencyInfo            `toml:"default"`
	Agencies map[string]domain.AgencyInfo `toml:"agencies"`
}

// Directory maps a SIRET to the agency card shown on a listing.
type Directory struct {
	fallback domain.AgencyInfo
	bySiret  map[string]domain.AgencyInfo
}

// NewDirectory loads the table shipped with the binary.
func NewDirectory() (*Directory, error) {
	return ParseDirectory(embeddedTable)
}

// ParseDirectory loads a table in the agencies.toml format.
func ParseDirectory(raw []byte) (*Directory, error) {
	var t table
	if err := toml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("failed to parse agency table: %w", err)
	}
	if t.Default.Name == "" {
		t.Default.Name = "Sergic"
	}
	if t.Agencies == nil {
		t.Agencies = map[string]domain.AgencyInfo{}
	}
	return &Directory{fallback: t.Default, bySiret: t.Agencies}, nil
}

// Lookup returns the default agency for an empty or unknown SIRET.
func (d *Directory) Lookup(siret string) domain.AgencyInfo {
	if a, ok := d.bySiret[strings.TrimSpace(siret)]; ok {
		return a
	}
	return d.fallback
}

func (d *Directory) Len() int { return len(d.bySiret) }
