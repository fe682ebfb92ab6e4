package contracts

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/Maureenhddi/sergic-app/internal/core/domain"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// schemaBaseURL gives the embedded files absolute ids so $ref resolves without touching the filesystem.
const schemaBaseURL = "https://sergic.app/schemas/"

// keySchemas maps a storage key to the schema its blob must satisfy.
var keySchemas = map[string]string{
	domain.KeyCachePurchase: "listings_cache.json",
	domain.KeyCacheRental:   "listings_cache.json",
	domain.KeyCacheHoliday:  "listings_cache.json",
	domain.KeyCacheDetails:  "details_cache.json",
	domain.KeyFavorites:     "listing_list.json",
	domain.KeyCompare:       "listing_list.json",
}

// Registry holds the compiled blob schemas.
type Registry struct {
	schemas map[string]*jsonschema.Schema
}

// NewRegistry compiles every embedded schema. All files are added as resources
// first so that $ref between them resolves.
func NewRegistry() (*Registry, error) {
	compiler := jsonschema.NewCompiler()

	names, err := fs.Glob(schemaFS, "schemas/*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	for _, name := range names {
		raw, err := schemaFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
		}
		if err := compiler.AddResource(schemaBaseURL+path.Base(name), bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", name, err)
		}
	}

	r := &Registry{schemas: make(map[string]*jsonschema.Schema, len(names))}
	for _, name := range names {
		base := path.Base(name)
		schema, err := compiler.Compile(schemaBaseURL + base)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", base, err)
		}
		r.schemas[strings.TrimSuffix(base, ".json")] = schema
	}
	return r, nil
}

// Validate checks a blob stored under key. Keys without a schema always pass.
func (r *Registry) Validate(key string, blob []byte) error {
	file, ok := keySchemas[key]
	if !ok {
		return nil
	}
	schema, ok := r.schemas[strings.TrimSuffix(file, ".json")]
	if !ok {
		return fmt.Errorf("schema %s not registered", file)
	}

	var v interface{}
	if err := json.Unmarshal(blob, &v); err != nil {
		return fmt.Errorf("blob under %q is not valid JSON: %w", key, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("blob under %q failed schema validation: %w", key, err)
	}
	return nil
}
