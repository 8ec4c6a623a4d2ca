// Package catalog loads the bundled recipe catalog, either the copy compiled
// into the binary or a JSON file on disk
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
)

//go:embed data/recipes.json
var defaultCatalog []byte

// Loader reads catalog records
type Loader struct {
	path   string
	logger *zap.Logger
}

// NewLoader creates a loader for path. An empty path selects the embedded catalog.
func NewLoader(path string, logger *zap.Logger) *Loader {
	return &Loader{
		path:   path,
		logger: logger.Named("catalog-loader"),
	}
}

// Load reads and decodes every record
func (l *Loader) Load() ([]*recipe.Record, error) {
	if l.path == "" {
		l.logger.Debug("Loading embedded catalog")
		return Decode(bytes.NewReader(defaultCatalog))
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", l.path, err)
	}
	defer f.Close()

	l.logger.Debug("Loading catalog file", zap.String("path", l.path))
	records, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", l.path, err)
	}
	return records, nil
}

// Decode reads a JSON array of records
func Decode(r io.Reader) ([]*recipe.Record, error) {
	var records []*recipe.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return records, nil
}
