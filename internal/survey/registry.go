// Package survey loads the response table and the question registry that
// declares how each column is interpreted.
package survey

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/orgpulse/pulse/internal/model"
)

//go:embed registry.json
var defaultRegistry []byte

// DefaultRegistry returns the built-in organizational-culture survey registry.
func DefaultRegistry() (*model.Registry, error) {
	return parseRegistry(defaultRegistry, "built-in registry")
}

// LoadRegistry reads a registry JSON file. An empty path selects the default.
func LoadRegistry(path string) (*model.Registry, error) {
	if path == "" {
		return DefaultRegistry()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}
	return parseRegistry(data, path)
}

func parseRegistry(data []byte, source string) (*model.Registry, error) {
	var reg model.Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, model.NewError(model.ErrMalformed, "parse "+source, err)
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return &reg, nil
}
