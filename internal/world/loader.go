package world

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"adventure-server/internal/models"
)

// ParseWorld decodes a YAML world definition and validates it. Validation
// warnings are returned alongside the world so callers can log them.
func ParseWorld(data []byte) (*models.WorldData, []string, error) {
	var w models.WorldData
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", models.ErrWorldInvalid, err)
	}
	warnings, err := Validate(&w)
	if err != nil {
		return nil, warnings, err
	}
	return &w, warnings, nil
}

// LoadFile reads and parses a single world file.
func LoadFile(path string) (*models.WorldData, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading world file %s: %w", path, err)
	}
	w, warnings, err := ParseWorld(data)
	if err != nil {
		return nil, warnings, fmt.Errorf("parsing world file %s: %w", path, err)
	}
	return w, warnings, nil
}
