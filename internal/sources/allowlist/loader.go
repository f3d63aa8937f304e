package allowlist

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of the allow-list seed file
type Loader struct {
	filePath string
}

// NewLoader creates a new allow-list loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads the seed file and returns the operator IDs it grants.
// Entries with a zero ID are skipped.
func (l *Loader) Load() ([]int64, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read allowlist file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse allowlist yaml: %w", err)
	}

	ids := make([]int64, 0, len(seed.Operators))
	for _, entry := range seed.Operators {
		if entry.ID == 0 {
			continue
		}
		ids = append(ids, entry.ID)
	}

	return ids, nil
}
