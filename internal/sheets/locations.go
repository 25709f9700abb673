package sheets

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSheet is the tab name tried first when none is configured.
const DefaultSheet = "Vinyl_Collection"

// LocationsConfig is the optional YAML file overriding the candidate list.
//
//	sheet: Vinyl_Collection
//	locations:
//	  - "'Vinyl_Collection'!A:L"
//	  - "A:L"
type LocationsConfig struct {
	Sheet     string   `yaml:"sheet"`
	Locations []string `yaml:"locations"`
}

// LocationsLoader reads a LocationsConfig from disk.
type LocationsLoader struct {
	filePath string
}

// NewLocationsLoader creates a loader for the given file.
func NewLocationsLoader(filePath string) *LocationsLoader {
	return &LocationsLoader{filePath: filePath}
}

// Load reads and parses the locations file.
func (l *LocationsLoader) Load() (LocationsConfig, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return LocationsConfig{}, fmt.Errorf("failed to read locations file: %w", err)
	}

	var cfg LocationsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return LocationsConfig{}, fmt.Errorf("failed to parse locations yaml: %w", err)
	}

	cfg.Locations = compact(cfg.Locations)
	if len(cfg.Locations) == 0 {
		if cfg.Sheet == "" {
			return LocationsConfig{}, fmt.Errorf("locations file %s lists no locations", l.filePath)
		}
		cfg.Locations = DefaultCandidates(cfg.Sheet)
	}
	return cfg, nil
}

// DefaultCandidates is the ordered list of locators tried for a tab name,
// from the most to the least specific.
func DefaultCandidates(sheet string) []string {
	if sheet == "" {
		sheet = DefaultSheet
	}
	span := FirstColumn + ":" + LastColumn
	spaced := strings.ReplaceAll(sheet, "_", " ")

	return compact([]string{
		"'" + sheet + "'!" + span,
		QuoteSheet(sheet) + "!" + span,
		sheet,
		"'" + spaced + "'!" + span,
		"Sheet1!" + span,
		span,
	})
}

// compact trims entries and drops blanks and duplicates, keeping order.
func compact(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
