package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedSource is one entry of the optional startup seed file.
type SeedSource struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

type seedFile struct {
	Sources []SeedSource `yaml:"sources"`
}

// LoadSeedFile reads a YAML file listing sources to register at startup.
func LoadSeedFile(path string) ([]SeedSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var parsed seedFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	return parsed.Sources, nil
}

// ApplySeed registers seed sources that are not present yet, matching on
// URL. Individual failures are logged and do not block the rest.
func (r *Registry) ApplySeed(ctx context.Context, seeds []SeedSource) int {
	added := 0

	for _, seed := range seeds {
		existing, err := r.sources.GetByURL(ctx, seed.URL)
		if err != nil {
			slog.Warn("Seed lookup failed", "url", seed.URL, "error", err)
			continue
		}
		if existing != nil {
			continue
		}

		if _, err := r.Add(ctx, seed.Title, seed.URL); err != nil {
			slog.Warn("Seed registration failed", "title", seed.Title, "url", seed.URL, "error", err)
			continue
		}
		added++
	}

	return added
}
