// Package curated holds the hand-picked resource dataset. It is the
// floor of the sourcing tiers: always available, no network, no
// failure mode.
package curated

import (
	"embed"
	"fmt"

	"github.com/devpath/resourced/internal/resource"
	"gopkg.in/yaml.v3"
)

//go:embed curated.yaml
var datasetFS embed.FS

type pools struct {
	Resources    []resource.Resource `yaml:"resources"`
	Supplemental []resource.Resource `yaml:"supplemental"`
}

type dataset struct {
	Version    int              `yaml:"version"`
	Categories map[string]pools `yaml:"categories"`
}

// Store serves the embedded curated dataset. All lookups return fresh
// copies so callers can never mutate the backing pools.
type Store struct {
	ds dataset
}

func Load() (*Store, error) {
	data, err := datasetFS.ReadFile("curated.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading curated dataset: %w", err)
	}
	var ds dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parsing curated dataset: %w", err)
	}
	for key, p := range ds.Categories {
		if len(p.Resources) == 0 {
			return nil, fmt.Errorf("curated category %q has an empty base pool", key)
		}
	}
	stamp := func(rs []resource.Resource) {
		for i := range rs {
			rs[i].Source = "curated"
			rs[i].Verified = true
		}
	}
	for key, p := range ds.Categories {
		stamp(p.Resources)
		stamp(p.Supplemental)
		ds.Categories[key] = p
	}
	return &Store{ds: ds}, nil
}

// MustLoad panics if the embedded dataset is malformed. The dataset
// ships inside the binary, so a failure here is a build defect.
func MustLoad() *Store {
	s, err := Load()
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Store) Version() int {
	return s.ds.Version
}

// Base returns the primary curated pool for a category, in dataset
// order. Unknown categories yield an empty list.
func (s *Store) Base(category string) []resource.Resource {
	return clone(s.ds.Categories[category].Resources)
}

// Supplemental returns the secondary pool used only for padding short
// snapshots back up to the target count.
func (s *Store) Supplemental(category string) []resource.Resource {
	return clone(s.ds.Categories[category].Supplemental)
}

func (s *Store) Categories() []string {
	keys := make([]string, 0, len(s.ds.Categories))
	for k := range s.ds.Categories {
		keys = append(keys, k)
	}
	return keys
}

func clone(rs []resource.Resource) []resource.Resource {
	out := make([]resource.Resource, len(rs))
	copy(out, rs)
	return out
}
