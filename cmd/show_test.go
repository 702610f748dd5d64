package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/devpath/resourced/internal/config"
	"github.com/devpath/resourced/internal/resource"
)

func TestRenderSnapshot(t *testing.T) {
	cfg := &config.Config{Categories: []config.Category{
		{Key: "frontend", Name: "Frontend Development", Keywords: []string{"css"}},
	}}
	snap := resource.CategorySnapshot{
		Category: "frontend",
		Resources: []resource.Resource{
			{
				Title:      "MDN Web Docs",
				Link:       "https://developer.mozilla.org/",
				Snippet:    "The canonical web reference.",
				Type:       resource.Documentation,
				Difficulty: resource.AllLevels,
				Source:     "curated",
			},
		},
		GeneratedAt: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		Provenance:  resource.Provenance{Curated: 1},
	}

	out := renderSnapshot(cfg, snap)

	for _, want := range []string{
		"Frontend Development",
		"MDN Web Docs",
		"https://developer.mozilla.org/",
		"documentation",
		"curated 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered output missing %q", want)
		}
	}
}

func TestRenderSnapshotFallsBackToKey(t *testing.T) {
	cfg := &config.Config{}
	snap := resource.CategorySnapshot{Category: "mystery", GeneratedAt: time.Now()}

	out := renderSnapshot(cfg, snap)
	if !strings.Contains(out, "mystery") {
		t.Error("expected category key in header when no display name is configured")
	}
}
