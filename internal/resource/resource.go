package resource

import "time"

// Type classifies what kind of learning material a resource points at.
type Type string

const (
	Documentation     Type = "documentation"
	Tutorial          Type = "tutorial"
	InteractiveCourse Type = "interactive-course"
	InteractiveGame   Type = "interactive-game"
	VideoCourse       Type = "video-course"
	BlogPost          Type = "blog-post"
	WebResource       Type = "web-resource"
	UniversityCourse  Type = "university-course"
	Community         Type = "community"
	Curriculum        Type = "curriculum"
)

// Difficulty indicates the experience level a resource targets.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
	AllLevels    Difficulty = "all-levels"
)

// Resource is a single educational link. It is a value type: its only
// identity within a generation cycle is its Link.
type Resource struct {
	Title      string     `json:"title" yaml:"title"`
	Link       string     `json:"link" yaml:"link"`
	Snippet    string     `json:"snippet" yaml:"snippet"`
	Type       Type       `json:"type" yaml:"type"`
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty"`
	Free       bool       `json:"free" yaml:"free"`
	Verified   bool       `json:"verified" yaml:"verified"`
	Source     string     `json:"source" yaml:"source"`
	Author     string     `json:"author,omitempty" yaml:"author,omitempty"`
	Published  *time.Time `json:"published,omitempty" yaml:"published,omitempty"`
}

// Provenance records how many resources each tier contributed to a
// snapshot. Diagnostic only; consumers should not branch on it.
type Provenance struct {
	Curated int `json:"curated"`
	Feeds   int `json:"feeds"`
	Search  int `json:"search"`
	Padded  int `json:"padded"`
}

// CategorySnapshot is the immutable generated result for one category.
// Snapshots are replaced whole on refresh, never mutated in place.
type CategorySnapshot struct {
	Category    string     `json:"category"`
	Resources   []Resource `json:"resources"`
	GeneratedAt time.Time  `json:"generated_at"`
	Provenance  Provenance `json:"provenance"`
}
