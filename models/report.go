// Package models defines the shared data structures for the report index:
// the canonical report record, query/filter shapes, and configuration.
package models

import (
	"strconv"
	"time"
)

// CategoryGroup pairs a parent category with the subcategories a report
// declares under it.
type CategoryGroup struct {
	Category      string   `json:"category"`
	Subcategories []string `json:"subcategories"`
}

// Analysis holds the classification metadata attached to a report.
type Analysis struct {
	Language        string          `json:"language"`
	Category        []string        `json:"category"`
	Subcategory     string          `json:"subcategory,omitempty"`
	Categories      []CategoryGroup `json:"categories,omitempty"`
	ContentType     string          `json:"content_type"`
	ComplexityLevel string          `json:"complexity_level"`
	KeyTopics       []string        `json:"key_topics"`
}

// Media describes the generated audio/transcript artifacts for a report.
type Media struct {
	HasAudio             bool `json:"has_audio"`
	AudioDurationSeconds int  `json:"audio_duration_seconds"`
	HasTranscript        bool `json:"has_transcript"`
	TranscriptChars      int  `json:"transcript_chars"`
}

// Report is the canonical in-memory record for one summarized item.
// Both accepted input shapes (legacy and universal) normalize into this.
type Report struct {
	ID              string   `json:"id"`
	FileStem        string   `json:"file_stem"`
	Title           string   `json:"title"`
	ContentSource   string   `json:"content_source"`
	PublishedAt     string   `json:"published_at"`
	DurationSeconds int      `json:"duration_seconds"`
	ThumbnailURL    string   `json:"thumbnail_url,omitempty"`
	CanonicalURL    string   `json:"canonical_url,omitempty"`
	Channel         string   `json:"channel,omitempty"`
	Year            int      `json:"year"`
	Analysis        Analysis `json:"analysis"`
	Media           Media    `json:"media"`

	// SearchText is the precomputed lower-cased title+topics blob that the
	// text search matches against. Not serialized.
	SearchText string `json:"-"`
}

// CategorySet returns the distinct parent categories a report belongs to,
// merging the flat category list with the structured category groups.
func (r *Report) CategorySet() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range r.Analysis.Category {
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, g := range r.Analysis.Categories {
		if g.Category != "" && !seen[g.Category] {
			seen[g.Category] = true
			out = append(out, g.Category)
		}
	}
	return out
}

// SubcategorySet returns the distinct subcategories a report declares,
// across all category groups plus the single legacy subcategory field.
func (r *Report) SubcategorySet() []string {
	seen := make(map[string]bool)
	var out []string
	if s := r.Analysis.Subcategory; s != "" {
		seen[s] = true
		out = append(out, s)
	}
	for _, g := range r.Analysis.Categories {
		for _, s := range g.Subcategories {
			if s != "" && !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// HasSubcategory reports whether the record declares sub under parent.
// An empty parent matches the subcategory under any parent.
func (r *Report) HasSubcategory(parent, sub string) bool {
	for _, g := range r.Analysis.Categories {
		if parent != "" && g.Category != parent {
			continue
		}
		for _, s := range g.Subcategories {
			if s == sub {
				return true
			}
		}
	}
	// Legacy single subcategory field has no parent pairing; it can only
	// satisfy an unscoped match.
	if parent == "" && r.Analysis.Subcategory == sub {
		return true
	}
	return false
}

// PublishedTime parses the published_at field, returning the zero time when
// it is empty or unparseable.
func (r *Report) PublishedTime() time.Time {
	if r.PublishedAt == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, r.PublishedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}

// YearFromPublished derives the year facet value from an ISO date string,
// falling back to the current year when the date is missing or malformed.
func YearFromPublished(publishedAt string) int {
	if len(publishedAt) >= 4 {
		if y, err := strconv.Atoi(publishedAt[:4]); err == nil && y > 0 {
			return y
		}
	}
	return time.Now().Year()
}
