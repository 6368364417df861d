// Package queryutil validates and clamps user-supplied query inputs:
// structured filters, free-text queries, sort keys, and page windows.
// Bad input is silently dropped or clamped, never rejected with an error.
package queryutil

import (
	"strings"

	"reportdex/models"
)

// Validation bounds.
const (
	MaxListItems  = 10
	MaxItemLength = 50
	MaxQueryLen   = 200
	MaxPage       = 1000
	MaxPageSize   = 100
	DefaultSize   = 20
)

// Recognized sort keys.
const (
	SortNewest       = "newest"
	SortOldest       = "oldest"
	SortTitleAsc     = "title_asc"
	SortTitleDesc    = "title_desc"
	SortDurationAsc  = "duration_asc"
	SortDurationDesc = "duration_desc"
	SortAddedAsc     = "added_asc"
	SortAddedDesc    = "added_desc"
)

var sortKeys = map[string]bool{
	SortNewest:       true,
	SortOldest:       true,
	SortTitleAsc:     true,
	SortTitleDesc:    true,
	SortDurationAsc:  true,
	SortDurationDesc: true,
	SortAddedAsc:     true,
	SortAddedDesc:    true,
}

// ParseFilters builds validated Filters from a loosely-typed key/value map
// (decoded JSON or query params). Unrecognized keys are ignored and
// non-conforming value types dropped rather than raising.
func ParseFilters(raw map[string]interface{}) *models.Filters {
	if len(raw) == 0 {
		return nil
	}
	f := &models.Filters{
		Source:         cleanString(raw["source"]),
		Language:       cleanString(raw["language"]),
		Category:       cleanList(raw["category"]),
		ParentCategory: cleanList(raw["parentCategory"]),
		Subcategory:    cleanList(raw["subcategory"]),
		ContentType:    cleanString(raw["content_type"]),
		Complexity:     cleanString(raw["complexity"]),
		Topics:         cleanList(raw["topics"]),
		Channel:        cleanString(raw["channel"]),
		DateFrom:       cleanString(raw["date_from"]),
		DateTo:         cleanString(raw["date_to"]),
	}
	if b, ok := raw["has_audio"].(bool); ok {
		f.HasAudio = &b
	}
	if f.IsEmpty() {
		return nil
	}
	return f
}

// SanitizeFilters clamps an already-structured filter object in place and
// returns it. Nil stays nil.
func SanitizeFilters(f *models.Filters) *models.Filters {
	if f == nil {
		return nil
	}
	f.Source = truncate(f.Source)
	f.Language = truncate(f.Language)
	f.Category = truncateList(f.Category)
	f.ParentCategory = truncateList(f.ParentCategory)
	f.Subcategory = truncateList(f.Subcategory)
	f.ContentType = truncate(f.ContentType)
	f.Complexity = truncate(f.Complexity)
	f.Topics = truncateList(f.Topics)
	f.Channel = truncate(f.Channel)
	f.DateFrom = truncate(f.DateFrom)
	f.DateTo = truncate(f.DateTo)
	return f
}

// SanitizeQuery lower-cases, trims, caps, and strips angle brackets and
// ampersands from a text query. An empty result disables text search.
func SanitizeQuery(q string) string {
	q = strings.TrimSpace(strings.ToLower(q))
	if len(q) > MaxQueryLen {
		q = q[:MaxQueryLen]
	}
	q = strings.NewReplacer("<", "", ">", "", "&", "").Replace(q)
	return strings.TrimSpace(q)
}

// QueryTerms splits a sanitized query into its whitespace-delimited terms.
func QueryTerms(q string) []string {
	return strings.Fields(SanitizeQuery(q))
}

// NormalizeSort maps unknown or empty sort keys to newest-first.
func NormalizeSort(sort string) string {
	if sortKeys[sort] {
		return sort
	}
	return SortNewest
}

// ClampPage clamps a page number into [1, MaxPage].
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	if page > MaxPage {
		return MaxPage
	}
	return page
}

// ClampSize clamps a page size into [1, MaxPageSize], defaulting when unset.
func ClampSize(size int) int {
	if size == 0 {
		return DefaultSize
	}
	if size < 1 {
		return 1
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// Sanitize normalizes one whole search request in place.
func Sanitize(req *models.SearchRequest) {
	req.Filters = SanitizeFilters(req.Filters)
	req.Query = SanitizeQuery(req.Query)
	req.Sort = NormalizeSort(req.Sort)
	req.Page = ClampPage(req.Page)
	req.Size = ClampSize(req.Size)
}

func truncate(s string) string {
	if len(s) > MaxItemLength {
		return s[:MaxItemLength]
	}
	return s
}

func truncateList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	if len(items) > MaxListItems {
		items = items[:MaxListItems]
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = truncate(strings.TrimSpace(it))
		if it != "" {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cleanString(v interface{}) string {
	s, _ := v.(string)
	return truncate(strings.TrimSpace(s))
}

func cleanList(v interface{}) []string {
	switch items := v.(type) {
	case []string:
		return truncateList(items)
	case []interface{}:
		var out []string
		for _, it := range items {
			if s, ok := it.(string); ok {
				out = append(out, s)
			}
		}
		return truncateList(out)
	case string:
		if items == "" {
			return nil
		}
		return truncateList(strings.Split(items, ","))
	}
	return nil
}
