// Package schema normalizes the two accepted report document shapes (the
// legacy flat format and the universal format carrying a version marker)
// into the canonical models.Report. Downstream code never branches on
// input shape again.
package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"reportdex/models"
)

// Classification defaults applied when a document omits the field.
const (
	DefaultCategory   = "General"
	DefaultContent    = "Discussion"
	DefaultComplexity = "Intermediate"
	DefaultLanguage   = "en"
)

// versionMarker is the key whose presence identifies the universal format.
const versionMarker = "schema_version"

// Normalize parses a raw JSON document into a canonical report. fileStem is
// the source file name without extension; it supplies the natural key and
// the last-resort title.
func Normalize(data []byte, fileStem string) (*models.Report, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse report document: %w", err)
	}

	var r *models.Report
	if _, ok := raw[versionMarker]; ok {
		r = fromUniversal(raw)
	} else {
		r = fromLegacy(raw)
	}

	r.FileStem = fileStem
	if r.ID == "" {
		r.ID = fileStem
	}
	if r.Title == "" {
		r.Title = titleFromStem(fileStem)
	}
	if r.ContentSource == "" {
		r.ContentSource = "youtube"
	}
	applyAnalysisDefaults(&r.Analysis)
	r.Year = models.YearFromPublished(r.PublishedAt)
	r.SearchText = buildSearchText(r)
	return r, nil
}

// fromUniversal extracts fields from the explicit universal shape.
func fromUniversal(raw map[string]interface{}) *models.Report {
	r := &models.Report{
		ID:              asString(raw["id"]),
		Title:           asString(raw["title"]),
		ContentSource:   asString(raw["content_source"]),
		PublishedAt:     asString(raw["published_at"]),
		DurationSeconds: asInt(raw["duration_seconds"]),
		ThumbnailURL:    asString(raw["thumbnail_url"]),
		CanonicalURL:    asString(raw["canonical_url"]),
		Channel:         asString(raw["channel"]),
	}
	if a, ok := raw["analysis"].(map[string]interface{}); ok {
		r.Analysis = parseAnalysis(a)
	}
	if m, ok := raw["media"].(map[string]interface{}); ok {
		r.Media = models.Media{
			HasAudio:             asBool(m["has_audio"]),
			AudioDurationSeconds: asInt(m["audio_duration_seconds"]),
			HasTranscript:        asBool(m["has_transcript"]),
			TranscriptChars:      asInt(m["transcript_chars"]),
		}
	}
	return r
}

// fromLegacy extracts fields from the older ad hoc flat shape, walking the
// fallback chains for title, published date, and duration.
func fromLegacy(raw map[string]interface{}) *models.Report {
	video, _ := raw["video"].(map[string]interface{})
	meta, _ := raw["metadata"].(map[string]interface{})

	r := &models.Report{
		ID:            firstString(raw["id"], raw["video_id"], video["id"]),
		Title:         firstString(raw["title"], video["title"], meta["title"]),
		ContentSource: firstString(raw["content_source"], raw["source"]),
		ThumbnailURL:  firstString(raw["thumbnail_url"], video["thumbnail"], meta["thumbnail"]),
		CanonicalURL:  firstString(raw["url"], video["url"], meta["webpage_url"]),
		Channel:       firstString(raw["channel"], video["channel"], meta["uploader"]),
	}

	r.PublishedAt = firstString(raw["published_at"], video["published_at"])
	if r.PublishedAt == "" {
		// Legacy metadata carries only a compact YYYYMMDD upload date.
		r.PublishedAt = compactDateToISO(firstString(meta["upload_date"], raw["upload_date"]))
	}

	r.DurationSeconds = firstInt(raw["duration_seconds"], video["duration_seconds"], meta["duration"])

	if a, ok := raw["analysis"].(map[string]interface{}); ok {
		r.Analysis = parseAnalysis(a)
	} else {
		// Flat classification fields at the top level.
		r.Analysis = parseAnalysis(raw)
	}

	if m, ok := raw["media"].(map[string]interface{}); ok {
		r.Media = models.Media{
			HasAudio:             asBool(m["has_audio"]),
			AudioDurationSeconds: asInt(m["audio_duration_seconds"]),
			HasTranscript:        asBool(m["has_transcript"]),
			TranscriptChars:      asInt(m["transcript_chars"]),
		}
	} else {
		r.Media = models.Media{
			HasAudio:             asBool(raw["has_audio"]) || asString(raw["audio_file"]) != "",
			AudioDurationSeconds: asInt(raw["audio_duration_seconds"]),
			HasTranscript:        asBool(raw["has_transcript"]) || asString(raw["transcript"]) != "",
			TranscriptChars:      firstInt(raw["transcript_chars"], len(asString(raw["transcript"]))),
		}
	}
	return r
}

func parseAnalysis(a map[string]interface{}) models.Analysis {
	out := models.Analysis{
		Language:        asString(a["language"]),
		Subcategory:     asString(a["subcategory"]),
		ContentType:     asString(a["content_type"]),
		ComplexityLevel: firstString(a["complexity_level"], a["complexity"]),
		KeyTopics:       asStringSlice(a["key_topics"]),
	}

	switch v := a["category"].(type) {
	case string:
		if v != "" {
			out.Category = []string{v}
		}
	case []interface{}:
		out.Category = asStringSlice(v)
	}

	if groups, ok := a["categories"].([]interface{}); ok {
		for _, g := range groups {
			gm, ok := g.(map[string]interface{})
			if !ok {
				continue
			}
			name := asString(gm["category"])
			if name == "" {
				continue
			}
			out.Categories = append(out.Categories, models.CategoryGroup{
				Category:      name,
				Subcategories: asStringSlice(gm["subcategories"]),
			})
		}
	}
	return out
}

func applyAnalysisDefaults(a *models.Analysis) {
	if len(a.Category) == 0 {
		a.Category = []string{DefaultCategory}
	}
	if a.ContentType == "" {
		a.ContentType = DefaultContent
	}
	if a.ComplexityLevel == "" {
		a.ComplexityLevel = DefaultComplexity
	}
	if a.Language == "" {
		a.Language = DefaultLanguage
	}
	if a.KeyTopics == nil {
		a.KeyTopics = []string{}
	}
}

// buildSearchText precomputes the lower-cased title+topics blob used by the
// all-terms substring search.
func buildSearchText(r *models.Report) string {
	parts := append([]string{r.Title}, r.Analysis.KeyTopics...)
	return strings.ToLower(strings.Join(parts, " "))
}

// BuildSearchText exposes the search-text rule for callers that persist it.
func BuildSearchText(r *models.Report) string {
	return buildSearchText(r)
}

// compactDateToISO converts a YYYYMMDD date string to ISO (YYYY-MM-DD).
// Anything that doesn't look like a compact date passes through unchanged.
func compactDateToISO(s string) string {
	if len(s) != 8 {
		return s
	}
	if _, err := strconv.Atoi(s); err != nil {
		return s
	}
	return s[:4] + "-" + s[4:6] + "-" + s[6:8]
}

// titleFromStem derives a display title from a file stem, replacing
// underscores with spaces.
func titleFromStem(stem string) string {
	return strings.TrimSpace(strings.ReplaceAll(stem, "_", " "))
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func firstString(vals ...interface{}) string {
	for _, v := range vals {
		if s := asString(v); s != "" {
			return s
		}
	}
	return ""
}

func asInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0
		}
		return int(n)
	case int:
		if n < 0 {
			return 0
		}
		return n
	case string:
		if i, err := strconv.Atoi(n); err == nil && i >= 0 {
			return i
		}
	}
	return 0
}

func firstInt(vals ...interface{}) int {
	for _, v := range vals {
		if n := asInt(v); n != 0 {
			return n
		}
	}
	return 0
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func asStringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, it := range items {
		if s := asString(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}
