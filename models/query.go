package models

// Filters carries the recognized structured filter criteria. Zero values
// mean "no restriction" for that key.
type Filters struct {
	Source         string   `json:"source,omitempty"`
	Language       string   `json:"language,omitempty"`
	Category       []string `json:"category,omitempty"`
	ParentCategory []string `json:"parentCategory,omitempty"`
	Subcategory    []string `json:"subcategory,omitempty"`
	ContentType    string   `json:"content_type,omitempty"`
	Complexity     string   `json:"complexity,omitempty"`
	Topics         []string `json:"topics,omitempty"`
	Channel        string   `json:"channel,omitempty"`
	HasAudio       *bool    `json:"has_audio,omitempty"`
	DateFrom       string   `json:"date_from,omitempty"`
	DateTo         string   `json:"date_to,omitempty"`
}

// IsEmpty reports whether no filter key is set.
func (f *Filters) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.Source == "" && f.Language == "" && len(f.Category) == 0 &&
		len(f.ParentCategory) == 0 && len(f.Subcategory) == 0 &&
		f.ContentType == "" && f.Complexity == "" && len(f.Topics) == 0 &&
		f.Channel == "" && f.HasAudio == nil && f.DateFrom == "" && f.DateTo == ""
}

// SearchRequest is one search call against the facade: validated filters,
// sanitized text query, sort key, and clamped pagination.
type SearchRequest struct {
	Filters *Filters `json:"filters,omitempty"`
	Query   string   `json:"query,omitempty"`
	Sort    string   `json:"sort,omitempty"`
	Page    int      `json:"page"`
	Size    int      `json:"size"`
}

// Pagination describes the page window of a search response.
type Pagination struct {
	Page       int  `json:"page"`
	Size       int  `json:"size"`
	TotalCount int  `json:"total_count"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// SearchResponse is the facade's answer shape, identical from either backend.
type SearchResponse struct {
	Reports    []*FormattedReport `json:"reports"`
	Pagination Pagination         `json:"pagination"`
}

// FacetEntry is one value with its record count within a dimension.
type FacetEntry struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Facets maps dimension name to its entries, count-descending.
type Facets map[string][]FacetEntry

// FormattedReport is the dashboard-facing projection of a Report.
type FormattedReport struct {
	ID                   string          `json:"id"`
	FileStem             string          `json:"file_stem"`
	Title                string          `json:"title"`
	ContentSource        string          `json:"content_source"`
	PublishedAt          string          `json:"published_at,omitempty"`
	Year                 int             `json:"year"`
	DurationSeconds      int             `json:"duration_seconds"`
	ThumbnailURL         string          `json:"thumbnail_url,omitempty"`
	CanonicalURL         string          `json:"canonical_url,omitempty"`
	Channel              string          `json:"channel,omitempty"`
	Language             string          `json:"language"`
	Category             []string        `json:"category"`
	Subcategory          string          `json:"subcategory,omitempty"`
	Categories           []CategoryGroup `json:"categories,omitempty"`
	ContentType          string          `json:"content_type"`
	ComplexityLevel      string          `json:"complexity_level"`
	KeyTopics            []string        `json:"key_topics"`
	HasAudio             bool            `json:"has_audio"`
	AudioDurationSeconds int             `json:"audio_duration_seconds"`
	HasTranscript        bool            `json:"has_transcript"`
	TranscriptChars      int             `json:"transcript_chars"`
}

// FormatReport projects a canonical record into the response shape.
func FormatReport(r *Report) *FormattedReport {
	if r == nil {
		return nil
	}
	category := r.Analysis.Category
	if category == nil {
		category = []string{}
	}
	topics := r.Analysis.KeyTopics
	if topics == nil {
		topics = []string{}
	}
	return &FormattedReport{
		ID:                   r.ID,
		FileStem:             r.FileStem,
		Title:                r.Title,
		ContentSource:        r.ContentSource,
		PublishedAt:          r.PublishedAt,
		Year:                 r.Year,
		DurationSeconds:      r.DurationSeconds,
		ThumbnailURL:         r.ThumbnailURL,
		CanonicalURL:         r.CanonicalURL,
		Channel:              r.Channel,
		Language:             r.Analysis.Language,
		Category:             category,
		Subcategory:          r.Analysis.Subcategory,
		Categories:           r.Analysis.Categories,
		ContentType:          r.Analysis.ContentType,
		ComplexityLevel:      r.Analysis.ComplexityLevel,
		KeyTopics:            topics,
		HasAudio:             r.Media.HasAudio,
		AudioDurationSeconds: r.Media.AudioDurationSeconds,
		HasTranscript:        r.Media.HasTranscript,
		TranscriptChars:      r.Media.TranscriptChars,
	}
}

// NewPagination computes the page window metadata for a result set.
// totalPages is ceil(totalCount/size); a page past the end still reports
// the true totals.
func NewPagination(page, size, totalCount int) Pagination {
	totalPages := 0
	if size > 0 {
		totalPages = (totalCount + size - 1) / size
	}
	return Pagination{
		Page:       page,
		Size:       size,
		TotalCount: totalCount,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && totalCount > 0,
	}
}
