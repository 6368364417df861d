package index

import (
	"sort"
	"strings"

	"reportdex/models"
	"reportdex/pkg/facet"
	"reportdex/pkg/queryutil"
)

// Search applies filter → text search → sort → paginate over the current
// snapshot and formats the page.
func (ix *Index) Search(req *models.SearchRequest) (*models.SearchResponse, error) {
	queryutil.Sanitize(req)
	snap := ix.current()

	matched := filterReports(snap.reports, req.Filters)
	matched = searchReports(matched, req.Query)

	// Sort a copy: with no filters the slice above aliases the live
	// snapshot, which concurrent readers may be iterating.
	matched = append([]*models.Report(nil), matched...)
	sortReports(matched, req.Sort)

	total := len(matched)
	pagination := models.NewPagination(req.Page, req.Size, total)

	start := (req.Page - 1) * req.Size
	end := start + req.Size
	if start > total {
		start, end = total, total
	} else if end > total {
		end = total
	}

	page := make([]*models.FormattedReport, 0, end-start)
	for _, r := range matched[start:end] {
		page = append(page, models.FormatReport(r))
	}
	return &models.SearchResponse{Reports: page, Pagination: pagination}, nil
}

// Facets returns the facet tables, recomputed from the subset matching the
// active filters when any are given.
func (ix *Index) Facets(filters *models.Filters) (models.Facets, error) {
	snap := ix.current()
	subset := filterReports(snap.reports, queryutil.SanitizeFilters(filters))
	return facet.Count(subset), nil
}

// filterReports returns the records matching every set filter key.
func filterReports(reports []*models.Report, f *models.Filters) []*models.Report {
	if f.IsEmpty() {
		return reports
	}
	out := make([]*models.Report, 0, len(reports))
	for _, r := range reports {
		if Matches(r, f) {
			out = append(out, r)
		}
	}
	return out
}

// Matches evaluates the structured filter predicate against one record.
// Filter keys AND together; values within a list key union (OR).
func Matches(r *models.Report, f *models.Filters) bool {
	if f.IsEmpty() {
		return true
	}
	if f.Source != "" && r.ContentSource != f.Source {
		return false
	}
	if f.Language != "" && r.Analysis.Language != f.Language {
		return false
	}
	if f.ContentType != "" && r.Analysis.ContentType != f.ContentType {
		return false
	}
	if f.Complexity != "" && r.Analysis.ComplexityLevel != f.Complexity {
		return false
	}
	if f.Channel != "" && r.Channel != f.Channel {
		return false
	}
	if f.HasAudio != nil && r.Media.HasAudio != *f.HasAudio {
		return false
	}
	if len(f.Topics) > 0 && !hasAnyTopic(r, f.Topics) {
		return false
	}
	if len(f.Subcategory) > 0 {
		if !matchesSubcategories(r, f.ParentCategory, f.Subcategory) {
			return false
		}
	} else if len(f.Category) > 0 && !hasAnyCategory(r, f.Category) {
		return false
	}
	if f.DateFrom != "" || f.DateTo != "" {
		date := r.PublishedAt
		if len(date) > 10 {
			date = date[:10]
		}
		if date == "" {
			return false
		}
		if f.DateFrom != "" && date < f.DateFrom {
			return false
		}
		if f.DateTo != "" && date > f.DateTo {
			return false
		}
	}
	return true
}

// matchesSubcategories implements the hierarchical union rule: the record
// matches if ANY selected subcategory matches. When parent categories are
// supplied, each subcategory is matched only within its positionally paired
// parent; without parents a subcategory matches under any parent.
func matchesSubcategories(r *models.Report, parents, subs []string) bool {
	for i, sub := range subs {
		parent := ""
		if i < len(parents) {
			parent = parents[i]
		}
		if r.HasSubcategory(parent, sub) {
			return true
		}
	}
	return false
}

func hasAnyCategory(r *models.Report, wanted []string) bool {
	for _, c := range r.CategorySet() {
		for _, w := range wanted {
			if c == w {
				return true
			}
		}
	}
	return false
}

func hasAnyTopic(r *models.Report, wanted []string) bool {
	for _, t := range r.Analysis.KeyTopics {
		for _, w := range wanted {
			if strings.EqualFold(t, w) {
				return true
			}
		}
	}
	return false
}

// searchReports keeps records whose precomputed search text contains every
// term of the sanitized query. An empty query matches everything.
func searchReports(reports []*models.Report, query string) []*models.Report {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return reports
	}
	out := make([]*models.Report, 0, len(reports))
	for _, r := range reports {
		if containsAllTerms(r.SearchText, terms) {
			out = append(out, r)
		}
	}
	return out
}

func containsAllTerms(text string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}

// sortReports orders the result set deterministically, breaking ties by id.
// The memory backend has no insertion timestamp, so the added_* keys fall
// back to publish order.
func sortReports(reports []*models.Report, key string) {
	var less func(a, b *models.Report) bool
	switch key {
	case queryutil.SortOldest, queryutil.SortAddedAsc:
		less = func(a, b *models.Report) bool { return a.PublishedTime().Before(b.PublishedTime()) }
	case queryutil.SortTitleAsc:
		less = func(a, b *models.Report) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	case queryutil.SortTitleDesc:
		less = func(a, b *models.Report) bool {
			return strings.ToLower(a.Title) > strings.ToLower(b.Title)
		}
	case queryutil.SortDurationAsc:
		less = func(a, b *models.Report) bool { return a.DurationSeconds < b.DurationSeconds }
	case queryutil.SortDurationDesc:
		less = func(a, b *models.Report) bool { return a.DurationSeconds > b.DurationSeconds }
	default: // newest, added_desc
		less = func(a, b *models.Report) bool { return a.PublishedTime().After(b.PublishedTime()) }
	}
	sort.SliceStable(reports, func(i, j int) bool {
		if less(reports[i], reports[j]) {
			return true
		}
		if less(reports[j], reports[i]) {
			return false
		}
		return reports[i].ID < reports[j].ID
	})
}
