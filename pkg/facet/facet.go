// Package facet computes per-dimension value→count tables over report
// slices. Singular dimensions contribute exactly one count per record;
// multi-valued dimensions contribute one count per distinct value present.
package facet

import (
	"sort"
	"strconv"

	"reportdex/models"
)

// Dimension names exposed by the facet tables.
const (
	DimSource      = "source"
	DimLanguage    = "language"
	DimCategory    = "category"
	DimSubcategory = "subcategory"
	DimContentType = "content_type"
	DimComplexity  = "complexity"
	DimTopics      = "topics"
	DimChannel     = "channel"
	DimYear        = "year"
)

// Count builds the full facet table for a record set. Callers that want
// masked facets pass the already-filtered subset; every dimension is then
// recomputed from that subset alone.
func Count(reports []*models.Report) models.Facets {
	counters := map[string]map[string]int{
		DimSource:      {},
		DimLanguage:    {},
		DimCategory:    {},
		DimSubcategory: {},
		DimContentType: {},
		DimComplexity:  {},
		DimTopics:      {},
		DimChannel:     {},
		DimYear:        {},
	}

	for _, r := range reports {
		bump(counters[DimSource], r.ContentSource)
		bump(counters[DimLanguage], r.Analysis.Language)
		bump(counters[DimContentType], r.Analysis.ContentType)
		bump(counters[DimComplexity], r.Analysis.ComplexityLevel)
		bump(counters[DimChannel], r.Channel)
		if r.Year > 0 {
			bump(counters[DimYear], strconv.Itoa(r.Year))
		}
		for _, c := range r.CategorySet() {
			bump(counters[DimCategory], c)
		}
		for _, s := range r.SubcategorySet() {
			bump(counters[DimSubcategory], s)
		}
		for _, t := range distinct(r.Analysis.KeyTopics) {
			bump(counters[DimTopics], t)
		}
	}

	out := make(models.Facets, len(counters))
	for dim, counts := range counters {
		out[dim] = sorted(counts)
	}
	return out
}

func bump(counts map[string]int, value string) {
	if value != "" {
		counts[value]++
	}
}

func distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// sorted orders entries by count descending, value ascending on ties so the
// output is deterministic.
func sorted(counts map[string]int) []models.FacetEntry {
	entries := make([]models.FacetEntry, 0, len(counts))
	for v, c := range counts {
		entries = append(entries, models.FacetEntry{Value: v, Count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Value < entries[j].Value
	})
	return entries
}
