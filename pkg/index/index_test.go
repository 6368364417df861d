package index

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"reportdex/models"
)

// writeReport drops one JSON report document into dir.
func writeReport(t *testing.T, dir, stem, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, stem+".json"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", stem, err)
	}
}

// seedCategoryFixtures creates the three-record category example set:
// R1 Tech/AI, R2 Tech/Robotics, R3 Health (no subcategories).
func seedCategoryFixtures(t *testing.T, dir string) {
	t.Helper()
	writeReport(t, dir, "r1", `{
		"schema_version": "1.0", "id": "r1", "title": "Intro to Machine Learning",
		"published_at": "2024-03-01T00:00:00Z", "duration_seconds": 600,
		"analysis": {
			"category": ["Tech"],
			"categories": [{"category": "Tech", "subcategories": ["AI"]}],
			"key_topics": ["neural networks"]
		}
	}`)
	writeReport(t, dir, "r2", `{
		"schema_version": "1.0", "id": "r2", "title": "Robot Arms Explained",
		"published_at": "2024-02-01T00:00:00Z", "duration_seconds": 1200,
		"analysis": {
			"category": ["Tech"],
			"categories": [{"category": "Tech", "subcategories": ["Robotics"]}]
		}
	}`)
	writeReport(t, dir, "r3", `{
		"schema_version": "1.0", "id": "r3", "title": "Cooking Basics",
		"published_at": "2024-01-01T00:00:00Z", "duration_seconds": 300,
		"analysis": {"category": ["Health"]}
	}`)
}

func newTestIndex(t *testing.T, dir string) *Index {
	t.Helper()
	ix, err := New(dir, WithRefreshInterval(0))
	if err != nil {
		t.Fatalf("failed to build index: %v", err)
	}
	return ix
}

func TestRebuild_SkipsMalformedDocuments(t *testing.T) {
	dir := t.TempDir()
	seedCategoryFixtures(t, dir)
	writeReport(t, dir, "broken", `{this is not json`)

	ix := newTestIndex(t, dir)
	count, err := ix.Count()
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3 (malformed document skipped)", count)
	}
}

func TestSearch_CategoryFilter(t *testing.T) {
	dir := t.TempDir()
	seedCategoryFixtures(t, dir)
	ix := newTestIndex(t, dir)

	resp, err := ix.Search(&models.SearchRequest{
		Filters: &models.Filters{Category: []string{"Tech"}},
	})
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if resp.Pagination.TotalCount != 2 {
		t.Errorf("TotalCount = %d, want 2", resp.Pagination.TotalCount)
	}
	for _, r := range resp.Reports {
		if r.ID == "r3" {
			t.Error("Health record matched Tech category filter")
		}
	}
}

func TestSearch_SubcategoryUnion(t *testing.T) {
	dir := t.TempDir()
	seedCategoryFixtures(t, dir)
	ix := newTestIndex(t, dir)

	// Two subcategories, no parent: union across parents, not intersection.
	resp, err := ix.Search(&models.SearchRequest{
		Filters: &models.Filters{Subcategory: []string{"AI", "Robotics"}},
	})
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if resp.Pagination.TotalCount != 2 {
		t.Errorf("union TotalCount = %d, want 2", resp.Pagination.TotalCount)
	}
}

func TestSearch_ParentScopedSubcategory(t *testing.T) {
	dir := t.TempDir()
	seedCategoryFixtures(t, dir)
	ix := newTestIndex(t, dir)

	resp, err := ix.Search(&models.SearchRequest{
		Filters: &models.Filters{
			ParentCategory: []string{"Tech"},
			Subcategory:    []string{"AI"},
		},
	})
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if resp.Pagination.TotalCount != 1 {
		t.Fatalf("TotalCount = %d, want 1", resp.Pagination.TotalCount)
	}
	if resp.Reports[0].ID != "r1" {
		t.Errorf("matched %s, want r1", resp.Reports[0].ID)
	}

	// Wrong parent: no cross-parent leakage.
	resp, err = ix.Search(&models.SearchRequest{
		Filters: &models.Filters{
			ParentCategory: []string{"Health"},
			Subcategory:    []string{"AI"},
		},
	})
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if resp.Pagination.TotalCount != 0 {
		t.Errorf("cross-parent TotalCount = %d, want 0", resp.Pagination.TotalCount)
	}
}

func TestSearch_TextQueryAllTermsMustMatch(t *testing.T) {
	dir := t.TempDir()
	seedCategoryFixtures(t, dir)
	ix := newTestIndex(t, dir)

	resp, err := ix.Search(&models.SearchRequest{Query: "machine learning"})
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if resp.Pagination.TotalCount != 1 || resp.Reports[0].ID != "r1" {
		t.Errorf("query matched %d records (%+v), want only r1",
			resp.Pagination.TotalCount, resp.Reports)
	}

	// Whitespace-only query disables text search.
	resp, err = ix.Search(&models.SearchRequest{Query: "   "})
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if resp.Pagination.TotalCount != 3 {
		t.Errorf("empty query TotalCount = %d, want 3", resp.Pagination.TotalCount)
	}
}

func TestSearch_PageBeyondRange(t *testing.T) {
	dir := t.TempDir()
	seedCategoryFixtures(t, dir)
	ix := newTestIndex(t, dir)

	resp, err := ix.Search(&models.SearchRequest{Page: 50, Size: 2})
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(resp.Reports) != 0 {
		t.Errorf("got %d records on out-of-range page, want 0", len(resp.Reports))
	}
	if resp.Pagination.TotalCount != 3 {
		t.Errorf("TotalCount = %d, want 3", resp.Pagination.TotalCount)
	}
	if resp.Pagination.TotalPages != 2 {
		t.Errorf("TotalPages = %d, want 2", resp.Pagination.TotalPages)
	}
}

func TestSearch_Sorting(t *testing.T) {
	dir := t.TempDir()
	seedCategoryFixtures(t, dir)
	ix := newTestIndex(t, dir)

	tests := []struct {
		sort  string
		first string
	}{
		{"", "r1"},              // newest default (r1 published last)
		{"oldest", "r3"},
		{"title_asc", "r3"},     // Cooking Basics
		{"duration_desc", "r2"}, // 1200s
		{"nonsense", "r1"},      // falls back to newest
	}
	for _, tt := range tests {
		resp, err := ix.Search(&models.SearchRequest{Sort: tt.sort})
		if err != nil {
			t.Fatalf("Search(sort=%q) failed: %v", tt.sort, err)
		}
		if resp.Reports[0].ID != tt.first {
			t.Errorf("sort %q: first = %s, want %s", tt.sort, resp.Reports[0].ID, tt.first)
		}
	}
}

func TestSearch_TotalMatchesIndependentCount(t *testing.T) {
	dir := t.TempDir()
	seedCategoryFixtures(t, dir)
	ix := newTestIndex(t, dir)

	filterSets := []*models.Filters{
		nil,
		{Category: []string{"Tech"}},
		{Category: []string{"Tech", "Health"}},
		{Subcategory: []string{"AI"}},
		{Topics: []string{"neural networks"}},
		{Category: []string{"Nope"}},
	}
	for _, f := range filterSets {
		resp, err := ix.Search(&models.SearchRequest{Filters: f})
		if err != nil {
			t.Fatalf("Search() failed: %v", err)
		}

		want := 0
		snap := ix.current()
		for _, r := range snap.reports {
			if Matches(r, f) {
				want++
			}
		}
		if resp.Pagination.TotalCount != want {
			t.Errorf("filters %+v: TotalCount = %d, independent count = %d",
				f, resp.Pagination.TotalCount, want)
		}
	}
}

func TestFacets_MaskedBySelection(t *testing.T) {
	dir := t.TempDir()
	seedCategoryFixtures(t, dir)
	ix := newTestIndex(t, dir)

	facets, err := ix.Facets(&models.Filters{Category: []string{"Tech"}})
	if err != nil {
		t.Fatalf("Facets() failed: %v", err)
	}

	subs := make(map[string]int)
	for _, e := range facets["subcategory"] {
		subs[e.Value] = e.Count
	}
	if subs["AI"] != 1 || subs["Robotics"] != 1 {
		t.Errorf("masked subcategory facet = %v", subs)
	}

	// Health disappears entirely from the masked category dimension.
	for _, e := range facets["category"] {
		if e.Value == "Health" {
			t.Error("Health still present in Tech-masked category facet")
		}
	}
}

func TestReportByID_NaturalKeyAndMiss(t *testing.T) {
	dir := t.TempDir()
	writeReport(t, dir, "legacy_stem", `{"schema_version": "1.0", "id": "uid-9", "title": "Via Stem"}`)
	ix := newTestIndex(t, dir)

	byID, err := ix.ReportByID("uid-9")
	if err != nil || byID == nil {
		t.Fatalf("primary id lookup failed: %v, %v", byID, err)
	}
	byStem, err := ix.ReportByID("legacy_stem")
	if err != nil || byStem == nil {
		t.Fatalf("natural key lookup failed: %v, %v", byStem, err)
	}
	miss, err := ix.ReportByID("absent")
	if err != nil {
		t.Fatalf("miss lookup errored: %v", err)
	}
	if miss != nil {
		t.Errorf("miss lookup = %+v, want nil", miss)
	}
}

func TestDelete_RemovesSourceAndRefreshes(t *testing.T) {
	dir := t.TempDir()
	seedCategoryFixtures(t, dir)
	ix := newTestIndex(t, dir)

	before, _ := ix.Count()
	removed, err := ix.Delete("r2")
	if err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if !removed {
		t.Fatal("Delete() reported no removal")
	}

	after, _ := ix.Count()
	if after != before-1 {
		t.Errorf("Count() = %d after delete, want %d", after, before-1)
	}
	rec, err := ix.ReportByID("r2")
	if err != nil {
		t.Fatalf("lookup after delete errored: %v", err)
	}
	if rec != nil {
		t.Error("deleted report still resolvable")
	}
	if _, err := os.Stat(filepath.Join(dir, "r2.json")); !os.IsNotExist(err) {
		t.Error("source file still present after delete")
	}
}

func TestNeedsRefresh_Throttle(t *testing.T) {
	dir := t.TempDir()
	seedCategoryFixtures(t, dir)

	ix, err := New(dir, WithRefreshInterval(time.Hour))
	if err != nil {
		t.Fatalf("failed to build index: %v", err)
	}

	writeReport(t, dir, "r4", `{"schema_version": "1.0", "id": "r4", "title": "Late Arrival"}`)

	// Inside the throttle window the change stays invisible.
	if ix.NeedsRefresh() {
		t.Error("NeedsRefresh() = true inside throttle window")
	}
	count, _ := ix.Count()
	if count != 3 {
		t.Errorf("Count() = %d inside throttle window, want 3", count)
	}

	// ForceRefresh bypasses the throttle.
	if n := ix.ForceRefresh(); n != 4 {
		t.Errorf("ForceRefresh() = %d, want 4", n)
	}
}

func TestNeedsRefresh_DetectsChanges(t *testing.T) {
	dir := t.TempDir()
	seedCategoryFixtures(t, dir)
	ix := newTestIndex(t, dir)

	if ix.NeedsRefresh() {
		t.Error("NeedsRefresh() = true with no changes")
	}

	time.Sleep(10 * time.Millisecond) // ensure distinguishable mtimes
	writeReport(t, dir, "r4", `{"schema_version": "1.0", "id": "r4", "title": "New"}`)

	if !ix.NeedsRefresh() {
		t.Error("NeedsRefresh() = false after adding a document")
	}

	count, _ := ix.Count()
	if count != 4 {
		t.Errorf("Count() = %d after refresh, want 4", count)
	}

	time.Sleep(10 * time.Millisecond)
	if err := os.Remove(filepath.Join(dir, "r4.json")); err != nil {
		t.Fatalf("failed to remove fixture: %v", err)
	}
	if !ix.NeedsRefresh() {
		t.Error("NeedsRefresh() = false after removing a document")
	}
}
