package queryutil

import (
	"reflect"
	"strings"
	"testing"

	"reportdex/models"
)

func TestParseFilters_DropsUnknownAndBadTypes(t *testing.T) {
	raw := map[string]interface{}{
		"source":      "youtube",
		"bogus_key":   "ignored",
		"category":    []interface{}{"Tech", 42, "Health"},
		"has_audio":   "not-a-bool",
		"language":    7,
		"subcategory": []string{"AI"},
	}

	f := ParseFilters(raw)
	if f == nil {
		t.Fatal("ParseFilters() returned nil")
	}
	if f.Source != "youtube" {
		t.Errorf("Source = %q", f.Source)
	}
	if !reflect.DeepEqual(f.Category, []string{"Tech", "Health"}) {
		t.Errorf("Category = %v", f.Category)
	}
	if f.HasAudio != nil {
		t.Errorf("HasAudio = %v, want nil", f.HasAudio)
	}
	if f.Language != "" {
		t.Errorf("Language = %q, want empty", f.Language)
	}
	if !reflect.DeepEqual(f.Subcategory, []string{"AI"}) {
		t.Errorf("Subcategory = %v", f.Subcategory)
	}
}

func TestParseFilters_Empty(t *testing.T) {
	if f := ParseFilters(nil); f != nil {
		t.Errorf("ParseFilters(nil) = %+v, want nil", f)
	}
	if f := ParseFilters(map[string]interface{}{"nothing": "here"}); f != nil {
		t.Errorf("unrecognized-only input = %+v, want nil", f)
	}
}

func TestSanitizeFilters_Truncation(t *testing.T) {
	long := strings.Repeat("x", 80)
	items := make([]string, 15)
	for i := range items {
		items[i] = "v"
	}

	f := SanitizeFilters(&models.Filters{Category: items, Channel: long})
	if len(f.Category) != MaxListItems {
		t.Errorf("len(Category) = %d, want %d", len(f.Category), MaxListItems)
	}
	if len(f.Channel) != MaxItemLength {
		t.Errorf("len(Channel) = %d, want %d", len(f.Channel), MaxItemLength)
	}
}

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases and trims", "  Machine Learning  ", "machine learning"},
		{"strips angle brackets and ampersands", "<script>a & b</script>", "scripta  b/script"},
		{"empty stays empty", "   ", ""},
		{"caps length", strings.Repeat("a", 300), strings.Repeat("a", MaxQueryLen)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeQuery(tt.in); got != tt.want {
				t.Errorf("SanitizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeSort(t *testing.T) {
	if got := NormalizeSort("title_asc"); got != SortTitleAsc {
		t.Errorf("NormalizeSort(title_asc) = %q", got)
	}
	for _, bad := range []string{"", "bogus", "DROP TABLE"} {
		if got := NormalizeSort(bad); got != SortNewest {
			t.Errorf("NormalizeSort(%q) = %q, want %q", bad, got, SortNewest)
		}
	}
}

func TestClamping(t *testing.T) {
	tests := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, DefaultSize},
		{-5, -5, 1, 1},
		{5000, 500, MaxPage, MaxPageSize},
		{3, 25, 3, 25},
	}
	for _, tt := range tests {
		if got := ClampPage(tt.page); got != tt.wantPage {
			t.Errorf("ClampPage(%d) = %d, want %d", tt.page, got, tt.wantPage)
		}
		if got := ClampSize(tt.size); got != tt.wantSize {
			t.Errorf("ClampSize(%d) = %d, want %d", tt.size, got, tt.wantSize)
		}
	}
}
