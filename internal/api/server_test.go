package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportdex/models"
	"reportdex/pkg/index"
	"reportdex/pkg/report"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()

	fixtures := map[string]string{
		"r1": `{"schema_version": "1.0", "id": "r1", "title": "Intro to Machine Learning",
			"published_at": "2024-03-01T00:00:00Z",
			"analysis": {"category": ["Tech"],
				"categories": [{"category": "Tech", "subcategories": ["AI"]}]}}`,
		"r2": `{"schema_version": "1.0", "id": "r2", "title": "Robot Arms Explained",
			"published_at": "2024-02-01T00:00:00Z",
			"analysis": {"category": ["Tech"],
				"categories": [{"category": "Tech", "subcategories": ["Robotics"]}]}}`,
		"r3": `{"schema_version": "1.0", "id": "r3", "title": "Cooking Basics",
			"published_at": "2024-01-01T00:00:00Z",
			"analysis": {"category": ["Health"]}}`,
	}
	for stem, doc := range fixtures {
		err := os.WriteFile(filepath.Join(dir, stem+".json"), []byte(doc), 0644)
		require.NoError(t, err)
	}

	ix, err := index.New(dir, index.WithRefreshInterval(0))
	require.NoError(t, err)

	srv := httptest.NewServer(NewServer(report.NewService(ix)))
	t.Cleanup(srv.Close)
	return srv, dir
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestSearchEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var resp models.SearchResponse
	status := getJSON(t, srv.URL+"/api/reports?category=Tech", &resp)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, resp.Pagination.TotalCount)

	// Comma-separated multi-value form.
	status = getJSON(t, srv.URL+"/api/reports?subcategory=AI,Robotics", &resp)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, resp.Pagination.TotalCount)

	// Parent-scoped subcategory.
	status = getJSON(t, srv.URL+"/api/reports?parentCategory=Tech&subcategory=AI", &resp)
	assert.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, resp.Pagination.TotalCount)
	assert.Equal(t, "r1", resp.Reports[0].ID)

	// Text query.
	status = getJSON(t, srv.URL+"/api/reports?query=machine+learning", &resp)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, resp.Pagination.TotalCount)

	// Out-of-range page keeps the metadata.
	status = getJSON(t, srv.URL+"/api/reports?page=99&size=2", &resp)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, resp.Reports)
	assert.Equal(t, 3, resp.Pagination.TotalCount)
}

func TestReportEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var rec models.FormattedReport
	status := getJSON(t, srv.URL+"/api/reports/r1", &rec)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Intro to Machine Learning", rec.Title)

	status = getJSON(t, srv.URL+"/api/reports/absent", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestFacetsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var facets models.Facets
	status := getJSON(t, srv.URL+"/api/filters", &facets)
	assert.Equal(t, http.StatusOK, status)

	cats := map[string]int{}
	for _, e := range facets["category"] {
		cats[e.Value] = e.Count
	}
	assert.Equal(t, 2, cats["Tech"])
	assert.Equal(t, 1, cats["Health"])

	// Masked by active selection.
	status = getJSON(t, srv.URL+"/api/filters?category=Tech", &facets)
	assert.Equal(t, http.StatusOK, status)
	for _, e := range facets["category"] {
		assert.NotEqual(t, "Health", e.Value)
	}
}

func TestDeleteEndpoint(t *testing.T) {
	srv, dir := newTestServer(t)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/reports/r3", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, statErr := os.Stat(filepath.Join(dir, "r3.json"))
	assert.True(t, os.IsNotExist(statErr))

	var stats map[string]int
	status := getJSON(t, srv.URL+"/api/stats", &stats)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, stats["count"])

	// Repeat delete misses.
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
