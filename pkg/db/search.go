package db

import (
	"fmt"
	"log"
	"strings"

	"reportdex/models"
	"reportdex/pkg/facet"
	"reportdex/pkg/queryutil"
)

// orderings whitelists the ORDER BY text per sort key; user input never
// reaches the SQL directly. The id tiebreak keeps pages deterministic.
var orderings = map[string]string{
	queryutil.SortNewest:       "published_at DESC, id ASC",
	queryutil.SortOldest:       "published_at ASC, id ASC",
	queryutil.SortTitleAsc:     "LOWER(title) ASC, id ASC",
	queryutil.SortTitleDesc:    "LOWER(title) DESC, id ASC",
	queryutil.SortDurationAsc:  "duration_seconds ASC, id ASC",
	queryutil.SortDurationDesc: "duration_seconds DESC, id ASC",
	queryutil.SortAddedAsc:     "report_id ASC",
	queryutil.SortAddedDesc:    "report_id DESC",
}

// Search runs one filtered, searched, sorted, paginated read over the
// reports table. Query-construction and database errors are logged with
// the offending statement and bound args, then returned.
func (db *DB) Search(req *models.SearchRequest) (*models.SearchResponse, error) {
	queryutil.Sanitize(req)

	fr := BuildFilter(req.Filters, strings.Fields(req.Query))

	countQuery := "SELECT COUNT(*) FROM reports WHERE " + fr.WhereClause
	var total int
	if err := db.QueryRow(countQuery, fr.Args...).Scan(&total); err != nil {
		log.Printf("db: count query failed: %s args=%v: %v", countQuery, fr.Args, err)
		return nil, fmt.Errorf("report count query failed: %w", err)
	}

	pagination := models.NewPagination(req.Page, req.Size, total)

	orderBy := orderings[req.Sort]
	if orderBy == "" {
		orderBy = orderings[queryutil.SortNewest]
	}
	pageQuery := "SELECT " + reportColumns + " FROM reports WHERE " + fr.WhereClause +
		" ORDER BY " + orderBy + " LIMIT ? OFFSET ?"
	args := append(append([]interface{}{}, fr.Args...), req.Size, (req.Page-1)*req.Size)

	rows, err := db.Query(pageQuery, args...)
	if err != nil {
		log.Printf("db: search query failed: %s args=%v: %v", pageQuery, args, err)
		return nil, fmt.Errorf("report search query failed: %w", err)
	}
	matched, err := collectReports(rows)
	if err != nil {
		log.Printf("db: search scan failed: %s args=%v: %v", pageQuery, args, err)
		return nil, fmt.Errorf("report search query failed: %w", err)
	}

	page := make([]*models.FormattedReport, 0, len(matched))
	for _, r := range matched {
		page = append(page, models.FormatReport(r))
	}
	return &models.SearchResponse{Reports: page, Pagination: pagination}, nil
}

// Facets computes the facet tables, masked by the active filters when any
// are set. The matching rows are selected with the same parameterized
// predicate the search path uses and counted in Go, so both backends share
// one masking rule.
func (db *DB) Facets(filters *models.Filters) (models.Facets, error) {
	fr := BuildFilter(queryutil.SanitizeFilters(filters), nil)

	query := "SELECT " + reportColumns + " FROM reports WHERE " + fr.WhereClause
	rows, err := db.Query(query, fr.Args...)
	if err != nil {
		log.Printf("db: facet query failed: %s args=%v: %v", query, fr.Args, err)
		return nil, fmt.Errorf("facet query failed: %w", err)
	}
	matched, err := collectReports(rows)
	if err != nil {
		log.Printf("db: facet scan failed: %s args=%v: %v", query, fr.Args, err)
		return nil, fmt.Errorf("facet query failed: %w", err)
	}
	return facet.Count(matched), nil
}
