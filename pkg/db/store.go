package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"reportdex/models"
	"reportdex/pkg/schema"
)

// reportColumns is the column list every row scan uses.
const reportColumns = `id, file_stem, title, content_source, published_at, year,
	duration_seconds, thumbnail_url, canonical_url, channel, language,
	category, subcategory, categories, content_type, complexity_level,
	key_topics, has_audio, audio_duration_seconds, has_transcript, transcript_chars`

// categoriesDoc is the persisted shape of the structured category column.
type categoriesDoc struct {
	Categories []models.CategoryGroup `json:"categories"`
}

// Insert stores a report row, replacing an existing row with the same id.
func (db *DB) Insert(r *models.Report) error {
	category, err := json.Marshal(r.Analysis.Category)
	if err != nil {
		return fmt.Errorf("failed to encode category list: %w", err)
	}
	topics, err := json.Marshal(r.Analysis.KeyTopics)
	if err != nil {
		return fmt.Errorf("failed to encode key topics: %w", err)
	}
	var categories interface{}
	if len(r.Analysis.Categories) > 0 {
		b, err := json.Marshal(categoriesDoc{Categories: r.Analysis.Categories})
		if err != nil {
			return fmt.Errorf("failed to encode category groups: %w", err)
		}
		categories = string(b)
	}

	searchText := r.SearchText
	if searchText == "" {
		searchText = schema.BuildSearchText(r)
	}

	// Check for an existing row first so re-imports update in place.
	var existing int64
	err = db.QueryRow("SELECT report_id FROM reports WHERE id = ?", r.ID).Scan(&existing)
	if err == nil {
		_, err = db.Exec(`
			UPDATE reports SET
				file_stem = ?, title = ?, content_source = ?, published_at = ?,
				year = ?, duration_seconds = ?, thumbnail_url = ?, canonical_url = ?,
				channel = ?, language = ?, category = ?, subcategory = ?,
				categories = ?, content_type = ?, complexity_level = ?, key_topics = ?,
				has_audio = ?, audio_duration_seconds = ?, has_transcript = ?,
				transcript_chars = ?, search_text = ?
			WHERE report_id = ?
		`, r.FileStem, r.Title, r.ContentSource, r.PublishedAt,
			r.Year, r.DurationSeconds, r.ThumbnailURL, r.CanonicalURL,
			r.Channel, r.Analysis.Language, string(category), r.Analysis.Subcategory,
			categories, r.Analysis.ContentType, r.Analysis.ComplexityLevel, string(topics),
			r.Media.HasAudio, r.Media.AudioDurationSeconds, r.Media.HasTranscript,
			r.Media.TranscriptChars, searchText, existing)
		if err != nil {
			return fmt.Errorf("failed to update report %s: %w", r.ID, err)
		}
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check existing report: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO reports (
			id, file_stem, title, content_source, published_at, year,
			duration_seconds, thumbnail_url, canonical_url, channel, language,
			category, subcategory, categories, content_type, complexity_level,
			key_topics, has_audio, audio_duration_seconds, has_transcript,
			transcript_chars, search_text
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.FileStem, r.Title, r.ContentSource, r.PublishedAt, r.Year,
		r.DurationSeconds, r.ThumbnailURL, r.CanonicalURL, r.Channel, r.Analysis.Language,
		string(category), r.Analysis.Subcategory, categories, r.Analysis.ContentType,
		r.Analysis.ComplexityLevel, string(topics), r.Media.HasAudio,
		r.Media.AudioDurationSeconds, r.Media.HasTranscript,
		r.Media.TranscriptChars, searchText)
	if err != nil {
		return fmt.Errorf("failed to insert report %s: %w", r.ID, err)
	}
	return nil
}

// ReportByID resolves a report by primary id or file-stem natural key.
// Returns nil on miss.
func (db *DB) ReportByID(id string) (*models.Report, error) {
	row := db.QueryRow(
		"SELECT "+reportColumns+" FROM reports WHERE id = ? OR file_stem = ? LIMIT 1",
		id, id)
	rec, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report %s: %w", id, err)
	}
	return rec, nil
}

// Count returns the number of stored reports.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM reports").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return n, nil
}

// Delete removes a report row by id or file stem. Returns whether a row
// was removed; the table has no cached view, so the removal is visible to
// the next query immediately.
func (db *DB) Delete(id string) (bool, error) {
	res, err := db.Exec("DELETE FROM reports WHERE id = ? OR file_stem = ?", id, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete report %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return n > 0, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanReport reads one row into a canonical record. Malformed JSON in the
// list columns degrades to empty values rather than failing the scan.
func scanReport(row rowScanner) (*models.Report, error) {
	var r models.Report
	var publishedAt, thumbnail, canonical, channel sql.NullString
	var category, subcategory, categories, contentType, complexity, topics sql.NullString
	var year sql.NullInt64

	err := row.Scan(
		&r.ID, &r.FileStem, &r.Title, &r.ContentSource, &publishedAt, &year,
		&r.DurationSeconds, &thumbnail, &canonical, &channel, &r.Analysis.Language,
		&category, &subcategory, &categories, &contentType, &complexity,
		&topics, &r.Media.HasAudio, &r.Media.AudioDurationSeconds,
		&r.Media.HasTranscript, &r.Media.TranscriptChars,
	)
	if err != nil {
		return nil, err
	}

	r.PublishedAt = publishedAt.String
	r.ThumbnailURL = thumbnail.String
	r.CanonicalURL = canonical.String
	r.Channel = channel.String
	r.Year = int(year.Int64)
	r.Analysis.Subcategory = subcategory.String
	r.Analysis.ContentType = contentType.String
	r.Analysis.ComplexityLevel = complexity.String

	if category.Valid && category.String != "" {
		if err := json.Unmarshal([]byte(category.String), &r.Analysis.Category); err != nil {
			r.Analysis.Category = nil
		}
	}
	if topics.Valid && topics.String != "" {
		if err := json.Unmarshal([]byte(topics.String), &r.Analysis.KeyTopics); err != nil {
			r.Analysis.KeyTopics = nil
		}
	}
	if categories.Valid && categories.String != "" {
		var doc categoriesDoc
		if err := json.Unmarshal([]byte(categories.String), &doc); err == nil {
			r.Analysis.Categories = doc.Categories
		}
	}

	r.SearchText = schema.BuildSearchText(&r)
	return &r, nil
}

// collectReports drains a result set into records.
func collectReports(rows *sql.Rows) ([]*models.Report, error) {
	defer rows.Close()
	var out []*models.Report
	for rows.Next() {
		rec, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan failed: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
