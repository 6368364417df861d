// Package report presents one query API over either index backend.
package report

import (
	"reportdex/models"
	"reportdex/pkg/queryutil"
)

// Backend is the operation set both the in-memory index and the relational
// store implement. ReportByID returns nil on miss; Delete reports whether
// anything was removed.
type Backend interface {
	Search(req *models.SearchRequest) (*models.SearchResponse, error)
	Facets(filters *models.Filters) (models.Facets, error)
	ReportByID(id string) (*models.Report, error)
	Count() (int, error)
	Delete(id string) (bool, error)
}

// Service is the query facade handed to request handlers.
type Service struct {
	backend Backend
}

// NewService wraps a backend.
func NewService(b Backend) *Service {
	return &Service{backend: b}
}

// Search runs filter → text search → sort → paginate → format.
func (s *Service) Search(req *models.SearchRequest) (*models.SearchResponse, error) {
	if req == nil {
		req = &models.SearchRequest{}
	}
	queryutil.Sanitize(req)
	return s.backend.Search(req)
}

// Facets returns the (optionally masked) facet tables for the filter UI.
func (s *Service) Facets(filters *models.Filters) (models.Facets, error) {
	return s.backend.Facets(filters)
}

// ReportByID resolves by primary id or the file-stem natural key kept for
// legacy URLs. Returns nil, nil on miss.
func (s *Service) ReportByID(id string) (*models.FormattedReport, error) {
	rec, err := s.backend.ReportByID(id)
	if err != nil || rec == nil {
		return nil, err
	}
	return models.FormatReport(rec), nil
}

// Count returns the number of indexed reports.
func (s *Service) Count() (int, error) {
	return s.backend.Count()
}

// Delete removes a report's underlying source (file or row). The in-memory
// backend refreshes itself afterwards; the relational one is always current.
func (s *Service) Delete(id string) (bool, error) {
	return s.backend.Delete(id)
}
