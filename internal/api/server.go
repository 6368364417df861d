// Package api exposes the report index to the dashboard as a small JSON
// HTTP surface. Handlers parse request input, delegate to the facade, and
// encode its response shape unchanged.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"reportdex/models"
	"reportdex/pkg/queryutil"
	"reportdex/pkg/report"
)

// Server wires the HTTP routes to a report service.
type Server struct {
	svc    *report.Service
	router *mux.Router
}

// NewServer builds the router around a facade.
func NewServer(svc *report.Service) *Server {
	s := &Server{svc: svc, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/api/reports", s.handleSearch).Methods(http.MethodGet)
	s.router.HandleFunc("/api/reports/{id}", s.handleReport).Methods(http.MethodGet)
	s.router.HandleFunc("/api/reports/{id}", s.handleDelete).Methods(http.MethodDelete)
	s.router.HandleFunc("/api/filters", s.handleFacets).Methods(http.MethodGet)
	s.router.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	req := &models.SearchRequest{
		Filters: filtersFromParams(params),
		Query:   params.Get("query"),
		Sort:    params.Get("sort"),
		Page:    intParam(params, "page"),
		Size:    intParam(params, "size"),
	}
	resp, err := s.svc.Search(req)
	if err != nil {
		log.Printf("api: search failed: %v", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := s.svc.ReportByID(id)
	if err != nil {
		log.Printf("api: report lookup failed for %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	removed, err := s.svc.Delete(id)
	if err != nil {
		log.Printf("api: delete failed for %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	facets, err := s.svc.Facets(filtersFromParams(r.URL.Query()))
	if err != nil {
		log.Printf("api: facets failed: %v", err)
		writeError(w, http.StatusInternalServerError, "facets failed")
		return
	}
	writeJSON(w, http.StatusOK, facets)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	count, err := s.svc.Count()
	if err != nil {
		log.Printf("api: stats failed: %v", err)
		writeError(w, http.StatusInternalServerError, "stats failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// filtersFromParams lifts recognized query params into a raw map for the
// shared filter validation; everything else is ignored there.
func filtersFromParams(params url.Values) *models.Filters {
	raw := make(map[string]interface{})
	for _, key := range []string{"source", "language", "content_type", "complexity", "channel", "date_from", "date_to"} {
		if v := params.Get(key); v != "" {
			raw[key] = v
		}
	}
	for _, key := range []string{"category", "parentCategory", "subcategory", "topics"} {
		vals := params[key]
		if len(vals) == 0 {
			continue
		}
		if len(vals) == 1 {
			raw[key] = vals[0] // comma-separated form
		} else {
			raw[key] = vals
		}
	}
	if v := params.Get("has_audio"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			raw["has_audio"] = b
		}
	}
	return queryutil.ParseFilters(raw)
}

func intParam(params url.Values, key string) int {
	n, err := strconv.Atoi(params.Get(key))
	if err != nil {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
