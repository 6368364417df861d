// Package index implements the in-memory report index: it rebuilds its
// entire state from a directory of JSON report documents and serves
// filtered, searched, sorted, paginated queries plus facet tables over it.
//
// Refresh is swap-on-complete: a rebuild assembles a fresh snapshot and
// atomically replaces the old one, so concurrent readers never observe a
// half-cleared index.
package index

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"reportdex/models"
	"reportdex/pkg/schema"
)

// DefaultRefreshInterval is the minimum gap between filesystem change
// checks.
const DefaultRefreshInterval = 5 * time.Second

// snapshot is one immutable generation of the index. All derived
// structures live here so a rebuild can replace everything at once.
type snapshot struct {
	reports  []*models.Report
	byID     map[string]*models.Report
	byStem   map[string]*models.Report
	mtimes   map[string]time.Time
	dirMtime time.Time
}

func emptySnapshot() *snapshot {
	return &snapshot{
		byID:   make(map[string]*models.Report),
		byStem: make(map[string]*models.Report),
		mtimes: make(map[string]time.Time),
	}
}

// Index serves queries over report documents stored in a directory.
// Construct one at startup and pass it into request handlers by reference.
type Index struct {
	dir      string
	interval time.Duration

	mu        sync.RWMutex
	snap      *snapshot
	lastCheck time.Time
}

// Option configures an Index.
type Option func(*Index)

// WithRefreshInterval overrides the change-check throttle window.
// Zero disables throttling (useful in tests).
func WithRefreshInterval(d time.Duration) Option {
	return func(ix *Index) { ix.interval = d }
}

// New creates an index over dir and performs the initial build.
func New(dir string, opts ...Option) (*Index, error) {
	ix := &Index{
		dir:      dir,
		interval: DefaultRefreshInterval,
		snap:     emptySnapshot(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("reports directory not accessible: %w", err)
	}
	ix.ForceRefresh()
	return ix, nil
}

// NeedsRefresh reports whether the source directory changed since the last
// rebuild. Checks are throttled to the configured interval; within the
// window it always returns false. The cheap path compares the directory
// mtime; only when that differs does it fall through to a per-file scan.
func (ix *Index) NeedsRefresh() bool {
	ix.mu.Lock()
	now := time.Now()
	if ix.interval > 0 && now.Sub(ix.lastCheck) < ix.interval {
		ix.mu.Unlock()
		return false
	}
	ix.lastCheck = now
	snap := ix.snap
	ix.mu.Unlock()

	info, err := os.Stat(ix.dir)
	if err != nil {
		return false
	}
	if info.ModTime().Equal(snap.dirMtime) {
		return false
	}
	return ix.filesChanged(snap)
}

// filesChanged scans per-file mtimes against the snapshot, returning true
// on the first added, removed, or modified document.
func (ix *Index) filesChanged(snap *snapshot) bool {
	entries, err := os.ReadDir(ix.dir)
	if err != nil {
		return false
	}
	seen := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		seen++
		prev, ok := snap.mtimes[entry.Name()]
		if !ok {
			return true // added
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Equal(prev) {
			return true // modified
		}
	}
	return seen != len(snap.mtimes) // removed
}

// ForceRefresh rebuilds unconditionally, bypassing the throttle, and
// returns the number of successfully processed documents.
func (ix *Index) ForceRefresh() int {
	return ix.rebuild()
}

// Refresh rebuilds only when the source directory changed; it returns the
// current record count either way.
func (ix *Index) Refresh() int {
	if ix.NeedsRefresh() {
		return ix.rebuild()
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.snap.reports)
}

// rebuild loads every document into a fresh snapshot and swaps it in.
// Per-document failures are logged and skipped; the rebuild never aborts.
func (ix *Index) rebuild() int {
	next := emptySnapshot()

	dirInfo, err := os.Stat(ix.dir)
	if err != nil {
		log.Printf("index: cannot stat reports directory %s: %v", ix.dir, err)
		return 0
	}
	next.dirMtime = dirInfo.ModTime()

	entries, err := os.ReadDir(ix.dir)
	if err != nil {
		log.Printf("index: cannot read reports directory %s: %v", ix.dir, err)
		return 0
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(ix.dir, name)
		info, err := os.Stat(path)
		if err != nil {
			log.Printf("index: skipping %s: %v", name, err)
			continue
		}
		next.mtimes[name] = info.ModTime()

		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("index: skipping %s: %v", name, err)
			continue
		}
		stem := strings.TrimSuffix(name, ".json")
		rec, err := schema.Normalize(data, stem)
		if err != nil {
			log.Printf("index: skipping %s: %v", name, err)
			continue
		}
		if _, dup := next.byID[rec.ID]; dup {
			log.Printf("index: skipping %s: duplicate id %s", name, rec.ID)
			continue
		}
		next.reports = append(next.reports, rec)
		next.byID[rec.ID] = rec
		next.byStem[rec.FileStem] = rec
	}

	ix.mu.Lock()
	ix.snap = next
	ix.lastCheck = time.Now()
	ix.mu.Unlock()

	return len(next.reports)
}

// current returns the live snapshot, refreshing first when the source
// directory changed.
func (ix *Index) current() *snapshot {
	if ix.NeedsRefresh() {
		ix.rebuild()
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.snap
}

// Count returns the number of indexed reports.
func (ix *Index) Count() (int, error) {
	return len(ix.current().reports), nil
}

// ReportByID resolves a report by primary id or by its file-stem natural
// key. Returns nil on miss.
func (ix *Index) ReportByID(id string) (*models.Report, error) {
	snap := ix.current()
	if r, ok := snap.byID[id]; ok {
		return r, nil
	}
	if r, ok := snap.byStem[id]; ok {
		return r, nil
	}
	return nil, nil
}

// Delete removes a report's source document and force-refreshes so the
// next query no longer sees it. Unknown ids are a no-op miss.
func (ix *Index) Delete(id string) (bool, error) {
	rec, err := ix.ReportByID(id)
	if err != nil || rec == nil {
		return false, err
	}
	path := filepath.Join(ix.dir, rec.FileStem+".json")
	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("failed to delete report source: %w", err)
	}
	ix.ForceRefresh()
	return true, nil
}
