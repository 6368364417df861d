package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"reportdex/pkg/schema"
)

// ImportDir normalizes every JSON report document under dir into the
// reports table, returning the number imported. Per-document failures are
// logged and skipped.
func (db *DB) ImportDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read reports directory: %w", err)
	}

	imported := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Printf("db: skipping %s: %v", entry.Name(), err)
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), ".json")
		rec, err := schema.Normalize(data, stem)
		if err != nil {
			log.Printf("db: skipping %s: %v", entry.Name(), err)
			continue
		}
		if err := db.Insert(rec); err != nil {
			log.Printf("db: skipping %s: %v", entry.Name(), err)
			continue
		}
		imported++
	}
	return imported, nil
}
