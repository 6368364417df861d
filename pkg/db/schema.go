package db

const schemaSQL = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;

-- Reports table: one row per summarized item. The categories and
-- search_text columns are added by the startup migration so older
-- databases pick them up too.
CREATE TABLE IF NOT EXISTS reports (
    report_id INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    file_stem TEXT NOT NULL,
    title TEXT NOT NULL,
    content_source TEXT NOT NULL DEFAULT 'youtube',
    published_at TEXT,
    year INTEGER,
    duration_seconds INTEGER DEFAULT 0,
    thumbnail_url TEXT,
    canonical_url TEXT,
    channel TEXT,
    language TEXT NOT NULL DEFAULT 'en',
    category TEXT,                -- JSON array of parent categories
    subcategory TEXT,
    content_type TEXT,
    complexity_level TEXT,
    key_topics TEXT,              -- JSON array
    has_audio INTEGER DEFAULT 0,
    audio_duration_seconds INTEGER DEFAULT 0,
    has_transcript INTEGER DEFAULT 0,
    transcript_chars INTEGER DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_reports_published ON reports(published_at);
CREATE INDEX IF NOT EXISTS idx_reports_source ON reports(content_source);
CREATE INDEX IF NOT EXISTS idx_reports_language ON reports(language);
CREATE INDEX IF NOT EXISTS idx_reports_content_type ON reports(content_type);
CREATE INDEX IF NOT EXISTS idx_reports_file_stem ON reports(file_stem);
`
