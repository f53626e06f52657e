// Package store provides the SQLite-backed persistence layer: ingested
// documents (chunk texts plus their embeddings, keyed by GUID) and a durable
// cache of question embeddings keyed by canonical section key and embedding
// model. Documents are written and read whole, so a reader never observes a
// partially replaced document.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// ErrNotFound is returned when the requested document or cached embedding
// does not exist.
var ErrNotFound = errors.New("store: not found")

// Document is an ingested watershed plan ready for retrieval.
type Document struct {
	// GUID is the caller-assigned document identifier.
	GUID string
	// Chunks are the token-budgeted text segments, in document order.
	Chunks []string
	// Embeddings are the chunk vectors, parallel to Chunks.
	Embeddings [][]float32
	// Model is the embedding model the vectors were produced with.
	Model string
	// UpdatedAt is when the document was last written.
	UpdatedAt time.Time
}

// DocumentInfo is a listing entry without the chunk payload.
type DocumentInfo struct {
	GUID       string
	ChunkCount int
	Model      string
	UpdatedAt  time.Time
}

// DocumentStore persists and retrieves ingested documents. Implementations
// must be safe for concurrent use, and SaveDocument must replace any existing
// document with the same GUID atomically.
type DocumentStore interface {
	// SaveDocument inserts or fully replaces the document.
	SaveDocument(ctx context.Context, doc *Document) error
	// GetDocument returns the document, or ErrNotFound.
	GetDocument(ctx context.Context, guid string) (*Document, error)
	// DeleteDocument removes the document. Deleting a missing GUID returns
	// ErrNotFound.
	DeleteDocument(ctx context.Context, guid string) error
	// ListDocuments returns a summary of every stored document, newest first.
	ListDocuments(ctx context.Context) ([]DocumentInfo, error)
	// Close releases any resources held by the store.
	Close() error
}

// SQLiteStore implements DocumentStore plus the question-embedding cache on a
// local SQLite database.
type SQLiteStore struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default path for the document database. It
// resolves to ~/.planextract/documents.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".planextract")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("store: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "documents.db"), nil
}

// Open opens (or creates) a SQLiteStore at the given path and runs the schema
// migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteStore, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// Limit to a single connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS documents (
    guid        TEXT PRIMARY KEY,
    chunks      TEXT NOT NULL,  -- JSON array of chunk texts
    embeddings  TEXT NOT NULL,  -- JSON array of float arrays, parallel to chunks
    model       TEXT NOT NULL,
    updated_at  INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE TABLE IF NOT EXISTS question_embeddings (
    key         TEXT NOT NULL,
    model       TEXT NOT NULL,
    embedding   TEXT NOT NULL,  -- JSON float array
    created_at  INTEGER NOT NULL,
    PRIMARY KEY (key, model)
);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// SaveDocument inserts or fully replaces the document in one statement, so a
// concurrent GetDocument sees either the old version or the new one.
func (s *SQLiteStore) SaveDocument(ctx context.Context, doc *Document) error {
	if doc.GUID == "" {
		return fmt.Errorf("store: save document: empty guid")
	}
	if len(doc.Chunks) != len(doc.Embeddings) {
		return fmt.Errorf("store: save document %s: %d chunks but %d embeddings", doc.GUID, len(doc.Chunks), len(doc.Embeddings))
	}

	chunks, err := json.Marshal(doc.Chunks)
	if err != nil {
		return fmt.Errorf("store: save document %s: marshal chunks: %w", doc.GUID, err)
	}
	embeddings, err := json.Marshal(doc.Embeddings)
	if err != nil {
		return fmt.Errorf("store: save document %s: marshal embeddings: %w", doc.GUID, err)
	}

	const q = `
INSERT INTO documents (guid, chunks, embeddings, model, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(guid) DO UPDATE SET
    chunks     = excluded.chunks,
    embeddings = excluded.embeddings,
    model      = excluded.model,
    updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, q, doc.GUID, string(chunks), string(embeddings), doc.Model, time.Now().Unix()); err != nil {
		return fmt.Errorf("store: save document %s: %w", doc.GUID, err)
	}
	return nil
}

// GetDocument returns the stored document, or ErrNotFound.
func (s *SQLiteStore) GetDocument(ctx context.Context, guid string) (*Document, error) {
	const q = `SELECT chunks, embeddings, model, updated_at FROM documents WHERE guid = ?`

	var chunks, embeddings, model string
	var ts int64
	err := s.db.QueryRowContext(ctx, q, guid).Scan(&chunks, &embeddings, &model, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: document %s: %w", guid, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get document %s: %w", guid, err)
	}

	doc := &Document{GUID: guid, Model: model, UpdatedAt: time.Unix(ts, 0)}
	if err := json.Unmarshal([]byte(chunks), &doc.Chunks); err != nil {
		return nil, fmt.Errorf("store: get document %s: unmarshal chunks: %w", guid, err)
	}
	if err := json.Unmarshal([]byte(embeddings), &doc.Embeddings); err != nil {
		return nil, fmt.Errorf("store: get document %s: unmarshal embeddings: %w", guid, err)
	}
	if len(doc.Chunks) != len(doc.Embeddings) {
		return nil, fmt.Errorf("store: get document %s: %d chunks but %d embeddings", guid, len(doc.Chunks), len(doc.Embeddings))
	}
	return doc, nil
}

// DeleteDocument removes the document, returning ErrNotFound for a missing GUID.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, guid string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE guid = ?`, guid)
	if err != nil {
		return fmt.Errorf("store: delete document %s: %w", guid, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete document %s: %w", guid, err)
	}
	if n == 0 {
		return fmt.Errorf("store: document %s: %w", guid, ErrNotFound)
	}
	return nil
}

// ListDocuments returns a summary of every stored document, newest first.
func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	const q = `SELECT guid, chunks, model, updated_at FROM documents ORDER BY updated_at DESC, guid ASC`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("store: list documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentInfo
	for rows.Next() {
		var info DocumentInfo
		var chunks string
		var ts int64
		if err := rows.Scan(&info.GUID, &chunks, &info.Model, &ts); err != nil {
			return nil, fmt.Errorf("store: list documents scan: %w", err)
		}
		var texts []string
		if err := json.Unmarshal([]byte(chunks), &texts); err != nil {
			return nil, fmt.Errorf("store: list documents %s: unmarshal chunks: %w", info.GUID, err)
		}
		info.ChunkCount = len(texts)
		info.UpdatedAt = time.Unix(ts, 0)
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list documents rows: %w", err)
	}
	return out, nil
}

// GetQuestionEmbedding returns the cached embedding for (key, model), or
// ErrNotFound.
func (s *SQLiteStore) GetQuestionEmbedding(ctx context.Context, key, model string) ([]float32, error) {
	const q = `SELECT embedding FROM question_embeddings WHERE key = ? AND model = ?`

	var raw string
	err := s.db.QueryRowContext(ctx, q, key, model).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: question embedding %s/%s: %w", key, model, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: question embedding %s/%s: %w", key, model, err)
	}

	var vec []float32
	if err := json.Unmarshal([]byte(raw), &vec); err != nil {
		return nil, fmt.Errorf("store: question embedding %s/%s: unmarshal: %w", key, model, err)
	}
	return vec, nil
}

// PutQuestionEmbedding stores (or replaces) the embedding for (key, model).
func (s *SQLiteStore) PutQuestionEmbedding(ctx context.Context, key, model string, vec []float32) error {
	raw, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("store: put question embedding %s/%s: marshal: %w", key, model, err)
	}
	const q = `
INSERT INTO question_embeddings (key, model, embedding, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(key, model) DO UPDATE SET
    embedding  = excluded.embedding,
    created_at = excluded.created_at`
	if _, err := s.db.ExecContext(ctx, q, key, model, string(raw), time.Now().Unix()); err != nil {
		return fmt.Errorf("store: put question embedding %s/%s: %w", key, model, err)
	}
	return nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}
