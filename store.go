package blockpress

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/blockpress/content"
	"github.com/eringen/blockpress/views"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = sql.ErrNoRows

// sortableTime has a fixed width so published_at sorts as text.
const sortableTime = "2006-01-02T15:04:05.000Z"

// Origin says where a stored document came from.
type Origin int

const (
	// OriginSnapshot is the last copy the blog API returned.
	OriginSnapshot Origin = iota
	// OriginSample is bundled sample content.
	OriginSample
)

// Store wraps a SQLite database holding document snapshots and the image
// library.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the listing fallback read while a snapshot is written.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    origin INTEGER NOT NULL,
    published_at TEXT NOT NULL,
    body TEXT NOT NULL,
    saved_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS documents_origin_published ON documents (origin, published_at DESC);
CREATE TABLE IF NOT EXISTS images (
    filename TEXT PRIMARY KEY,
    original_name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);
`)
	return err
}

// SaveDocument upserts doc under its ID. Documents without an ID are
// rejected since they were never persisted.
func (s *Store) SaveDocument(doc content.Document, origin Origin) error {
	if doc.ID == "" {
		return fmt.Errorf("store: document without id")
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", doc.ID, err)
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO documents (id, origin, published_at, body, saved_at) VALUES (?, ?, ?, ?, ?)`,
		doc.ID, int(origin), doc.PublishedAt.UTC().Format(sortableTime), string(body), time.Now().UTC().Format(time.RFC3339))
	return err
}

// SaveDocuments upserts docs in one transaction.
func (s *Store) SaveDocuments(docs []content.Document, origin Origin) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO documents (id, origin, published_at, body, saved_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	now := time.Now().UTC().Format(time.RFC3339)
	for _, doc := range docs {
		if doc.ID == "" {
			continue
		}
		body, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("store: encode %s: %w", doc.ID, err)
		}
		if _, err := stmt.Exec(doc.ID, int(origin), doc.PublishedAt.UTC().Format(sortableTime), string(body), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetDocument returns the stored document with the given ID and origin.
func (s *Store) GetDocument(id string, origin Origin) (content.Document, error) {
	var body string
	err := s.db.QueryRow(`SELECT body FROM documents WHERE id = ? AND origin = ?`, id, int(origin)).Scan(&body)
	if err != nil {
		return content.Document{}, err
	}
	return decodeDocument(body)
}

// ListDocuments returns one page of stored documents of the given origin,
// newest first, with the total count.
func (s *Store) ListDocuments(origin Origin, page, limit int) ([]content.Document, int, error) {
	if page < 1 {
		page = 1
	}
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM documents WHERE origin = ?`, int(origin)).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.Query(`SELECT body FROM documents WHERE origin = ? ORDER BY published_at DESC, id LIMIT ? OFFSET ?`,
		int(origin), limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	docs := []content.Document{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, 0, err
		}
		doc, err := decodeDocument(body)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, doc)
	}
	return docs, total, rows.Err()
}

// DeleteDocument removes the snapshot of a document.
func (s *Store) DeleteDocument(id string) error {
	_, err := s.db.Exec(`DELETE FROM documents WHERE id = ? AND origin = ?`, id, int(OriginSnapshot))
	return err
}

func decodeDocument(body string) (content.Document, error) {
	var doc content.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return content.Document{}, fmt.Errorf("store: decode document: %w", err)
	}
	return doc, nil
}

// SaveImage records an uploaded image.
func (s *Store) SaveImage(img views.Image) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO images (filename, original_name, width, height, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		img.Filename, img.OriginalName, img.Width, img.Height, img.Size, img.UploadedAt.UTC().Format(time.RFC3339))
	return err
}

// ListImages returns every image, newest first.
func (s *Store) ListImages() ([]views.Image, error) {
	rows, err := s.db.Query(`SELECT filename, original_name, width, height, size, uploaded_at FROM images ORDER BY uploaded_at DESC, filename`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []views.Image
	for rows.Next() {
		var img views.Image
		var uploaded string
		if err := rows.Scan(&img.Filename, &img.OriginalName, &img.Width, &img.Height, &img.Size, &uploaded); err != nil {
			return nil, err
		}
		img.UploadedAt, _ = time.Parse(time.RFC3339, uploaded)
		images = append(images, img)
	}
	return images, rows.Err()
}

// HasImage reports whether filename is already recorded.
func (s *Store) HasImage(filename string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM images WHERE filename = ?`, filename).Scan(&n)
	return n > 0, err
}

// DeleteImage removes an image record.
func (s *Store) DeleteImage(filename string) error {
	_, err := s.db.Exec(`DELETE FROM images WHERE filename = ?`, filename)
	return err
}
