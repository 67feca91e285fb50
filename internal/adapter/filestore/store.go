package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pscheid92/sessiontimer/internal/adapter/metrics"
	"github.com/pscheid92/sessiontimer/internal/domain"
)

const filePerm = 0o644

// Store reads and writes the state document at a fixed path.
type Store struct {
	path    string
	metrics *metrics.StoreMetrics
}

// NewStore creates a store for path. m may be nil.
func NewStore(path string, m *metrics.StoreMetrics) *Store {
	return &Store{path: path, metrics: m}
}

// Path returns the location of the state file.
func (s *Store) Path() string {
	return s.path
}

// persisted mirrors domain.Document but detects a missing or null sessions field.
type persisted struct {
	Sessions *[]domain.Session `json:"sessions"`
}

// Load reads the document. A missing file yields the empty document.
func (s *Store) Load(ctx context.Context) (doc *domain.Document, err error) {
	start := time.Now()
	size := -1
	defer func() { s.metrics.Observe("load", start, size, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		size = 0
		return domain.NewDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	size = len(data)

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrStorageCorrupt, s.path, err)
	}
	if p.Sessions == nil {
		return nil, fmt.Errorf("%w: %s: missing sessions array", domain.ErrStorageCorrupt, s.path)
	}

	return (&domain.Document{Sessions: *p.Sessions}).Normalize(), nil
}

// Save replaces the document on disk. Failures wrap domain.ErrStorageWrite and leave the
// previous file intact.
func (s *Store) Save(ctx context.Context, doc *domain.Document) (err error) {
	start := time.Now()
	size := -1
	defer func() { s.metrics.Observe("save", start, size, err) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	if doc == nil {
		doc = domain.NewDocument()
	}
	data, err := encode(doc.Normalize())
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}

	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrStorageWrite, s.path, err)
	}
	size = len(data)
	return nil
}

// Check verifies the state file can be loaded. Used by the readiness check.
func (s *Store) Check(ctx context.Context) error {
	_, err := s.Load(ctx)
	return err
}

func encode(doc *domain.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
