// Package storage keeps issued quotations so they can be fetched and
// compared later. Backends: file and memory.
package storage

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pratham7049/azure-pricing-calculator/core/types"
	"github.com/pratham7049/azure-pricing-calculator/internal/errors"
)

// Backend is a storage backend type
type Backend string

const (
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

// ErrNotFound is the cause of lookups for unknown IDs
var ErrNotFound = stderrors.New("quotation not found")

// Store is the storage interface
type Store interface {
	// Save stores a record, assigning ID and CreatedAt when unset
	Save(ctx context.Context, rec *Record) error

	// Get retrieves a record by ID
	Get(ctx context.Context, id string) (*Record, error)

	// List returns records matching filter, newest first
	List(ctx context.Context, filter *ListFilter) ([]*Record, error)

	// Delete removes a record
	Delete(ctx context.Context, id string) error

	// Close closes the store
	Close() error
}

// Record is a stored quotation with summary fields for listing
type Record struct {
	ID          string          `json:"id"`
	ContentHash string          `json:"content_hash,omitempty"`
	Region      string          `json:"region"`
	Currency    types.Currency  `json:"currency"`
	Total       decimal.Decimal `json:"total"`
	Complete    bool            `json:"complete"`
	CreatedAt   time.Time       `json:"created_at"`

	Quotation *types.Quotation `json:"quotation"`
}

// NewRecord summarizes q. The record ID is the quotation ID.
func NewRecord(q *types.Quotation, contentHash string) *Record {
	return &Record{
		ID:          q.ID,
		ContentHash: contentHash,
		Region:      q.Region,
		Currency:    q.Currency,
		Total:       q.Total,
		Complete:    q.Complete(),
		CreatedAt:   q.GeneratedAt,
		Quotation:   q,
	}
}

// ListFilter filters record listing
type ListFilter struct {
	Region      string
	ContentHash string
	Since       time.Time
	Limit       int
}

func (f *ListFilter) match(rec *Record) bool {
	if f == nil {
		return true
	}
	if f.Region != "" && rec.Region != f.Region {
		return false
	}
	if f.ContentHash != "" && rec.ContentHash != f.ContentHash {
		return false
	}
	if !f.Since.IsZero() && rec.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}

// finish orders newest first and applies the limit
func (f *ListFilter) finish(recs []*Record) []*Record {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
	if f != nil && f.Limit > 0 && f.Limit < len(recs) {
		recs = recs[:f.Limit]
	}
	return recs
}

// CompareResult is the difference between two quotations
type CompareResult struct {
	OldID        string          `json:"old_id"`
	NewID        string          `json:"new_id"`
	OldTotal     decimal.Decimal `json:"old_total"`
	NewTotal     decimal.Decimal `json:"new_total"`
	Delta        decimal.Decimal `json:"delta"`
	DeltaPercent decimal.Decimal `json:"delta_percent"`
	Currency     types.Currency  `json:"currency"`
}

// Compare diffs two stored quotations. Totals in different currencies
// cannot be compared.
func Compare(ctx context.Context, s Store, oldID, newID string) (*CompareResult, error) {
	oldRec, err := s.Get(ctx, oldID)
	if err != nil {
		return nil, err
	}
	newRec, err := s.Get(ctx, newID)
	if err != nil {
		return nil, err
	}
	if oldRec.Currency != newRec.Currency {
		return nil, errors.CurrencyMismatch(string(oldRec.Currency), string(newRec.Currency), newID)
	}

	delta := newRec.Total.Sub(oldRec.Total)
	pct := decimal.Zero
	if !oldRec.Total.IsZero() {
		pct = delta.Div(oldRec.Total).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return &CompareResult{
		OldID:        oldID,
		NewID:        newID,
		OldTotal:     oldRec.Total,
		NewTotal:     newRec.Total,
		Delta:        delta,
		DeltaPercent: pct,
		Currency:     newRec.Currency,
	}, nil
}

// Open creates a store for backend. path is required for the file backend.
func Open(backend Backend, path string) (Store, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendFile:
		return NewFileStore(path)
	default:
		return nil, errors.Config("unknown storage backend: " + string(backend))
	}
}

func notFound(id string) error {
	return errors.Wrap(errors.TypeInput, "no quotation with id "+id, ErrNotFound).WithContext("id", id)
}

func prepare(rec *Record) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
}

// FileStore keeps one JSON document per record in a directory
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStore creates a file store rooted at basePath
func NewFileStore(basePath string) (*FileStore, error) {
	if basePath == "" {
		return nil, errors.Config("file store needs a directory")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "create storage directory", err)
	}
	return &FileStore{basePath: basePath}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.basePath, filepath.Base(id)+".json")
}

func (s *FileStore) Save(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(rec)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Internal("marshal quotation", err)
	}
	if err := os.WriteFile(s.path(rec.ID), data, 0o644); err != nil {
		return errors.Internal("write quotation", err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(s.path(id), id)
}

func (s *FileStore) read(path, id string) (*Record, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Internal("read quotation", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Parsing("decode quotation "+id, err)
	}
	return &rec, nil
}

func (s *FileStore) List(_ context.Context, filter *ListFilter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, errors.Internal("read storage directory", err)
	}

	var recs []*Record
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		rec, err := s.read(filepath.Join(s.basePath, e.Name()), e.Name())
		if err != nil {
			// foreign files in the directory are not ours to fail on
			continue
		}
		if filter.match(rec) {
			recs = append(recs, rec)
		}
	}
	return filter.finish(recs), nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(id))
	if os.IsNotExist(err) {
		return notFound(id)
	}
	return err
}

func (s *FileStore) Close() error {
	return nil
}

// MemoryStore is an in-memory storage backend
type MemoryStore struct {
	records map[string]*Record
	mu      sync.RWMutex
}

// NewMemoryStore creates a memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Save(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(rec)
	s.records[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, notFound(id)
	}
	return rec, nil
}

func (s *MemoryStore) List(_ context.Context, filter *ListFilter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var recs []*Record
	for _, rec := range s.records {
		if filter.match(rec) {
			recs = append(recs, rec)
		}
	}
	return filter.finish(recs), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return notFound(id)
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
