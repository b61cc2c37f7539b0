package serial

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rezonia/moadian/internal/model"
)

// Record is the persisted allocation state for one fiscal memory ID:
// the retained window of issued serials plus the last one handed out.
type Record struct {
	Serials    []int64 `json:"serials"`
	LastSerial int64   `json:"last_serial"`
}

// Store persists allocation records keyed by fiscal memory ID.
type Store interface {
	// Load returns the record for fiscalID, or nil if none exists.
	Load(fiscalID string) (*Record, error)
	// Save writes the record for fiscalID.
	Save(fiscalID string, rec *Record) error
	// Delete removes the record for fiscalID, if any.
	Delete(fiscalID string) error
}

// FileStore keeps one human-inspectable JSON file per fiscal memory ID
// under a base directory. It is not safe for concurrent use by multiple
// processes sharing the same directory; there is no cross-process lock.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, model.NewLedgerError("init", "", "cannot create storage directory", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(fiscalID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("serial_history_%s.json", fiscalID))
}

// Load reads the record file for fiscalID. A missing file is not an
// error; it returns nil.
func (s *FileStore) Load(fiscalID string) (*Record, error) {
	data, err := os.ReadFile(s.path(fiscalID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, model.NewLedgerError("load", fiscalID, "cannot read history file", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, model.NewLedgerError("load", fiscalID, "history file is corrupt", err)
	}
	return &rec, nil
}

// Save writes the record file for fiscalID.
func (s *FileStore) Save(fiscalID string, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return model.NewLedgerError("save", fiscalID, "cannot encode history", err)
	}
	if err := os.WriteFile(s.path(fiscalID), data, 0o644); err != nil {
		return model.NewLedgerError("save", fiscalID, "cannot write history file", err)
	}
	return nil
}

// Delete removes the record file for fiscalID.
func (s *FileStore) Delete(fiscalID string) error {
	if err := os.Remove(s.path(fiscalID)); err != nil && !os.IsNotExist(err) {
		return model.NewLedgerError("delete", fiscalID, "cannot remove history file", err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests and ephemeral use.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

// Load returns a copy of the stored record, or nil if none exists.
func (s *MemoryStore) Load(fiscalID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[fiscalID]
	if !ok {
		return nil, nil
	}
	cp := Record{
		Serials:    append([]int64(nil), rec.Serials...),
		LastSerial: rec.LastSerial,
	}
	return &cp, nil
}

// Save stores a copy of the record.
func (s *MemoryStore) Save(fiscalID string, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[fiscalID] = &Record{
		Serials:    append([]int64(nil), rec.Serials...),
		LastSerial: rec.LastSerial,
	}
	return nil
}

// Delete removes the record.
func (s *MemoryStore) Delete(fiscalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, fiscalID)
	return nil
}
