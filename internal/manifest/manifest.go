// Package manifest is the JSON ledger of backup events: an append-only
// list of records plus the last-run timestamps the status report reads.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Filename is the manifest file name inside the backup directory.
const Filename = "backup_manifest.json"

// Record statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Backup types.
const (
	TypeLocal      = "local"
	TypeProduction = "production"
)

// Record describes one dump attempt. Written once, never mutated.
type Record struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source,omitempty"`
	File      string `json:"file,omitempty"`
	Filename  string `json:"filename,omitempty"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
	SHA256    string `json:"sha256,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// Manifest is the on-disk document.
type Manifest struct {
	Backups        []Record  `json:"backups"`
	LastLocal      time.Time `json:"last_local,omitzero"`
	LastProduction time.Time `json:"last_production,omitzero"`
	LastCleanup    time.Time `json:"last_cleanup,omitzero"`
}

// Store reads and rewrites the manifest file. Writers do whole-file
// read-modify-write; the invocation model is one process at a time.
type Store struct {
	path string
}

func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, Filename)}
}

// Path returns the manifest file location.
func (s *Store) Path() string { return s.path }

// Load reads the manifest. A missing or corrupt file yields a fresh
// empty manifest, never an error: losing the ledger must not block
// taking backups.
func (s *Store) Load() *Manifest {
	var m Manifest
	data, err := os.ReadFile(s.path)
	if err != nil {
		return &Manifest{}
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return &Manifest{}
	}
	return &m
}

// Save rewrites the manifest atomically: write to a temp file in the
// same directory, then rename over the old one.
func (s *Store) Save(m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, Filename+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp manifest: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

// Update loads the manifest, applies fn, and saves the result.
func (s *Store) Update(fn func(*Manifest)) error {
	m := s.Load()
	fn(m)
	return s.Save(m)
}
