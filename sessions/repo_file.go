package sessions

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// FileRepo persists client state as a single JSON document on disk. Writes go
// through a temp-file rename so a crash never leaves a torn document. The repo
// keeps a fingerprint of the last document it wrote or read, which lets the
// Watcher distinguish this process's own writes from external mutations.
type FileRepo struct {
	path string

	mu          sync.Mutex
	values      map[string]string
	fingerprint string
}

// NewFileRepo opens (or creates) the state file at path.
func NewFileRepo(path string) (*FileRepo, error) {
	r := &FileRepo{
		path:   path,
		values: make(map[string]string),
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileRepo] create state dir")
	}
	if err := r.loadLocked(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the location of the underlying state file.
func (r *FileRepo) Path() string {
	return r.path
}

// Get retrieves a value by key.
func (r *FileRepo) Get(key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[key]
	return v, ok, nil
}

// Put stores or replaces a value and flushes the document to disk.
func (r *FileRepo) Put(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return r.flushLocked()
}

// Delete removes a key and flushes the document to disk.
func (r *FileRepo) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.values[key]; !ok {
		return nil
	}
	delete(r.values, key)
	return r.flushLocked()
}

// Reload re-reads the document from disk, replacing in-memory state. Called
// after an external mutation is observed.
func (r *FileRepo) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked()
}

// Fingerprint returns the hash of the document as last written or read by
// this process.
func (r *FileRepo) Fingerprint() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fingerprint
}

func (r *FileRepo) loadLocked() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		r.values = make(map[string]string)
		r.fingerprint = fingerprintOf(nil)
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "[FileRepo.load] read state file")
	}
	values := make(map[string]string)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &values); err != nil {
			return errors.Wrap(err, "[FileRepo.load] parse state file")
		}
	}
	r.values = values
	r.fingerprint = fingerprintOf(data)
	return nil
}

func (r *FileRepo) flushLocked() error {
	data, err := json.MarshalIndent(r.values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileRepo.flush] marshal state")
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileRepo.flush] write temp file")
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return errors.Wrap(err, "[FileRepo.flush] rename temp file")
	}
	r.fingerprint = fingerprintOf(data)
	return nil
}

// FingerprintFile hashes the current on-disk document.
func FingerprintFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fingerprintOf(nil), nil
	}
	if err != nil {
		return "", errors.Wrap(err, "[FingerprintFile] read state file")
	}
	return fingerprintOf(data), nil
}

func fingerprintOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var _ Repo = (*FileRepo)(nil)
