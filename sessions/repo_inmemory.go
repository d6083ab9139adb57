package sessions

import "sync"

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface.
// State does not survive the process; it is used in tests and ephemeral runs.
type InMemoryRepo struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewInMemoryRepo creates a new in-memory state repository.
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		values: make(map[string]string),
	}
}

// Get retrieves a value by key.
func (r *InMemoryRepo) Get(key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	return v, ok, nil
}

// Put stores or replaces a value.
func (r *InMemoryRepo) Put(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}

// Delete removes a key.
func (r *InMemoryRepo) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, key)
	return nil
}

var _ Repo = (*InMemoryRepo)(nil)
