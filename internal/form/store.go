package form

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/stemsi/marksheet-builder/internal/config"
	"github.com/stemsi/marksheet-builder/internal/model"
)

var ErrNotFound = errors.New("form not found")

// Store keeps open drafts in memory, keyed by a random UUID. Drafts do not
// survive a restart.
type Store struct {
	mu       sync.RWMutex
	forms    map[uuid.UUID]*Form
	defaults config.FormDefaults
}

// NewStore creates an empty Store whose new drafts start from defaults.
func NewStore(defaults config.FormDefaults) *Store {
	return &Store{
		forms:    make(map[uuid.UUID]*Form),
		defaults: defaults,
	}
}

// Create opens a new draft and returns its ID and initial state.
func (s *Store) Create() (uuid.UUID, model.TemplateForm) {
	id := uuid.New()
	f := New(s.defaults)

	s.mu.Lock()
	s.forms[id] = f
	s.mu.Unlock()

	return id, f.Snapshot()
}

// Get returns a snapshot of the draft.
func (s *Store) Get(id uuid.UUID) (model.TemplateForm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.forms[id]
	if !ok {
		return model.TemplateForm{}, ErrNotFound
	}
	return f.Snapshot(), nil
}

// Update applies fn to the draft under the store lock and returns the
// resulting snapshot. If fn fails the error is returned as is; mutations
// fn already made are kept.
func (s *Store) Update(id uuid.UUID, fn func(f *Form) error) (model.TemplateForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.forms[id]
	if !ok {
		return model.TemplateForm{}, ErrNotFound
	}
	if err := fn(f); err != nil {
		return f.Snapshot(), err
	}
	return f.Snapshot(), nil
}

// Delete discards the draft.
func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.forms[id]; !ok {
		return ErrNotFound
	}
	delete(s.forms, id)
	return nil
}

// Len reports the number of open drafts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.forms)
}
