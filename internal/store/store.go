// Package store implements the note store: a durable mapping from note id to
// CareNote kept as one JSON array under a single namespaced key.
//
// The store assumes a single writer. Each operation is a whole-array
// read-modify-write of one key with no locking across processes.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/suykerbuyk/carenotes/internal/kv"
	"github.com/suykerbuyk/carenotes/internal/note"
)

// DefaultNamespace is the key the note array is stored under.
const DefaultNamespace = "care-notes"

// ErrNotFound is returned by Get when no record has the requested id.
var ErrNotFound = errors.New("note not found")

// Store persists CareNotes into a kv.Store.
type Store struct {
	kv  kv.Store
	key string
	now func() time.Time
}

// New returns a Store writing under namespace (DefaultNamespace if empty).
func New(backing kv.Store, namespace string) *Store {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Store{kv: backing, key: namespace, now: time.Now}
}

// WithClock overrides the time source used for UpdatedAt.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Save inserts note, or replaces the record with the same id. On replace the
// existing CreatedAt is kept and UpdatedAt is set to the current time; the
// caller's values for those fields are ignored.
func (s *Store) Save(n note.CareNote) error {
	if n.ID == "" {
		return note.Validation("save note", errors.New("note has no id"))
	}

	notes, err := s.All()
	if err != nil {
		return err
	}

	now := note.Timestamp(s.now())
	idx := indexOf(notes, n.ID)
	if idx >= 0 {
		existing := notes[idx]
		n.CreatedAt = existing.CreatedAt
		n.UpdatedAt = laterOf(existing.UpdatedAt, now)
		notes[idx] = n
	} else {
		if n.CreatedAt == "" {
			n.CreatedAt = now
		}
		if n.UpdatedAt == "" {
			n.UpdatedAt = n.CreatedAt
		}
		notes = append(notes, n)
	}

	return s.write(notes)
}

// All returns every record in storage order. An unreadable payload is
// logged and treated as empty.
func (s *Store) All() ([]note.CareNote, error) {
	raw, err := s.kv.Get(s.key)
	if errors.Is(err, kv.ErrNotFound) {
		return []note.CareNote{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}

	var notes []note.CareNote
	if err := json.Unmarshal([]byte(raw), &notes); err != nil {
		log.Printf("warning: stored notes under %q are unreadable, treating as empty: %v", s.key, err)
		return []note.CareNote{}, nil
	}
	if notes == nil {
		notes = []note.CareNote{}
	}
	return notes, nil
}

// Get returns the record with the given id, or ErrNotFound.
func (s *Store) Get(id string) (note.CareNote, error) {
	notes, err := s.All()
	if err != nil {
		return note.CareNote{}, err
	}
	if idx := indexOf(notes, id); idx >= 0 {
		return notes[idx], nil
	}
	return note.CareNote{}, fmt.Errorf("%s: %w", id, ErrNotFound)
}

// Has reports whether a record with id exists.
func (s *Store) Has(id string) (bool, error) {
	_, err := s.Get(id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Delete removes the record with id. Deleting a missing id is a no-op.
func (s *Store) Delete(id string) error {
	notes, err := s.All()
	if err != nil {
		return err
	}
	idx := indexOf(notes, id)
	if idx < 0 {
		return nil
	}
	notes = append(notes[:idx], notes[idx+1:]...)
	return s.write(notes)
}

// Clear removes every record.
func (s *Store) Clear() error {
	if err := s.kv.Delete(s.key); err != nil {
		return fmt.Errorf("clear notes: %w", err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count() (int, error) {
	notes, err := s.All()
	if err != nil {
		return 0, err
	}
	return len(notes), nil
}

// Replace overwrites the whole store with notes, as an import does.
// Records without an id are rejected and nothing is written.
func (s *Store) Replace(notes []note.CareNote) error {
	seen := make(map[string]bool, len(notes))
	for i, n := range notes {
		if n.ID == "" {
			return note.Validation("import notes", fmt.Errorf("record %d has no id", i))
		}
		if seen[n.ID] {
			return note.Validation("import notes", fmt.Errorf("duplicate id %s", n.ID))
		}
		seen[n.ID] = true
	}
	if notes == nil {
		notes = []note.CareNote{}
	}
	return s.write(notes)
}

func (s *Store) write(notes []note.CareNote) error {
	data, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("marshal notes: %w", err)
	}
	if err := s.kv.Set(s.key, string(data)); err != nil {
		return fmt.Errorf("save notes: %w", err)
	}
	return nil
}

func indexOf(notes []note.CareNote, id string) int {
	for i, n := range notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// laterOf keeps UpdatedAt from moving backwards if the wall clock does.
func laterOf(prev, now string) string {
	p, err1 := note.ParseTimestamp(prev)
	n, err2 := note.ParseTimestamp(now)
	if err1 == nil && err2 == nil && p.After(n) {
		return prev
	}
	return now
}
