// Package kv provides the opaque string key-value maps the note store
// persists into. Values are read and written whole; there are no
// transactions across keys.
package kv

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("kv: key not found")

// Store is a string key-value map.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Open returns the backend named by backend ("sqlite" or "file") rooted at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "sqlite", "":
		return OpenSQLite(path)
	case "file":
		return OpenFile(path)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", backend)
	}
}

// Memory is an in-process Store, used by tests and dry runs.
type Memory struct {
	m map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

func (s *Memory) Get(key string) (string, error) {
	v, ok := s.m[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *Memory) Set(key, value string) error {
	s.m[key] = value
	return nil
}

func (s *Memory) Delete(key string) error {
	delete(s.m, key)
	return nil
}

func (s *Memory) Close() error { return nil }
