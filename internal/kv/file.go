package kv

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// File keeps every key in one JSON object on disk. The whole file is
// rewritten on each change.
type File struct {
	path    string
	entries map[string]string
}

// OpenFile reads the map at path, starting empty if the file doesn't exist.
func OpenFile(path string) (*File, error) {
	f := &File{
		path:    path,
		entries: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	if len(data) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(data, &f.entries); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}

	return f, nil
}

func (f *File) Get(key string) (string, error) {
	v, ok := f.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *File) Set(key, value string) error {
	f.entries[key] = value
	return f.save()
}

func (f *File) Delete(key string) error {
	if _, ok := f.entries[key]; !ok {
		return nil
	}
	delete(f.entries, key)
	return f.save()
}

func (f *File) Close() error { return nil }

func (f *File) save() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	data, err := json.MarshalIndent(f.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store file: %w", err)
	}

	// Write then rename so a crash never leaves a truncated file.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	return os.Rename(tmp, f.path)
}
