// Package archive exports and imports the note collection as a JSON array,
// optionally zstd-compressed.
package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/suykerbuyk/carenotes/internal/note"
)

// CompressedExt marks an export written through zstd.
const CompressedExt = ".zst"

// Compressed reports whether path names a zstd export.
func Compressed(path string) bool {
	return strings.HasSuffix(path, CompressedExt)
}

// Export writes notes to path as an indented JSON array. Paths ending in
// .zst are compressed. The file is written to a temp name and renamed.
func Export(notes []note.CareNote, path string) error {
	if notes == nil {
		notes = []note.CareNote{}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}

	tmp := path + ".tmp"
	dest, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}

	if err := write(dest, notes, Compressed(path)); err != nil {
		dest.Close()
		os.Remove(tmp)
		return err
	}
	if err := dest.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close export: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename export: %w", err)
	}
	return nil
}

func write(w io.Writer, notes []note.CareNote, compress bool) error {
	if !compress {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(notes); err != nil {
			return fmt.Errorf("encode notes: %w", err)
		}
		return nil
	}

	encoder, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}
	if err := json.NewEncoder(encoder).Encode(notes); err != nil {
		encoder.Close()
		return fmt.Errorf("compress notes: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}
	return nil
}

// Import reads a file written by Export. Every note must carry an id.
func Import(path string) ([]note.CareNote, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer src.Close()

	var r io.Reader = src
	if Compressed(path) {
		decoder, err := zstd.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		defer decoder.Close()
		r = decoder
	}

	var notes []note.CareNote
	if err := json.NewDecoder(r).Decode(&notes); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	for i, n := range notes {
		if n.ID == "" {
			return nil, note.Validation("import", fmt.Errorf("note %d has no id", i))
		}
	}
	return notes, nil
}

// Merge overlays incoming on existing by id. Existing order is kept and new
// notes are appended in the order they appear.
func Merge(existing, incoming []note.CareNote) (merged []note.CareNote, added, updated int) {
	pos := make(map[string]int, len(existing))
	merged = make([]note.CareNote, 0, len(existing)+len(incoming))
	for _, n := range existing {
		pos[n.ID] = len(merged)
		merged = append(merged, n)
	}
	for _, n := range incoming {
		if i, ok := pos[n.ID]; ok {
			merged[i] = n
			updated++
			continue
		}
		pos[n.ID] = len(merged)
		merged = append(merged, n)
		added++
	}
	return merged, added, updated
}
