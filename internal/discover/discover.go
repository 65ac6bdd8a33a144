// Package discover finds audio recordings waiting in the inbox.
package discover

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// AudioFile represents a recording found on disk.
type AudioFile struct {
	Path    string
	Name    string
	Size    int64
	ModTime int64 // unix timestamp for sorting
}

// IsAudio reports whether name has one of the extensions (matched
// case-insensitively, with or without the leading dot).
func IsAudio(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, e := range extensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if e == ext {
			return true
		}
	}
	return false
}

// Discover walks dir recursively and returns non-empty audio files, sorted
// by modification time (oldest first). Hidden files and directories are
// skipped. A missing dir yields no files.
func Discover(dir string, extensions []string) ([]AudioFile, error) {
	var results []AudioFile

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == dir && os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return nil // skip inaccessible entries
		}
		name := info.Name()
		if path != dir && strings.HasPrefix(name, ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || info.Size() == 0 || !IsAudio(name, extensions) {
			return nil
		}

		results = append(results, AudioFile{
			Path:    path,
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime().Unix(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].ModTime != results[j].ModTime {
			return results[i].ModTime < results[j].ModTime
		}
		return results[i].Path < results[j].Path
	})

	return results, nil
}
