// CLAUDE:SUMMARY Atomic JSON file writer (tmp + fsync + rename) and tolerant reader for the credential and dataset files.
// Package jsonfile reads and atomically rewrites the JSON files a harvest run
// keeps on disk. A rewrite goes to a .tmp sibling, is synced, then renamed
// over the target, so readers see either the old or the new snapshot.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Read loads path. exists is false, with a nil error, when the file is absent.
func Read(path string) (data []byte, exists bool, err error) {
	data, err = os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("jsonfile: read %s: %w", path, err)
	}
	return data, true, nil
}

// Write encodes v with two-space indentation and atomically replaces path.
func Write(path string, v any, perm fs.FileMode) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encode %s: %w", path, err)
	}
	data = append(data, '\n')
	return WriteBytes(path, data, perm)
}

// WriteBytes atomically replaces path with data.
func WriteBytes(path string, data []byte, perm fs.FileMode) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("jsonfile: mkdir %s: %w", dir, err)
		}
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("jsonfile: write tmp: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("jsonfile: write tmp: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("jsonfile: sync: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("jsonfile: close: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("jsonfile: rename: %w", err)
	}
	return nil
}
