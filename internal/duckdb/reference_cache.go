package duckdb

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/inodb/vibe-covid/internal/reference"
)

// ReferenceCache keeps a parsed reference as a gob file next to a metadata
// file listing the fingerprints of the source files:
//
//	~/.vibe-covid/reference.gob       (serialized reference)
//	~/.vibe-covid/reference.gob.meta  (source file fingerprints)
type ReferenceCache struct {
	dir string
}

// NewReferenceCache creates a reference cache in dir.
func NewReferenceCache(dir string) *ReferenceCache {
	return &ReferenceCache{dir: dir}
}

func (rc *ReferenceCache) gobPath() string {
	return filepath.Join(rc.dir, "reference.gob")
}

func (rc *ReferenceCache) metaPath() string {
	return filepath.Join(rc.dir, "reference.gob.meta")
}

// Valid reports whether the cached reference was built from exactly these
// source files.
func (rc *ReferenceCache) Valid(sources ...FileFingerprint) bool {
	data, err := os.ReadFile(rc.metaPath())
	if err != nil {
		return false
	}

	var got []string
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" || strings.HasPrefix(line, "created_at=") {
			continue
		}
		got = append(got, line)
	}
	if !slices.Equal(got, sourceLines(sources)) {
		return false
	}

	_, err = os.Stat(rc.gobPath())
	return err == nil
}

// Load reads the serialized reference.
func (rc *ReferenceCache) Load() (*reference.Reference, error) {
	f, err := os.Open(rc.gobPath())
	if err != nil {
		return nil, fmt.Errorf("open reference cache: %w", err)
	}
	defer f.Close()

	var ref reference.Reference
	if err := gob.NewDecoder(f).Decode(&ref); err != nil {
		return nil, fmt.Errorf("decode reference cache: %w", err)
	}
	return &ref, nil
}

// Write serializes ref and records the fingerprints of its sources. The
// old metadata is removed first and both files are renamed into place, so
// an interrupted write leaves no metadata that validates a stale gob.
func (rc *ReferenceCache) Write(ref *reference.Reference, sources ...FileFingerprint) error {
	if err := os.MkdirAll(rc.dir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := os.Remove(rc.metaPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cache metadata: %w", err)
	}

	err := writeAtomic(rc.gobPath(), func(f *os.File) error {
		return gob.NewEncoder(f).Encode(ref)
	})
	if err != nil {
		return fmt.Errorf("write reference cache: %w", err)
	}

	lines := append(sourceLines(sources), "created_at="+time.Now().UTC().Format(time.RFC3339), "")
	err = writeAtomic(rc.metaPath(), func(f *os.File) error {
		_, err := f.WriteString(strings.Join(lines, "\n"))
		return err
	})
	if err != nil {
		return fmt.Errorf("write cache metadata: %w", err)
	}
	return nil
}

// writeAtomic writes path through a temporary file in the same directory.
func writeAtomic(path string, fn func(*os.File) error) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if err := fn(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Clear removes the cached files.
func (rc *ReferenceCache) Clear() {
	os.Remove(rc.gobPath())
	os.Remove(rc.metaPath())
}

func sourceLines(sources []FileFingerprint) []string {
	var lines []string
	for i, s := range sources {
		lines = append(lines, s.metaLines("source"+strconv.Itoa(i))...)
	}
	return lines
}
