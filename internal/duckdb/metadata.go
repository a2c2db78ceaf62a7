package duckdb

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// FileFingerprint holds stat-based identity for an input file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file. The path is
// made absolute so fingerprints compare across working directories.
func StatFile(path string) (FileFingerprint, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    abs,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// StatFiles fingerprints every non-empty path.
func StatFiles(paths ...string) ([]FileFingerprint, error) {
	var fps []FileFingerprint
	for _, p := range paths {
		if p == "" {
			continue
		}
		fp, err := StatFile(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		fps = append(fps, fp)
	}
	return fps, nil
}

// metaLines renders the fingerprint as key=value lines under prefix.
func (f FileFingerprint) metaLines(prefix string) []string {
	return []string{
		prefix + "_path=" + f.Path,
		prefix + "_size=" + strconv.FormatInt(f.Size, 10),
		prefix + "_modtime=" + f.ModTime.UTC().Format(time.RFC3339Nano),
	}
}
