// Package output writes the edit table, mutation table and match report.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// File is an output file, lz4-compressed when its name ends in .lz4.
type File struct {
	f  *os.File
	zw *lz4.Writer
	w  io.Writer
}

// Create creates (or truncates) path for writing.
func Create(path string) (*File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	out := &File{f: f, w: f}
	if strings.HasSuffix(path, ".lz4") {
		zw := lz4.NewWriter(f)
		if err := zw.Apply(lz4.CompressionLevelOption(lz4.Level9)); err != nil {
			f.Close()
			return nil, fmt.Errorf("configure lz4 writer: %w", err)
		}
		out.zw = zw
		out.w = zw
	}
	return out, nil
}

func (o *File) Write(p []byte) (int, error) {
	return o.w.Write(p)
}

// Close flushes any compressed frame and closes the file.
func (o *File) Close() error {
	if o.zw != nil {
		if err := o.zw.Close(); err != nil {
			o.f.Close()
			return fmt.Errorf("close lz4 writer: %w", err)
		}
	}
	return o.f.Close()
}

// writeFile creates path and hands it to fn, closing it afterwards.
func writeFile(path string, fn func(io.Writer) error) error {
	f, err := Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
