// Package match compares observed protein mutations against a catalog of
// named variant signatures.
package match

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/klauspost/compress/gzip"
)

// Signature is one catalog entry.
type Signature struct {
	Name          string
	FirstDetected string
	Mutations     []string
}

// DegenerateSignatureError is returned for a signature with no required
// mutations.
type DegenerateSignatureError struct {
	Name string
}

func (e *DegenerateSignatureError) Error() string {
	return fmt.Sprintf("signature %q has no required mutations", e.Name)
}

// Columns names the catalog CSV columns.
type Columns struct {
	Name          string
	FirstDetected string
	Mutations     string
}

// DefaultColumns matches the published variant catalog layout.
var DefaultColumns = Columns{
	Name:          "Name",
	FirstDetected: "First Detected",
	Mutations:     "Spike Protein Substitutions",
}

// ParseSignature removes all whitespace from s and splits it on commas.
// Empty items are dropped.
func ParseSignature(s string) []string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	var out []string
	for _, item := range strings.Split(stripped, ",") {
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// LoadCatalog reads a catalog CSV (optionally gzipped). Rows with an
// empty name are skipped.
func LoadCatalog(path string, cols Columns) ([]Signature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(bufio.NewReader(f))
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	return ReadCatalog(r, cols)
}

// ReadCatalog parses catalog CSV data from r.
func ReadCatalog(r io.Reader, cols Columns) ([]Signature, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("catalog: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}

	nameIdx, firstIdx, mutIdx := -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")) {
		case cols.Name:
			nameIdx = i
		case cols.FirstDetected:
			firstIdx = i
		case cols.Mutations:
			mutIdx = i
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("catalog: missing %q column", cols.Name)
	}
	if mutIdx < 0 {
		return nil, fmt.Errorf("catalog: missing %q column", cols.Mutations)
	}

	var sigs []Signature
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading catalog: %w", err)
		}
		if len(rec) <= nameIdx || len(rec) <= mutIdx {
			continue
		}
		name := strings.TrimSpace(rec[nameIdx])
		if name == "" {
			continue
		}
		sig := Signature{
			Name:      name,
			Mutations: ParseSignature(rec[mutIdx]),
		}
		if firstIdx >= 0 && firstIdx < len(rec) {
			sig.FirstDetected = strings.TrimSpace(rec[firstIdx])
		}
		sigs = append(sigs, sig)
	}

	return sigs, nil
}
