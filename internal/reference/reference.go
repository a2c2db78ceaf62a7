// Package reference loads a reference genome and its coding regions from
// GenBank or FASTA plus GFF3/GTF files.
package reference

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/inodb/vibe-covid/internal/cds"
)

// Genome is a single plus-strand chromosome sequence.
type Genome struct {
	ID       string
	Sequence string
}

// Range is a 1-based inclusive interval.
type Range struct {
	Start int64
	End   int64
}

// Feature is a named coding region before its sequence is attached.
type Feature struct {
	Name   string
	Strand cds.Strand
	Ranges []Range
}

// Reference is a genome with its coding features.
type Reference struct {
	Genome   *Genome
	Features []Feature
}

// ParseError reports a malformed line in a reference file.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// CodingRegions builds one coding sequence per feature, cutting exon
// sequences from the genome.
func (r *Reference) CodingRegions() ([]*cds.CDS, error) {
	regions := make([]*cds.CDS, 0, len(r.Features))
	for _, f := range r.Features {
		exons := make([]*cds.Exon, 0, len(f.Ranges))
		for _, rg := range f.Ranges {
			if rg.Start < 1 || rg.End > int64(len(r.Genome.Sequence)) || rg.Start > rg.End {
				return nil, fmt.Errorf("coding region %s: range %d..%d outside genome of length %d",
					f.Name, rg.Start, rg.End, len(r.Genome.Sequence))
			}
			e, err := cds.NewExon(rg.Start, rg.End, f.Strand, r.Genome.Sequence[rg.Start-1:rg.End])
			if err != nil {
				return nil, fmt.Errorf("coding region %s: %w", f.Name, err)
			}
			exons = append(exons, e)
		}
		c, err := cds.New(f.Name, exons)
		if err != nil {
			return nil, fmt.Errorf("coding region %s: %w", f.Name, err)
		}
		regions = append(regions, c)
	}
	return regions, nil
}

// openFile opens path for reading, decompressing gzip when the name ends
// in .gz.
func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open gzip reader: %w", err)
	}
	return &gzipFile{Reader: gz, f: f}, nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	g.Reader.Close()
	return g.f.Close()
}

// newScanner returns a line scanner with room for long sequence lines.
func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)
	return scanner
}
