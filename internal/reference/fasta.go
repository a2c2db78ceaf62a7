package reference

import (
	"fmt"
	"io"
	"strings"
)

// LoadFASTA reads the first record of a FASTA file (optionally gzipped).
func LoadFASTA(path string) (*Genome, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	g, err := ReadFASTA(f)
	if err != nil {
		return nil, fmt.Errorf("parse FASTA %s: %w", path, err)
	}
	return g, nil
}

// ReadFASTA parses the first record from r. The ID is the first word of
// the header; the sequence is uppercased.
func ReadFASTA(r io.Reader) (*Genome, error) {
	scanner := newScanner(r)

	var g *Genome
	var seq strings.Builder

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			if g != nil {
				break
			}
			header := strings.TrimPrefix(line, ">")
			id := header
			if idx := strings.IndexAny(header, " \t"); idx != -1 {
				id = header[:idx]
			}
			g = &Genome{ID: id}
			continue
		}
		if g == nil {
			return nil, fmt.Errorf("sequence data before the first header")
		}
		seq.WriteString(strings.ToUpper(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan FASTA: %w", err)
	}
	if g == nil || seq.Len() == 0 {
		return nil, fmt.Errorf("no sequence record")
	}

	g.Sequence = seq.String()
	return g, nil
}
