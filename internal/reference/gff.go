package reference

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/inodb/vibe-covid/internal/cds"
)

// LoadFASTAGFF reads a genome from a FASTA file and its CDS features from a
// GFF3 or GTF file. The two files are parsed concurrently. Features on
// other sequences than the genome are dropped.
func LoadFASTAGFF(ctx context.Context, fastaPath, gffPath string) (*Reference, error) {
	var genome *Genome
	var features []gffRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		genome, err = LoadFASTA(fastaPath)
		return err
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		features, err = loadGFF(gffPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ref := &Reference{Genome: genome}
	for _, rec := range features {
		if rec.seqID != genome.ID {
			continue
		}
		ref.Features = append(ref.Features, rec.Feature)
	}
	if len(ref.Features) == 0 {
		return nil, fmt.Errorf("no CDS features on sequence %s in %s", genome.ID, gffPath)
	}
	return ref, nil
}

// loadGFF reads the CDS features of a GFF3 or GTF file (optionally
// gzipped).
func loadGFF(path string) ([]gffRecord, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, fmt.Errorf("open GFF file: %w", err)
	}
	defer f.Close()

	recs, err := parseGFF(f)
	if err != nil {
		return nil, fmt.Errorf("parse GFF %s: %w", path, err)
	}
	return recs, nil
}

// gffRecord is a feature together with the sequence it lies on.
type gffRecord struct {
	Feature
	seqID string
}

// gffLine represents one parsed feature line.
type gffLine struct {
	seqID       string
	featureType string
	start       int64
	end         int64
	strand      string
	attributes  map[string]string
}

// ReadGFF parses CDS features from r. Lines are grouped into features by
// ID (GFF3), then Parent (GFF3), then transcript_id (GTF); groups keep the
// order in which they first appear and their exons are sorted by start.
func ReadGFF(r io.Reader) ([]Feature, error) {
	recs, err := parseGFF(r)
	if err != nil {
		return nil, err
	}
	out := make([]Feature, len(recs))
	for i, rec := range recs {
		out[i] = rec.Feature
	}
	return out, nil
}

func parseGFF(r io.Reader) ([]gffRecord, error) {
	scanner := newScanner(r)

	var order []string
	groups := make(map[string]*gffRecord)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if line == "" || strings.HasPrefix(line, "#") {
			if strings.HasPrefix(line, "##FASTA") {
				break
			}
			continue
		}

		feat, err := parseLine(line)
		if err != nil {
			return nil, &ParseError{Line: lineNum, Message: err.Error()}
		}
		if feat.featureType != "CDS" {
			continue
		}

		key := groupKey(feat.attributes)
		if key == "" {
			return nil, &ParseError{Line: lineNum, Message: "CDS line has no ID, Parent or transcript_id"}
		}

		strand, err := cds.ParseStrand(feat.strand)
		if err != nil {
			return nil, &ParseError{Line: lineNum, Message: err.Error()}
		}

		rec, ok := groups[key]
		if ok && rec.Strand != strand {
			return nil, &ParseError{
				Line:    lineNum,
				Message: fmt.Sprintf("CDS %s mixes strands %s and %s", key, rec.Strand, strand),
			}
		}
		if !ok {
			rec = &gffRecord{
				Feature: Feature{Name: featureName(feat.attributes, key), Strand: strand},
				seqID:   feat.seqID,
			}
			groups[key] = rec
			order = append(order, key)
		}
		rec.Ranges = append(rec.Ranges, Range{Start: feat.start, End: feat.end})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan GFF: %w", err)
	}

	recs := make([]gffRecord, 0, len(order))
	for _, key := range order {
		rec := groups[key]
		slices.SortStableFunc(rec.Ranges, func(a, b Range) int {
			return cmp.Compare(a.Start, b.Start)
		})
		recs = append(recs, *rec)
	}
	return recs, nil
}

func groupKey(attrs map[string]string) string {
	for _, k := range []string{"ID", "Parent", "transcript_id"} {
		if v := attrs[k]; v != "" {
			return v
		}
	}
	return ""
}

func featureName(attrs map[string]string, key string) string {
	for _, k := range []string{"gene", "gene_name", "Name", "gene_id"} {
		if v := attrs[k]; v != "" {
			return v
		}
	}
	return key
}

// parseLine parses a single GFF3 or GTF line.
func parseLine(line string) (*gffLine, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 9 {
		return nil, fmt.Errorf("expected 9 fields, got %d", len(fields))
	}

	start, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}

	end, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse end: %w", err)
	}
	if start < 1 || end < start {
		return nil, fmt.Errorf("invalid interval %d..%d", start, end)
	}

	return &gffLine{
		seqID:       fields[0],
		featureType: fields[2],
		start:       start,
		end:         end,
		strand:      fields[6],
		attributes:  parseAttributes(fields[8]),
	}, nil
}

// parseAttributes parses the attribute column in either GFF3 form
// (key=value;key=value) or GTF form (key "value"; key "value").
func parseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)

	for _, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if key, value, ok := strings.Cut(part, "="); ok && !strings.Contains(key, " ") {
			if v, err := url.PathUnescape(value); err == nil {
				value = v
			}
			// Multiple parents are comma-separated; the first one groups.
			if key == "Parent" {
				value, _, _ = strings.Cut(value, ",")
			}
			attrs[key] = value
			continue
		}

		idx := strings.Index(part, " ")
		if idx == -1 {
			continue
		}
		key := part[:idx]
		value := strings.Trim(strings.TrimSpace(part[idx+1:]), "\"")
		attrs[key] = value
	}

	return attrs
}
