package reference

import (
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/inodb/vibe-covid/internal/cds"
)

var (
	rangePattern  = regexp.MustCompile(`<?(\d+)\.\.>?(\d+)`)
	singlePattern = regexp.MustCompile(`^<?(\d+)>?$`)
)

// LoadGenBank reads the first record of a GenBank file (optionally
// gzipped) and keeps its CDS features.
func LoadGenBank(path string) (*Reference, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, fmt.Errorf("open GenBank file: %w", err)
	}
	defer f.Close()

	ref, err := ReadGenBank(f)
	if err != nil {
		return nil, fmt.Errorf("parse GenBank %s: %w", path, err)
	}
	return ref, nil
}

// gbFeature collects the lines of one feature table entry.
type gbFeature struct {
	kind      string
	line      int
	location  strings.Builder
	qualifier []string
}

// ReadGenBank parses one GenBank record from r.
func ReadGenBank(r io.Reader) (*Reference, error) {
	scanner := newScanner(r)

	genome := &Genome{}
	var features []*gbFeature
	var current *gbFeature
	var seq strings.Builder
	var inFeatures, inOrigin, inLocation bool

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "//"):
			inFeatures, inOrigin = false, false
		case strings.HasPrefix(line, "LOCUS"):
			if fields := strings.Fields(line); len(fields) >= 2 && genome.ID == "" {
				genome.ID = fields[1]
			}
		case strings.HasPrefix(line, "VERSION"):
			if fields := strings.Fields(line); len(fields) >= 2 {
				genome.ID = fields[1]
			}
		case strings.HasPrefix(line, "FEATURES"):
			inFeatures = true
		case strings.HasPrefix(line, "ORIGIN"):
			inFeatures, inOrigin = false, true
		case inOrigin:
			for i := 0; i < len(line); i++ {
				c := line[i]
				if c >= 'a' && c <= 'z' {
					c -= 'a' - 'A'
				}
				if c >= 'A' && c <= 'Z' {
					seq.WriteByte(c)
				}
			}
		case inFeatures:
			if len(line) > 5 && line[5] != ' ' {
				fields := strings.Fields(line)
				if len(fields) < 2 {
					return nil, &ParseError{Line: lineNum, Message: "feature without location"}
				}
				current = &gbFeature{kind: fields[0], line: lineNum}
				current.location.WriteString(fields[1])
				features = append(features, current)
				inLocation = true
				continue
			}
			if current == nil {
				continue
			}
			text := strings.TrimSpace(line)
			if strings.HasPrefix(text, "/") {
				inLocation = false
				current.qualifier = append(current.qualifier, text)
			} else if inLocation {
				current.location.WriteString(text)
			} else if n := len(current.qualifier); n > 0 {
				current.qualifier[n-1] += "\n" + text
			}
		}

		if strings.HasPrefix(line, "//") {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan GenBank: %w", err)
	}

	genome.Sequence = seq.String()
	if genome.Sequence == "" {
		return nil, fmt.Errorf("no ORIGIN sequence")
	}

	ref := &Reference{Genome: genome}
	for _, gf := range features {
		if gf.kind != "CDS" {
			continue
		}
		f, err := gf.toFeature()
		if err != nil {
			return nil, err
		}
		ref.Features = append(ref.Features, f)
	}
	return ref, nil
}

func (gf *gbFeature) toFeature() (Feature, error) {
	quals := parseQualifiers(gf.qualifier)

	f := Feature{Name: quals["gene"], Strand: cds.Plus}
	if f.Name == "" {
		f.Name = quals["product"]
	}
	if f.Name == "" {
		f.Name = quals["locus_tag"]
	}
	if f.Name == "" {
		return f, &ParseError{Line: gf.line, Message: "CDS feature has no /gene, /product or /locus_tag"}
	}

	ranges, strand, err := parseLocation(gf.location.String())
	if err != nil {
		return f, &ParseError{Line: gf.line, Message: err.Error()}
	}
	f.Ranges = ranges
	f.Strand = strand
	return f, nil
}

// parseQualifiers turns "/key=value" entries into a map. Wrapped values
// are rejoined with a space, except /translation which is rejoined
// directly.
func parseQualifiers(entries []string) map[string]string {
	quals := make(map[string]string, len(entries))
	for _, q := range entries {
		q = strings.TrimPrefix(q, "/")
		key, value, _ := strings.Cut(q, "=")
		sep := " "
		if key == "translation" {
			sep = ""
		}
		value = strings.ReplaceAll(value, "\n", sep)
		quals[key] = strings.Trim(value, "\"")
	}
	return quals
}

// parseLocation handles plain ranges, join(...), order(...) and
// complement(...) in either nesting. Ranges keep the order in which they
// are listed, except that a minus-strand location listed from its 5' end
// (descending starts) is flipped to ascending.
func parseLocation(loc string) ([]Range, cds.Strand, error) {
	strand := cds.Plus
	if strings.Contains(loc, "complement(") {
		strand = cds.Minus
	}

	var ranges []Range
	for _, m := range rangePattern.FindAllStringSubmatch(loc, -1) {
		start, err1 := strconv.ParseInt(m[1], 10, 64)
		end, err2 := strconv.ParseInt(m[2], 10, 64)
		if err1 != nil || err2 != nil {
			return nil, strand, fmt.Errorf("invalid range %q", m[0])
		}
		ranges = append(ranges, Range{Start: start, End: end})
	}

	if len(ranges) == 0 {
		inner := loc
		for _, p := range []string{"complement(", "join(", "order("} {
			inner = strings.TrimPrefix(inner, p)
		}
		inner = strings.TrimRight(inner, ")")
		m := singlePattern.FindStringSubmatch(inner)
		if m == nil {
			return nil, strand, fmt.Errorf("unsupported location %q", loc)
		}
		pos, _ := strconv.ParseInt(m[1], 10, 64)
		ranges = append(ranges, Range{Start: pos, End: pos})
	}

	if strand == cds.Minus && len(ranges) > 1 && ranges[0].Start > ranges[len(ranges)-1].Start {
		slices.Reverse(ranges)
	}
	return ranges, strand, nil
}
