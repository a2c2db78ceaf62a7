package match

import (
	"fmt"
	"io"
	"math"
	"strings"

	"gopkg.in/fatih/set.v0"

	"github.com/inodb/vibe-covid/internal/protein"
)

// newSet builds a set from string items.
func newSet(items []string) set.Interface {
	s := set.New(set.ThreadSafe)
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// MissingFraction returns |inter - req| / req for the required and observed
// mutation sets, where inter is the size of their intersection.
func MissingFraction(name string, required, observed []string) (float64, error) {
	req := newSet(required)
	if req.Size() == 0 {
		return 0, &DegenerateSignatureError{Name: name}
	}
	inter := set.Intersection(req, newSet(observed)).Size()
	return math.Abs(float64(inter-req.Size())) / float64(req.Size()), nil
}

// Hit is one matched signature.
type Hit struct {
	Signature       Signature
	MissingFraction float64
}

// Report is the outcome of matching one protein against a catalog.
type Report struct {
	Protein   string
	Mutations []string
	Hits      []Hit
}

// Matcher matches the mutations of one protein against signatures.
type Matcher struct {
	Protein   string
	Tolerance float64
}

// NewMatcher creates a matcher for the given protein.
func NewMatcher(protein string, tolerance float64) *Matcher {
	return &Matcher{Protein: protein, Tolerance: tolerance}
}

// Match restricts rows to the matcher's protein and reports every
// signature whose missing fraction is at most the tolerance.
func (m *Matcher) Match(rows []protein.Row, catalog []Signature) (*Report, error) {
	rep := &Report{Protein: m.Protein}
	for _, r := range rows {
		if r.Protein == m.Protein {
			rep.Mutations = append(rep.Mutations, r.Mutation)
		}
	}

	for _, sig := range catalog {
		f, err := MissingFraction(sig.Name, sig.Mutations, rep.Mutations)
		if err != nil {
			return nil, err
		}
		if f <= m.Tolerance {
			rep.Hits = append(rep.Hits, Hit{Signature: sig, MissingFraction: f})
		}
	}
	return rep, nil
}

// WriteText writes the report in its plain text form: the observed
// mutations, then every matching signature on a single Match line.
func (r *Report) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s protein mutations: %s\n", r.Protein, strings.Join(r.Mutations, ", ")); err != nil {
		return err
	}
	if len(r.Hits) == 0 {
		_, err := io.WriteString(w, "No match found\n")
		return err
	}
	items := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		items[i] = fmt.Sprintf("%s [%s]", h.Signature.Name, h.Signature.FirstDetected)
	}
	_, err := fmt.Fprintf(w, "Match: %s\n", strings.Join(items, ", "))
	return err
}
