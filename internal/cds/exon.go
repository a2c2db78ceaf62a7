// Package cds models coding regions as plus-strand exon intervals that
// accumulate edits as deltas over an immutable reference sequence.
package cds

import (
	"fmt"
	"maps"
	"strings"
)

// Strand is the orientation of a feature relative to the reference.
type Strand int8

const (
	Plus  Strand = 1
	Minus Strand = -1
)

// ParseStrand converts "+"/"-" (or "1"/"-1") to a Strand.
func ParseStrand(s string) (Strand, error) {
	switch s {
	case "+", "1":
		return Plus, nil
	case "-", "-1":
		return Minus, nil
	}
	return 0, fmt.Errorf("invalid strand %q", s)
}

func (s Strand) String() string {
	if s == Minus {
		return "-"
	}
	return "+"
}

// deleted marks a deleted position in the substitution map.
const deleted byte = ' '

// Exon is one contiguous 1-based closed interval [Start, End] on the plus
// strand. Edits are recorded by absolute position and only materialized
// when Sequence is read.
type Exon struct {
	Start  int64
	End    int64
	Strand Strand

	reference     string
	substitutions map[int64]byte
	insertions    map[int64]string
}

// NewExon creates an exon over the plus-strand sequence seq.
func NewExon(start, end int64, strand Strand, seq string) (*Exon, error) {
	if end-start+1 != int64(len(seq)) || start < 1 {
		return nil, &IntervalError{Start: start, End: end, Length: len(seq)}
	}
	return &Exon{
		Start:         start,
		End:           end,
		Strand:        strand,
		reference:     strings.ToUpper(seq),
		substitutions: make(map[int64]byte),
		insertions:    make(map[int64]string),
	}, nil
}

// Reference returns the unedited plus-strand sequence.
func (e *Exon) Reference() string {
	return e.reference
}

// Contains reports whether pos lies within [Start, End].
func (e *Exon) Contains(pos int64) bool {
	return pos >= e.Start && pos <= e.End
}

// Substitute replaces the base at pos. The last substitution at a
// position wins.
func (e *Exon) Substitute(pos int64, base byte) error {
	if !e.Contains(pos) {
		return &OutOfRangeError{Op: "substitute", Position: pos, Start: e.Start, End: e.End}
	}
	if !isBase(base) {
		return &InvalidBaseError{Position: pos, Bases: string(base)}
	}
	e.substitutions[pos] = upper(base)
	return nil
}

// Delete removes the base at pos, overriding any substitution there.
func (e *Exon) Delete(pos int64) error {
	if !e.Contains(pos) {
		return &OutOfRangeError{Op: "delete", Position: pos, Start: e.Start, End: e.End}
	}
	e.substitutions[pos] = deleted
	return nil
}

// Insert places bases immediately before pos. The first base of an exon
// cannot receive an insertion. Bases are stored lowercase; repeated
// inserts at the same position append, so the most recent one ends up
// next to the reference base.
func (e *Exon) Insert(pos int64, bases string) error {
	if pos < e.Start+1 || pos > e.End {
		return &OutOfRangeError{Op: "insert", Position: pos, Start: e.Start, End: e.End}
	}
	if bases == "" {
		return &InvalidBaseError{Position: pos, Bases: bases}
	}
	for i := 0; i < len(bases); i++ {
		if !isBase(bases[i]) {
			return &InvalidBaseError{Position: pos, Bases: bases}
		}
	}
	e.insertions[pos] += strings.ToLower(bases)
	return nil
}

// Sequence returns the effective plus-strand sequence with all recorded
// edits applied.
func (e *Exon) Sequence() string {
	if len(e.substitutions) == 0 && len(e.insertions) == 0 {
		return e.reference
	}

	var sb strings.Builder
	sb.Grow(len(e.reference) + 3*len(e.insertions))

	for i := 0; i < len(e.reference); i++ {
		pos := e.Start + int64(i)
		if ins, ok := e.insertions[pos]; ok {
			sb.WriteString(ins)
		}
		b := e.reference[i]
		if sub, ok := e.substitutions[pos]; ok {
			b = sub
		}
		if b != deleted {
			sb.WriteByte(b)
		}
	}

	return sb.String()
}

// Clone returns a deep copy of the exon including its pending edits.
func (e *Exon) Clone() *Exon {
	c := *e
	c.substitutions = maps.Clone(e.substitutions)
	c.insertions = maps.Clone(e.insertions)
	return &c
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
