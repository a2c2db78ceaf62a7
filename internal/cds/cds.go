package cds

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// CDS is a named coding region made of one or more exons sharing a strand.
// Exons are kept in the order supplied, which is the order their sequences
// are concatenated in.
type CDS struct {
	Name   string
	Strand Strand
	Start  int64
	End    int64
	Exons  []*Exon
}

// New assembles a coding region from its exons. A coding sequence whose
// length is not a multiple of 3 is logged and accepted.
func New(name string, exons []*Exon) (*CDS, error) {
	if len(exons) == 0 {
		return nil, fmt.Errorf("coding region %q has no exons", name)
	}

	c := &CDS{
		Name:   name,
		Strand: exons[0].Strand,
		Start:  exons[0].Start,
		End:    exons[0].End,
		Exons:  exons,
	}
	for _, e := range exons[1:] {
		if e.Strand != c.Strand {
			return nil, fmt.Errorf("coding region %q mixes strands", name)
		}
		c.Start = min(c.Start, e.Start)
		c.End = max(c.End, e.End)
	}

	if n := c.Len(); n%3 != 0 {
		zap.L().Warn("coding sequence length is not a multiple of 3",
			zap.String("cds", name),
			zap.Int("length", n))
	}

	return c, nil
}

// Len returns the length of the effective sequence.
func (c *CDS) Len() int {
	n := 0
	for _, e := range c.Exons {
		n += len(e.Sequence())
	}
	return n
}

// Substitute replaces the base at pos in every exon containing it.
// Positions outside every exon are ignored.
func (c *CDS) Substitute(pos int64, base byte) error {
	for _, e := range c.Exons {
		if !e.Contains(pos) {
			continue
		}
		if err := e.Substitute(pos, base); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the base at pos in every exon containing it. Positions
// outside every exon are ignored.
func (c *CDS) Delete(pos int64) error {
	for _, e := range c.Exons {
		if !e.Contains(pos) {
			continue
		}
		if err := e.Delete(pos); err != nil {
			return err
		}
	}
	return nil
}

// Insert places bases immediately before pos in every exon that can take
// the insertion. Positions outside every exon, and the first base of an
// exon, are ignored.
func (c *CDS) Insert(pos int64, bases string) error {
	for _, e := range c.Exons {
		if pos < e.Start+1 || pos > e.End {
			continue
		}
		if err := e.Insert(pos, bases); err != nil {
			return err
		}
	}
	return nil
}

// Sequence returns the exon sequences concatenated in list order, on the
// plus strand.
func (c *CDS) Sequence() string {
	if len(c.Exons) == 1 {
		return c.Exons[0].Sequence()
	}
	var sb strings.Builder
	for _, e := range c.Exons {
		sb.WriteString(e.Sequence())
	}
	return sb.String()
}

// CodingSequence returns the sequence in the direction of transcription.
func (c *CDS) CodingSequence() string {
	seq := c.Sequence()
	if c.Strand == Minus {
		return ReverseComplement(seq)
	}
	return seq
}

// Translate returns the protein encoded by the coding sequence.
func (c *CDS) Translate() string {
	return TranslateSequence(strings.ToUpper(c.CodingSequence()))
}

// Clone returns a deep copy that shares no state with c.
func (c *CDS) Clone() *CDS {
	cp := *c
	cp.Exons = make([]*Exon, len(c.Exons))
	for i, e := range c.Exons {
		cp.Exons[i] = e.Clone()
	}
	return &cp
}
