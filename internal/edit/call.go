// Package edit turns raw variant calls into a conflict-free list of atomic
// coding-region edits.
package edit

import "fmt"

// Class is the allele-length class of a variant call.
type Class int

const (
	SNV Class = iota
	Deletion
	Insertion
)

func (c Class) String() string {
	switch c {
	case Deletion:
		return "deletion"
	case Insertion:
		return "insertion"
	default:
		return "snv"
	}
}

// Call is one variant record from the upstream caller.
type Call struct {
	Pos  int64
	Ref  string
	Alt  string
	Qual float64
}

// Class classifies the call by comparing allele lengths. Same-length
// multi-base calls count as SNV.
func (c Call) Class() Class {
	switch {
	case len(c.Ref) > len(c.Alt):
		return Deletion
	case len(c.Ref) < len(c.Alt):
		return Insertion
	default:
		return SNV
	}
}

// DeletedRange returns the closed range of positions removed by a deletion
// call. Leading alternate bases are treated as matched.
func (c Call) DeletedRange() (start, end int64) {
	return c.Pos + int64(len(c.Alt)), c.Pos + int64(len(c.Ref)) - 1
}

// Anchor returns the position an insertion call inserts in front of.
func (c Call) Anchor() int64 {
	return c.Pos + int64(len(c.Ref))
}

func (c Call) String() string {
	return fmt.Sprintf("%d:%s>%s", c.Pos, c.Ref, c.Alt)
}
