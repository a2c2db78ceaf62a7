package edit

import (
	"fmt"
	"slices"
)

// Kind is the type of an atomic edit.
type Kind int

const (
	Substitute Kind = iota
	Delete
	Insert
)

// String returns the edit table name of the kind.
func (k Kind) String() string {
	switch k {
	case Delete:
		return "delete"
	case Insert:
		return "insert"
	default:
		return "substitute"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "substitute":
		return Substitute, nil
	case "delete":
		return Delete, nil
	case "insert":
		return Insert, nil
	}
	return 0, fmt.Errorf("unknown edit type %q", s)
}

// Edit is one atomic change at a plus-strand genomic position. Bases is the
// new base for a substitution, the inserted bases for an insertion, and
// empty for a deletion.
type Edit struct {
	Position int64
	Kind     Kind
	Bases    string
}

// FromCalls converts resolved calls into edits ordered by call position.
//
// Same-length calls substitute each differing base. Deletions delete every
// position of their deleted range. Insertions insert the novel tail of the
// alternate allele in front of their anchor.
func FromCalls(calls []Call) []Edit {
	sorted := slices.Clone(calls)
	sortByPos(sorted)

	edits := make([]Edit, 0, len(sorted))
	for _, c := range sorted {
		switch c.Class() {
		case SNV:
			if len(c.Alt) == 1 {
				edits = append(edits, Edit{Position: c.Pos, Kind: Substitute, Bases: c.Alt})
				continue
			}
			for i := 0; i < len(c.Alt); i++ {
				if c.Alt[i] == c.Ref[i] {
					continue
				}
				edits = append(edits, Edit{Position: c.Pos + int64(i), Kind: Substitute, Bases: c.Alt[i : i+1]})
			}
		case Deletion:
			start, end := c.DeletedRange()
			for p := start; p <= end; p++ {
				edits = append(edits, Edit{Position: p, Kind: Delete})
			}
		case Insertion:
			edits = append(edits, Edit{Position: c.Anchor(), Kind: Insert, Bases: c.Alt[len(c.Ref):]})
		}
	}
	return edits
}
