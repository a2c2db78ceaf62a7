package cds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExon(t *testing.T, start, end int64, strand Strand, seq string) *Exon {
	t.Helper()
	e, err := NewExon(start, end, strand, seq)
	require.NoError(t, err)
	return e
}

func TestNewExon_IntervalMismatch(t *testing.T) {
	_, err := NewExon(1, 5, Plus, "ACG")
	var ivErr *IntervalError
	require.ErrorAs(t, err, &ivErr)
	assert.Equal(t, 3, ivErr.Length)
}

func TestNewExon_Uppercases(t *testing.T) {
	e := newTestExon(t, 1, 4, Plus, "acgT")
	assert.Equal(t, "ACGT", e.Sequence())
	assert.Equal(t, "ACGT", e.Reference())
}

func TestExon_Substitute(t *testing.T) {
	e := newTestExon(t, 10, 14, Plus, "AAAAA")

	require.NoError(t, e.Substitute(10, 'c'))
	require.NoError(t, e.Substitute(14, 'G'))
	assert.Equal(t, "CAAAG", e.Sequence())

	// Last write wins.
	require.NoError(t, e.Substitute(10, 'T'))
	assert.Equal(t, "TAAAG", e.Sequence())
}

func TestExon_SubstituteErrors(t *testing.T) {
	e := newTestExon(t, 10, 14, Plus, "AAAAA")

	var rangeErr *OutOfRangeError
	require.ErrorAs(t, e.Substitute(9, 'C'), &rangeErr)
	assert.Equal(t, int64(9), rangeErr.Position)
	require.ErrorAs(t, e.Substitute(15, 'C'), &rangeErr)

	var baseErr *InvalidBaseError
	require.ErrorAs(t, e.Substitute(11, 'N'), &baseErr)
	require.ErrorAs(t, e.Substitute(11, ' '), &baseErr)

	assert.Equal(t, "AAAAA", e.Sequence(), "failed edits must not be recorded")
}

func TestExon_DeleteOverridesSubstitute(t *testing.T) {
	a := newTestExon(t, 1, 6, Plus, "ACGTAC")
	require.NoError(t, a.Substitute(3, 'T'))
	require.NoError(t, a.Delete(3))

	b := newTestExon(t, 1, 6, Plus, "ACGTAC")
	require.NoError(t, b.Delete(3))

	assert.Equal(t, b.Sequence(), a.Sequence())
	assert.Equal(t, "ACTAC", a.Sequence())

	var rangeErr *OutOfRangeError
	require.ErrorAs(t, a.Delete(0), &rangeErr)
	require.ErrorAs(t, a.Delete(7), &rangeErr)
}

func TestExon_Insert(t *testing.T) {
	e := newTestExon(t, 1, 4, Plus, "ACGT")

	require.NoError(t, e.Insert(3, "TT"))
	assert.Equal(t, "ACttGT", e.Sequence())

	// A second insert at the same position lands next to the reference base.
	require.NoError(t, e.Insert(3, "g"))
	assert.Equal(t, "ACttgGT", e.Sequence())

	require.NoError(t, e.Insert(4, "A"))
	assert.Equal(t, "ACttgGaT", e.Sequence())
}

func TestExon_InsertErrors(t *testing.T) {
	e := newTestExon(t, 5, 8, Plus, "ACGT")

	var rangeErr *OutOfRangeError
	require.ErrorAs(t, e.Insert(5, "A"), &rangeErr, "insert at exon start")
	require.ErrorAs(t, e.Insert(4, "A"), &rangeErr)
	require.ErrorAs(t, e.Insert(9, "A"), &rangeErr)

	var baseErr *InvalidBaseError
	require.ErrorAs(t, e.Insert(6, "AXG"), &baseErr)
	require.ErrorAs(t, e.Insert(6, ""), &baseErr)

	assert.Equal(t, "ACGT", e.Sequence())
}

func TestExon_SequenceIsStable(t *testing.T) {
	e := newTestExon(t, 1, 8, Plus, "ACGTACGT")
	require.NoError(t, e.Substitute(2, 'A'))
	require.NoError(t, e.Delete(5))
	require.NoError(t, e.Insert(7, "CC"))

	first := e.Sequence()
	assert.Equal(t, first, e.Sequence())
	assert.Equal(t, "ACGTACGT", e.Reference())
}

func TestExon_LengthInvariant(t *testing.T) {
	type op struct {
		kind  byte
		pos   int64
		bases string
	}
	tests := []struct {
		name string
		ops  []op
	}{
		{"deletes only", []op{{'d', 2, ""}, {'d', 5, ""}, {'d', 9, ""}}},
		{"inserts only", []op{{'i', 2, "A"}, {'i', 7, "CGT"}, {'i', 10, "tt"}}},
		{"mixed", []op{{'s', 1, "G"}, {'d', 3, ""}, {'i', 4, "AA"}, {'d', 4, ""}, {'i', 8, "C"}}},
		{"mixed reversed", []op{{'i', 8, "C"}, {'d', 4, ""}, {'i', 4, "AA"}, {'d', 3, ""}, {'s', 1, "G"}}},
		{"repeated delete", []op{{'d', 6, ""}, {'d', 6, ""}, {'s', 6, "A"}, {'d', 6, ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestExon(t, 1, 10, Plus, "ACGTACGTAC")
			deletedPos := map[int64]bool{}
			inserted := 0
			for _, o := range tt.ops {
				switch o.kind {
				case 's':
					require.NoError(t, e.Substitute(o.pos, o.bases[0]))
					delete(deletedPos, o.pos)
				case 'd':
					require.NoError(t, e.Delete(o.pos))
					deletedPos[o.pos] = true
				case 'i':
					require.NoError(t, e.Insert(o.pos, o.bases))
					inserted += len(o.bases)
				}
			}
			assert.Len(t, e.Sequence(), 10-len(deletedPos)+inserted)
		})
	}
}

func TestExon_Clone(t *testing.T) {
	e := newTestExon(t, 1, 4, Plus, "ACGT")
	require.NoError(t, e.Substitute(1, 'T'))

	c := e.Clone()
	require.NoError(t, c.Delete(2))
	require.NoError(t, c.Insert(3, "A"))

	assert.Equal(t, "TCGT", e.Sequence())
	assert.Equal(t, "TaGT", c.Sequence())
}

func TestParseStrand(t *testing.T) {
	s, err := ParseStrand("+")
	require.NoError(t, err)
	assert.Equal(t, Plus, s)

	s, err = ParseStrand("-1")
	require.NoError(t, err)
	assert.Equal(t, Minus, s)
	assert.Equal(t, "-", s.String())

	_, err = ParseStrand(".")
	assert.Error(t, err)
}
