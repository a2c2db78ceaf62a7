package cds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoExonMinus is the reverse-strand region used throughout these tests:
// exons 1-7 and 11-12, coding sequence CCCGGGTTT.
func twoExonMinus(t *testing.T) *CDS {
	t.Helper()
	c, err := New("gene", []*Exon{
		newTestExon(t, 1, 7, Minus, "AAACCCg"),
		newTestExon(t, 11, 12, Minus, "gg"),
	})
	require.NoError(t, err)
	return c
}

func TestCDS_ReverseStrandTranslation(t *testing.T) {
	c := twoExonMinus(t)

	assert.Equal(t, int64(1), c.Start)
	assert.Equal(t, int64(12), c.End)
	assert.Equal(t, Minus, c.Strand)
	assert.Equal(t, "AAACCCGGG", c.Sequence())
	assert.Equal(t, "CCCGGGTTT", c.CodingSequence())
	assert.Equal(t, "PGF", c.Translate())
}

func TestNew_Errors(t *testing.T) {
	_, err := New("empty", nil)
	assert.Error(t, err)

	_, err = New("mixed", []*Exon{
		newTestExon(t, 1, 3, Plus, "ATG"),
		newTestExon(t, 5, 7, Minus, "TAA"),
	})
	assert.Error(t, err)
}

func TestNew_LengthNotMultipleOfThree(t *testing.T) {
	c, err := New("short", []*Exon{newTestExon(t, 1, 7, Plus, "ATGAAAC")})
	require.NoError(t, err, "a partial codon is a warning, not an error")
	assert.Equal(t, "MK", c.Translate())
}

func TestCDS_DispatchesToExon(t *testing.T) {
	c := twoExonMinus(t)

	require.NoError(t, c.Substitute(12, 'A'))
	require.NoError(t, c.Delete(2))
	assert.Equal(t, "AACCCGGA", c.Sequence())
	assert.Equal(t, "TCCGGGTT", c.CodingSequence())
}

func TestCDS_IgnoresPositionsOutsideExons(t *testing.T) {
	c := twoExonMinus(t)

	// Intron and flanks.
	require.NoError(t, c.Substitute(9, 'A'))
	require.NoError(t, c.Delete(8))
	require.NoError(t, c.Insert(10, "A"))
	require.NoError(t, c.Substitute(40, 'A'))

	assert.Equal(t, "AAACCCGGG", c.Sequence())
}

func TestCDS_InsertAtExonStartIsNoop(t *testing.T) {
	c := twoExonMinus(t)

	require.NoError(t, c.Insert(c.Start, "T"))
	require.NoError(t, c.Insert(11, "T"))
	assert.Equal(t, "AAACCCGGG", c.Sequence())

	// The exon API itself rejects the same edit.
	var rangeErr *OutOfRangeError
	require.ErrorAs(t, c.Exons[0].Insert(c.Start, "T"), &rangeErr)
}

func TestCDS_InvalidBasePropagates(t *testing.T) {
	c := twoExonMinus(t)

	var baseErr *InvalidBaseError
	require.ErrorAs(t, c.Substitute(3, 'Z'), &baseErr)
	require.ErrorAs(t, c.Insert(3, "AN"), &baseErr)
}

func TestCDS_TranslateWithInsertedBases(t *testing.T) {
	c, err := New("plus", []*Exon{newTestExon(t, 1, 9, Plus, "ATGTTTTAA")})
	require.NoError(t, err)

	require.NoError(t, c.Insert(4, "GCT"))
	assert.Equal(t, "ATGgctTTTTAA", c.CodingSequence())
	assert.Equal(t, "MAF*", c.Translate())
}

func TestCDS_Clone(t *testing.T) {
	wt := twoExonMinus(t)
	mut := wt.Clone()

	require.NoError(t, mut.Delete(1))
	require.NoError(t, mut.Insert(12, "C"))

	assert.Equal(t, "AAACCCGGG", wt.Sequence())
	assert.Equal(t, "AACCCGGcG", mut.Sequence())
	assert.NotSame(t, wt.Exons[0], mut.Exons[0])
}

func TestCDS_OverlappingExonsBothEdited(t *testing.T) {
	// Ribosomal slippage: the last base of the first exon is read twice.
	c, err := New("ORF1ab", []*Exon{
		newTestExon(t, 1, 4, Plus, "ATGC"),
		newTestExon(t, 4, 8, Plus, "CCTAA"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ATGCCCTAA", c.Sequence())

	require.NoError(t, c.Substitute(4, 'T'))
	assert.Equal(t, "ATGTTCTAA", c.Sequence())
}
