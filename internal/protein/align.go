// Package protein derives protein-level mutation tokens by aligning
// wild-type and mutant translations.
package protein

import (
	"fmt"
	"strings"
)

// ScoringMatrix holds the global alignment parameters. A gap of length k
// costs GapOpenPenalty + (k-1)*GapExtendPenalty.
type ScoringMatrix struct {
	MatchScore       int
	MismatchPenalty  int
	GapOpenPenalty   int
	GapExtendPenalty int
}

// DefaultScoring is match +1, mismatch -1, gap open -1, gap extend -1.
var DefaultScoring = ScoringMatrix{
	MatchScore:       1,
	MismatchPenalty:  -1,
	GapOpenPenalty:   -1,
	GapExtendPenalty: -1,
}

// NewScoringMatrix creates a scoring matrix with validation.
func NewScoringMatrix(match, mismatch, gapOpen, gapExtend int) (*ScoringMatrix, error) {
	if match <= 0 {
		return nil, fmt.Errorf("match score must be positive")
	}
	if mismatch > 0 || gapOpen > 0 || gapExtend > 0 {
		return nil, fmt.Errorf("mismatch and gap penalties must be <= 0")
	}
	return &ScoringMatrix{
		MatchScore:       match,
		MismatchPenalty:  mismatch,
		GapOpenPenalty:   gapOpen,
		GapExtendPenalty: gapExtend,
	}, nil
}

func (s ScoringMatrix) score(a, b byte) int {
	if a == b {
		return s.MatchScore
	}
	return s.MismatchPenalty
}

// Gap is the padding character of aligned sequences.
const Gap = '-'

// Alignment states. stateX ends in a gap in the wild type (mutant residue
// against '-'), stateY in a gap in the mutant.
const (
	stateM byte = iota
	stateX
	stateY
)

const negInf = -1 << 30

// pick returns the maximum of the three candidates and the state it came
// from, preferring X, then M, then Y on ties.
func pick(x, m, y int) (int, byte) {
	best := max(x, m, y)
	switch best {
	case x:
		return best, stateX
	case m:
		return best, stateM
	default:
		return best, stateY
	}
}

// GlobalAlign aligns wt against mut with affine gap costs and returns the
// two gapped sequences, which have equal length.
//
// Among equally scoring alignments the traceback from the last cell
// prefers a gap in the wild type, then a diagonal step, then a gap in the
// mutant. Scores are kept in rolling rows; each cell stores one traceback
// byte holding the predecessor state of M (bits 0-1), X (bits 2-3) and
// Y (bits 4-5).
func GlobalAlign(wt, mut string, sm ScoringMatrix) (string, string) {
	n, m := len(wt), len(mut)
	width := m + 1
	trace := make([]byte, (n+1)*width)

	prevM := make([]int, width)
	prevX := make([]int, width)
	prevY := make([]int, width)
	curM := make([]int, width)
	curX := make([]int, width)
	curY := make([]int, width)

	prevM[0], prevX[0], prevY[0] = 0, negInf, negInf
	for j := 1; j <= m; j++ {
		prevM[j] = negInf
		prevX[j] = sm.GapOpenPenalty + (j-1)*sm.GapExtendPenalty
		prevY[j] = negInf
	}

	for i := 1; i <= n; i++ {
		curM[0], curX[0] = negInf, negInf
		curY[0] = sm.GapOpenPenalty + (i-1)*sm.GapExtendPenalty
		row := trace[i*width:]

		for j := 1; j <= m; j++ {
			v, fm := pick(prevX[j-1], prevM[j-1], prevY[j-1])
			curM[j] = v + sm.score(wt[i-1], mut[j-1])

			v, fx := pick(
				curX[j-1]+sm.GapExtendPenalty,
				curM[j-1]+sm.GapOpenPenalty,
				curY[j-1]+sm.GapOpenPenalty,
			)
			curX[j] = v

			v, fy := pick(
				prevX[j]+sm.GapOpenPenalty,
				prevM[j]+sm.GapOpenPenalty,
				prevY[j]+sm.GapExtendPenalty,
			)
			curY[j] = v

			row[j] = fm | fx<<2 | fy<<4
		}

		prevM, curM = curM, prevM
		prevX, curX = curX, prevX
		prevY, curY = curY, prevY
	}

	_, state := pick(prevX[m], prevM[m], prevY[m])

	var wtOut, mutOut []byte
	i, j := n, m
	for i > 0 || j > 0 {
		switch {
		case i == 0:
			wtOut = append(wtOut, Gap)
			mutOut = append(mutOut, mut[j-1])
			j--
			continue
		case j == 0:
			wtOut = append(wtOut, wt[i-1])
			mutOut = append(mutOut, Gap)
			i--
			continue
		}

		f := trace[i*width+j]
		switch state {
		case stateX:
			wtOut = append(wtOut, Gap)
			mutOut = append(mutOut, mut[j-1])
			state = (f >> 2) & 3
			j--
		case stateM:
			wtOut = append(wtOut, wt[i-1])
			mutOut = append(mutOut, mut[j-1])
			state = f & 3
			i--
			j--
		default:
			wtOut = append(wtOut, wt[i-1])
			mutOut = append(mutOut, Gap)
			state = (f >> 4) & 3
			i--
		}
	}

	return reverse(wtOut), reverse(mutOut)
}

func reverse(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for i := len(b) - 1; i >= 0; i-- {
		sb.WriteByte(b[i])
	}
	return sb.String()
}
