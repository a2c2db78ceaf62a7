package protein

import (
	"fmt"
	"strconv"
	"strings"
)

// LengthMismatchError is returned when two aligned sequences differ in
// length.
type LengthMismatchError struct {
	WildType int
	Mutant   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("aligned sequences differ in length: wild type %d, mutant %d", e.WildType, e.Mutant)
}

// ExtractTokens walks two aligned sequences and emits one token per
// difference. Positions count wild-type residues from 1.
//
//	gap in wild type:  "{p}ins{mut}"
//	gap in mutant:     "{p}del"
//	mismatch:          "{wt}{p}{mut}"
func ExtractTokens(wtAligned, mutAligned string) ([]string, error) {
	if len(wtAligned) != len(mutAligned) {
		return nil, &LengthMismatchError{WildType: len(wtAligned), Mutant: len(mutAligned)}
	}

	var tokens []string
	p := 1
	for i := 0; i < len(wtAligned); i++ {
		w, m := wtAligned[i], mutAligned[i]
		switch {
		case w == Gap:
			tokens = append(tokens, strconv.Itoa(p)+"ins"+string(m))
		case m == Gap:
			tokens = append(tokens, strconv.Itoa(p)+"del")
		case w != m:
			tokens = append(tokens, string(w)+strconv.Itoa(p)+string(m))
		}
		if w != Gap {
			p++
		}
	}
	return tokens, nil
}

// splitInsertion returns the anchor prefix and inserted residues of an
// insertion token.
func splitInsertion(token string) (anchor, residues string, ok bool) {
	i := strings.Index(token, "ins")
	if i <= 0 {
		return "", "", false
	}
	return token[:i], token[i+3:], true
}

// MergeInsertions joins consecutive insertion tokens that share an anchor
// into the first of them. Running it twice gives the same result.
func MergeInsertions(tokens []string) []string {
	merged := make([]string, 0, len(tokens))
	for _, t := range tokens {
		anchor, residues, ok := splitInsertion(t)
		if ok && len(merged) > 0 {
			lastAnchor, _, lastOK := splitInsertion(merged[len(merged)-1])
			if lastOK && lastAnchor == anchor {
				merged[len(merged)-1] += residues
				continue
			}
		}
		merged = append(merged, t)
	}
	return merged
}

// Compare aligns a wild-type and mutant protein and returns the merged
// mutation tokens.
func Compare(wt, mut string, sm ScoringMatrix) ([]string, error) {
	if wt == mut {
		return nil, nil
	}
	a, b := GlobalAlign(wt, mut, sm)
	tokens, err := ExtractTokens(a, b)
	if err != nil {
		return nil, err
	}
	return MergeInsertions(tokens), nil
}
