package edit

import (
	"cmp"
	"slices"
)

// Resolve removes conflicting calls, keeping the higher-quality call of each
// conflict, and returns the survivors sorted by position.
//
// SNVs conflict when they share a position and insertions when they share an
// anchor. Deletions are swept left to right against the last kept deletion:
// on overlap the later call replaces it only with strictly higher quality.
// The sweep is greedy, so chains of overlapping deletions resolve pairwise.
func Resolve(calls []Call) []Call {
	var snvs, dels, inss []Call
	for _, c := range calls {
		switch c.Class() {
		case SNV:
			snvs = append(snvs, c)
		case Deletion:
			dels = append(dels, c)
		case Insertion:
			inss = append(inss, c)
		}
	}

	out := make([]Call, 0, len(calls))
	out = append(out, bestPer(snvs, func(c Call) int64 { return c.Pos })...)
	out = append(out, sweepDeletions(dels)...)
	out = append(out, bestPer(inss, Call.Anchor)...)

	sortByPos(out)
	return out
}

// bestPer keeps the highest-quality call for each key. Ties keep the call
// seen first after sorting by position.
func bestPer(calls []Call, key func(Call) int64) []Call {
	if len(calls) == 0 {
		return nil
	}
	sorted := slices.Clone(calls)
	sortByPos(sorted)

	index := make(map[int64]int, len(sorted))
	var kept []Call
	for _, c := range sorted {
		k := key(c)
		i, ok := index[k]
		if !ok {
			index[k] = len(kept)
			kept = append(kept, c)
			continue
		}
		if c.Qual > kept[i].Qual {
			kept[i] = c
		}
	}
	return kept
}

func sweepDeletions(calls []Call) []Call {
	if len(calls) == 0 {
		return nil
	}
	sorted := slices.Clone(calls)
	sortByPos(sorted)

	var kept []Call
	prev := sorted[0]
	for _, c := range sorted[1:] {
		if overlaps(prev, c) {
			if c.Qual > prev.Qual {
				prev = c
			}
			continue
		}
		kept = append(kept, prev)
		prev = c
	}
	return append(kept, prev)
}

// overlaps tests the closed deleted ranges of two deletion calls.
func overlaps(a, b Call) bool {
	aStart, aEnd := a.DeletedRange()
	bStart, bEnd := b.DeletedRange()
	return bStart <= aEnd && aStart <= bEnd
}

func sortByPos(calls []Call) {
	slices.SortStableFunc(calls, func(a, b Call) int {
		return cmp.Compare(a.Pos, b.Pos)
	})
}
