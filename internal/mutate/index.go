package mutate

import (
	"fmt"

	"github.com/biogo/store/interval"

	"github.com/inodb/vibe-covid/internal/cds"
)

// regionInterval is the span of one coding region in half-open
// coordinates [Start, End).
type regionInterval struct {
	Start, End int
	UID        uintptr
	Region     int // index into the region slice
}

func (i regionInterval) Overlap(b interval.IntRange) bool {
	// Half-open interval indexing.
	return i.End > b.Start && i.Start < b.End
}

func (i regionInterval) ID() uintptr {
	return i.UID
}

func (i regionInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.Start, End: i.End}
}

func (i regionInterval) String() string {
	return fmt.Sprintf("[%d,%d)#%d", i.Start, i.End, i.UID)
}

// position is a single-base query.
type position int

func (p position) Overlap(b interval.IntRange) bool {
	return int(p) < b.End && int(p)+1 > b.Start
}

// regionIndex finds the coding regions whose [Start, End] span contains a
// genomic position.
type regionIndex struct {
	tree interval.IntTree
}

func newRegionIndex(regions []*cds.CDS) (*regionIndex, error) {
	idx := &regionIndex{}
	for i, r := range regions {
		iv := regionInterval{
			Start:  int(r.Start),
			End:    int(r.End) + 1,
			UID:    uintptr(i),
			Region: i,
		}
		if err := idx.tree.Insert(iv, true); err != nil {
			return nil, fmt.Errorf("index region %s: %w", r.Name, err)
		}
	}
	idx.tree.AdjustRanges()
	return idx, nil
}

// find returns the indices of the regions spanning pos.
func (idx *regionIndex) find(pos int64) []int {
	hits := idx.tree.Get(position(pos))
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.(regionInterval).Region
	}
	return out
}
