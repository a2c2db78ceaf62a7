// Package mutate applies edit lists to copies of wild-type coding regions.
package mutate

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/vibe-covid/internal/cds"
	"github.com/inodb/vibe-covid/internal/edit"
)

// Applier produces mutated copies of coding regions.
type Applier struct {
	workers int
	logger  *zap.Logger
}

// NewApplier creates an applier that uses runtime.NumCPU() workers.
func NewApplier() *Applier {
	return &Applier{logger: zap.NewNop()}
}

// SetWorkers sets the number of regions mutated concurrently.
// Zero or less means runtime.NumCPU().
func (a *Applier) SetWorkers(n int) {
	a.workers = n
}

// SetLogger sets the logger for debug messages.
func (a *Applier) SetLogger(l *zap.Logger) {
	a.logger = l
}

// Apply returns one mutated copy per wild-type region, in input order.
// The wild-type regions are not modified.
func (a *Applier) Apply(ctx context.Context, regions []*cds.CDS, edits []edit.Edit) ([]*cds.CDS, error) {
	idx, err := newRegionIndex(regions)
	if err != nil {
		return nil, err
	}

	perRegion := make([][]edit.Edit, len(regions))
	for _, e := range edits {
		for _, i := range idx.find(e.Position) {
			perRegion[i] = append(perRegion[i], e)
		}
	}

	workers := a.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	mutants := make([]*cds.CDS, len(regions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, wt := range regions {
		i, wt := i, wt
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := ApplyOne(wt, perRegion[i])
			if err != nil {
				return fmt.Errorf("apply edits to %s: %w", wt.Name, err)
			}
			a.logger.Debug("mutated coding region",
				zap.String("cds", wt.Name),
				zap.Int("edits", len(perRegion[i])))
			mutants[i] = m
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mutants, nil
}

// ApplyOne deep-copies wt and applies the edits that fall within
// [wt.Start, wt.End]: all substitutions first, then all deletions, then
// all insertions. Insertions at wt.Start are skipped.
func ApplyOne(wt *cds.CDS, edits []edit.Edit) (*cds.CDS, error) {
	m := wt.Clone()

	var subs, dels, inss []edit.Edit
	for _, e := range edits {
		if e.Position < m.Start || e.Position > m.End {
			continue
		}
		switch e.Kind {
		case edit.Substitute:
			subs = append(subs, e)
		case edit.Delete:
			dels = append(dels, e)
		case edit.Insert:
			if e.Position == m.Start {
				continue
			}
			inss = append(inss, e)
		}
	}

	for _, e := range subs {
		if len(e.Bases) != 1 {
			return nil, &cds.InvalidBaseError{Position: e.Position, Bases: e.Bases}
		}
		if err := m.Substitute(e.Position, e.Bases[0]); err != nil {
			return nil, err
		}
	}
	for _, e := range dels {
		if err := m.Delete(e.Position); err != nil {
			return nil, err
		}
	}
	for _, e := range inss {
		if err := m.Insert(e.Position, e.Bases); err != nil {
			return nil, err
		}
	}

	return m, nil
}
