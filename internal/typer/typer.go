// Package typer runs the variant typing pipeline: it resolves variant
// calls into edits, mutates the coding regions and derives the protein
// mutation table.
package typer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-covid/internal/cds"
	"github.com/inodb/vibe-covid/internal/edit"
	"github.com/inodb/vibe-covid/internal/mutate"
	"github.com/inodb/vibe-covid/internal/protein"
	"github.com/inodb/vibe-covid/internal/vcf"
)

// Result holds every intermediate table of one run.
type Result struct {
	Calls     []edit.Call
	Edits     []edit.Edit
	Mutants   []*cds.CDS
	Mutations []protein.Row
}

// Typer turns variant calls into protein mutations.
type Typer struct {
	applier  *mutate.Applier
	comparer *protein.Comparer
	minQual  float64
	passOnly bool
	logger   *zap.Logger
}

// NewTyper creates a typer with default settings.
func NewTyper() *Typer {
	return &Typer{
		applier:  mutate.NewApplier(),
		comparer: protein.NewComparer(),
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger for the typer and its stages.
func (t *Typer) SetLogger(l *zap.Logger) {
	t.logger = l
	t.applier.SetLogger(l)
	t.comparer.SetLogger(l)
}

// SetWorkers sets the number of coding regions processed concurrently.
// Zero means runtime.NumCPU().
func (t *Typer) SetWorkers(n int) {
	t.applier.SetWorkers(n)
	t.comparer.SetWorkers(n)
}

// SetScoring sets the alignment parameters used to compare proteins.
func (t *Typer) SetScoring(sm protein.ScoringMatrix) {
	t.comparer.SetScoring(sm)
}

// SetMinQual drops calls with a quality below q.
func (t *Typer) SetMinQual(q float64) {
	t.minQual = q
}

// SetPassOnly keeps only calls whose FILTER is PASS or missing.
func (t *Typer) SetPassOnly(pass bool) {
	t.passOnly = pass
}

// Calls converts VCF records to variant calls, applying the quality and
// filter settings. Symbolic and spanning-deletion alleles are skipped.
func (t *Typer) Calls(variants []*vcf.Variant) []edit.Call {
	calls := make([]edit.Call, 0, len(variants))
	var snvs, mnps, insertions, deletions int
	var chrom string
	for _, v := range variants {
		if chrom == "" {
			chrom = v.Chrom
		} else if v.Chrom != chrom {
			t.logger.Warn("variants span more than one sequence; positions are applied to a single genome",
				zap.String("first", chrom),
				zap.String("other", v.Chrom))
			chrom = v.Chrom
		}

		switch {
		case v.IsSymbolic():
			t.logger.Debug("skipping symbolic allele",
				zap.Int64("pos", v.Pos),
				zap.String("alt", v.Alt))
			continue
		case t.passOnly && !v.IsPass():
			continue
		case v.Qual < t.minQual:
			continue
		}

		switch {
		case v.IsSNV():
			snvs++
		case !v.IsIndel():
			mnps++
		case v.IsInsertion():
			insertions++
		case v.IsDeletion():
			deletions++
		}

		calls = append(calls, edit.Call{
			Pos:  v.Pos,
			Ref:  v.Ref,
			Alt:  v.Alt,
			Qual: v.Qual,
		})
	}

	t.logger.Debug("classified variant calls",
		zap.Int("snvs", snvs),
		zap.Int("mnps", mnps),
		zap.Int("insertions", insertions),
		zap.Int("deletions", deletions))
	return calls
}

// Run resolves the calls, applies the edits to copies of regions and
// compares the translated proteins.
func (t *Typer) Run(ctx context.Context, variants []*vcf.Variant, regions []*cds.CDS) (*Result, error) {
	calls := t.Calls(variants)
	resolved := edit.Resolve(calls)
	t.logger.Info("resolved variant calls",
		zap.Int("input", len(variants)),
		zap.Int("kept", len(calls)),
		zap.Int("resolved", len(resolved)))

	edits := edit.FromCalls(resolved)

	mutants, err := t.applier.Apply(ctx, regions, edits)
	if err != nil {
		return nil, fmt.Errorf("mutate coding regions: %w", err)
	}

	rows, err := t.comparer.CompareRegions(ctx, regions, mutants)
	if err != nil {
		return nil, fmt.Errorf("compare proteins: %w", err)
	}
	t.logger.Info("derived protein mutations",
		zap.Int("edits", len(edits)),
		zap.Int("mutations", len(rows)))

	return &Result{
		Calls:     resolved,
		Edits:     edits,
		Mutants:   mutants,
		Mutations: rows,
	}, nil
}
