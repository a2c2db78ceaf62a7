package protein

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-covid/internal/cds"
)

// Row is one line of the mutation table.
type Row struct {
	Protein  string
	Mutation string
}

// Comparer translates wild-type and mutant coding regions and builds the
// mutation table.
type Comparer struct {
	scoring ScoringMatrix
	workers int
	logger  *zap.Logger
}

// NewComparer creates a comparer using DefaultScoring.
func NewComparer() *Comparer {
	return &Comparer{scoring: DefaultScoring, logger: zap.NewNop()}
}

// SetScoring replaces the alignment parameters.
func (c *Comparer) SetScoring(sm ScoringMatrix) {
	c.scoring = sm
}

// SetWorkers sets the number of alignments run concurrently.
func (c *Comparer) SetWorkers(n int) {
	c.workers = n
}

// SetLogger sets the logger for debug messages.
func (c *Comparer) SetLogger(l *zap.Logger) {
	c.logger = l
}

// CompareRegions pairs wildType[i] with mutants[i] and returns one row per
// mutation token. Regions are keyed by name: the first occurrence of a
// name fixes its position in the output and the last occurrence supplies
// its proteins. Regions whose proteins are identical contribute no rows.
func (c *Comparer) CompareRegions(ctx context.Context, wildType, mutants []*cds.CDS) ([]Row, error) {
	if len(wildType) != len(mutants) {
		return nil, fmt.Errorf("compare regions: %d wild-type regions but %d mutants", len(wildType), len(mutants))
	}

	var order []string
	pairs := make(map[string]WorkItem)
	for i, wt := range wildType {
		if mutants[i].Name != wt.Name {
			return nil, fmt.Errorf("compare regions: wild type %s paired with mutant %s", wt.Name, mutants[i].Name)
		}
		if _, ok := pairs[wt.Name]; !ok {
			order = append(order, wt.Name)
		}
		pairs[wt.Name] = WorkItem{
			Name:     wt.Name,
			WildType: wt.Translate(),
			Mutant:   mutants[i].Translate(),
		}
	}

	items := make(chan WorkItem)
	results := c.ParallelCompare(items, c.workers)

	go func() {
		defer close(items)
		for seq, name := range order {
			item := pairs[name]
			item.Seq = seq
			select {
			case items <- item:
			case <-ctx.Done():
				return
			}
		}
	}()

	var rows []Row
	err := OrderedCollect(results, func(r WorkResult) error {
		if r.Err != nil {
			return fmt.Errorf("compare %s: %w", r.Name, r.Err)
		}
		c.logger.Debug("compared protein",
			zap.String("protein", r.Name),
			zap.Int("mutations", len(r.Tokens)))
		for _, t := range r.Tokens {
			rows = append(rows, Row{Protein: r.Name, Mutation: t})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
