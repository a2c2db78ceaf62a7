package protein

import (
	"runtime"
	"sync"
)

// WorkItem holds one wild-type/mutant protein pair ready for comparison.
type WorkItem struct {
	Seq      int
	Name     string
	WildType string
	Mutant   string
}

// WorkResult holds the mutation tokens for a single pair.
type WorkResult struct {
	Seq    int
	Name   string
	Tokens []string
	Err    error
}

// ParallelCompare compares work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (c *Comparer) ParallelCompare(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for item := range items {
				tokens, err := Compare(item.WildType, item.Mutant, c.scoring)
				results <- WorkResult{
					Seq:    item.Seq,
					Name:   item.Name,
					Tokens: tokens,
					Err:    err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// Out-of-order results wait in a pending map until the next expected
// sequence number arrives. Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
