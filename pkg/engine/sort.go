package engine

import (
	"fmt"
	"time"

	"github.com/blockplan/blockplan/pkg/model"
)

// Sort returns the registered actions in an order consistent with the
// Requires relation: if a.Requires(b), b precedes a in the result. Pairs
// with no ordering constraint keep their registration order. A cycle is an
// internal invariant violation and aborts planning.
//
// Kahn's algorithm, always advancing the lowest-registered ready action so
// the order is deterministic and stable.
func (r *Registry) Sort() ([]*Action, error) {
	start := time.Now()
	n := len(r.actions)
	if n == 0 {
		return nil, nil
	}

	// dependents[j] lists the indices that must come after j
	dependents := make([][]int, n)
	inDegree := make([]int, n)
	for i, a := range r.actions {
		for j, b := range r.actions {
			if i == j {
				continue
			}
			if a.Requires(b) {
				dependents[j] = append(dependents[j], i)
				inDegree[i]++
			}
		}
	}

	done := make([]bool, n)
	order := make([]*Action, 0, n)
	for len(order) < n {
		next := -1
		for i := 0; i < n; i++ {
			if !done[i] && inDegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, model.NewInternalError(
				fmt.Sprintf("dependency cycle among %d remaining actions", n-len(order)), nil)
		}

		done[next] = true
		order = append(order, r.actions[next])
		for _, dep := range dependents[next] {
			inDegree[dep]--
		}
	}

	r.log.Info().Int("actions", n).Dur("took", time.Since(start)).
		Msg("sorted action queue")
	r.metrics.RecordSortDuration(time.Since(start))
	return order, nil
}
