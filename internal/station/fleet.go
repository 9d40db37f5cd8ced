package station

import (
	"context"
	"sync"
)

// Fleet runs a set of independent stations. Stations share nothing but
// the process; each owns its transports, publisher and rate-limit state.
type Fleet struct {
	runners []*Runner
}

func NewFleet(runners ...*Runner) *Fleet {
	return &Fleet{runners: runners}
}

// Run starts every station and blocks until all have stopped
func (f *Fleet) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, r := range f.runners {
		wg.Add(1)
		go func(r *Runner) {
			defer wg.Done()
			_ = r.Run(ctx)
		}(r)
	}
	wg.Wait()
}

// Snapshots returns the current view of every station
func (f *Fleet) Snapshots() []Status {
	out := make([]Status, 0, len(f.runners))
	for _, r := range f.runners {
		out = append(out, r.Status())
	}

	return out
}

// Station returns the view of one station by ID
func (f *Fleet) Station(id string) (Status, bool) {
	for _, r := range f.runners {
		if view := r.Status(); view.ID == id {
			return view, true
		}
	}

	return Status{}, false
}

// Size returns the number of stations in the fleet
func (f *Fleet) Size() int {
	return len(f.runners)
}
