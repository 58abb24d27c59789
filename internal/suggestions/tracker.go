package suggestions

import (
	"context"
	"sync/atomic"
)

// Tracker numbers requests so that only the answer to the latest one is
// delivered. Closing the panel or asking again supersedes older requests.
type Tracker struct {
	service Service
	latest  atomic.Uint64
}

func NewTracker(service Service) *Tracker {
	return &Tracker{
		service: service,
	}
}

func (t *Tracker) Suggest(ctx context.Context, input Input) (Output, error) {
	id := t.latest.Add(1)
	output, err := t.service.Suggest(ctx, input)
	if t.latest.Load() != id {
		return Output{}, ErrStale
	}
	return output, err
}

// Cancel supersedes any request in flight.
func (t *Tracker) Cancel() {
	t.latest.Add(1)
}
