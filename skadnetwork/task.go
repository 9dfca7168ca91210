package skadnetwork

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Task is a fetch of SKAdNetwork identifiers running in the background.
type Task struct {
	eg     *errgroup.Group
	cancel context.CancelFunc
	ids    []string
}

// Start begins fetching with get and returns immediately. The fetch
// stops if ctx is done or Cancel is called.
func Start(ctx context.Context, get func(context.Context) ([]string, error)) *Task {
	ctx, cancel := context.WithCancel(ctx)
	eg, ctx := errgroup.WithContext(ctx)
	t := &Task{eg: eg, cancel: cancel}

	eg.Go(func() error {
		ids, err := get(ctx)
		if err != nil {
			return err
		}

		t.ids = ids
		return nil
	})

	return t
}

// Wait blocks until the fetch finishes and returns its result.
// It may be called more than once.
func (t *Task) Wait() ([]string, error) {
	defer t.cancel()

	if err := t.eg.Wait(); err != nil {
		return nil, err
	}

	return t.ids, nil
}

// Cancel abandons the fetch. Wait then returns the context's error.
func (t *Task) Cancel() {
	t.cancel()
}
