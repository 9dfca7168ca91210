package skadnetwork

import (
	"context"

	"github.com/frantjc/adpatch"
)

// Resolver decides which identifiers a build merges: the configured
// ones first, then the fetched ones or, if the fetch failed, the stored ones.
// Fetch failures are logged and never returned.
type Resolver struct {
	Static []string
	// Task is the in-flight fetch. Nil means offline.
	Task *Task
	// Store is optional.
	Store *Store
}

// Identifiers waits for the fetch, if any, and returns the resolved identifiers.
func (r *Resolver) Identifiers(ctx context.Context) []string {
	var (
		log     = adpatch.LoggerFrom(ctx)
		fetched []string
	)

	if r.Task != nil {
		ids, err := r.Task.Wait()
		switch {
		case err != nil:
			log.Error(err, "fetching SKAdNetwork identifiers failed, using stored identifiers")
		case len(ids) == 0:
			log.Error(nil, "no SKAdNetwork identifiers fetched, using stored identifiers")
		default:
			fetched = ids
			log.V(1).Info("fetched SKAdNetwork identifiers", "count", len(ids))

			if r.Store != nil {
				if err := r.Store.Save(ctx, ids); err != nil {
					log.Error(err, "storing SKAdNetwork identifiers failed")
				}
			}
		}
	}

	if fetched == nil && r.Store != nil {
		ids, err := r.Store.Load(ctx)
		if err != nil {
			log.Error(err, "loading stored SKAdNetwork identifiers failed")
		}

		fetched = ids
		log.V(1).Info("loaded stored SKAdNetwork identifiers", "count", len(ids))
	}

	return Dedupe(r.Static, fetched)
}
