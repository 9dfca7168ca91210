package skadnetwork

import (
	"context"
	"encoding/json"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// StoreKey is where the identifiers are kept in a Store's bucket.
const StoreKey = "skadnetwork/identifiers.json"

// Store keeps the last successfully fetched identifiers
// so that builds without network access can still use them.
type Store struct {
	Bucket *blob.Bucket
}

// Load returns the stored identifiers, or none if nothing was stored yet.
func (s *Store) Load(ctx context.Context) ([]string, error) {
	b, err := s.Bucket.ReadAll(ctx, StoreKey)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	ids := []string{}
	if err := json.Unmarshal(b, &ids); err != nil {
		return nil, err
	}

	return ids, nil
}

// Save replaces the stored identifiers with ids.
func (s *Store) Save(ctx context.Context, ids []string) error {
	b, err := json.Marshal(ids)
	if err != nil {
		return err
	}

	return s.Bucket.WriteAll(ctx, StoreKey, b, &blob.WriterOptions{ContentType: "application/json"})
}
