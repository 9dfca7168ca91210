package ios

import (
	"context"

	"github.com/frantjc/adpatch"
)

const (
	KeySKAdNetworkItems      = "SKAdNetworkItems"
	KeySKAdNetworkIdentifier = "SKAdNetworkIdentifier"
)

// SKAdNetworkIdentifiers returns the identifiers in p's SKAdNetworkItems
// in order. Elements that are not dictionaries with a string
// SKAdNetworkIdentifier are skipped.
func SKAdNetworkIdentifiers(p *InfoPlist) ([]string, error) {
	items, _, err := p.Root.Array(KeySKAdNetworkItems)
	if err != nil {
		return nil, err
	}

	ids := []string{}
	for _, item := range items {
		if dict, ok := AsDict(item); ok {
			if id, ok := dict.GetString(KeySKAdNetworkIdentifier); ok {
				ids = append(ids, id)
			}
		}
	}

	return ids, nil
}

// MergeSKAdNetworkItems appends a {SKAdNetworkIdentifier: id} dictionary to
// SKAdNetworkItems for each of ids that is not already there, creating
// SKAdNetworkItems if need be. Existing elements keep their order and are
// never removed. It returns how many identifiers were added and errors,
// without changing p, if SKAdNetworkItems is not an array.
func MergeSKAdNetworkItems(ctx context.Context, p *InfoPlist, ids []string) (int, error) {
	items, ok, err := p.Root.Array(KeySKAdNetworkItems)
	if err != nil {
		return 0, err
	} else if !ok {
		items = p.Root.CreateArray(KeySKAdNetworkItems)
	}

	existing, err := SKAdNetworkIdentifiers(p)
	if err != nil {
		return 0, err
	}

	var (
		seen  = make(map[string]bool, len(existing)+len(ids))
		added = 0
	)
	for _, id := range existing {
		seen[id] = true
	}

	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}

		items = append(items, map[string]any{KeySKAdNetworkIdentifier: id})
		seen[id] = true
		added++
	}

	p.Root.SetArray(KeySKAdNetworkItems, items)

	log := adpatch.LoggerFrom(ctx)
	if added > 0 {
		log.Info("added SKAdNetwork identifiers", "plist", p.Name, "count", added)
	} else {
		log.V(1).Info("SKAdNetwork identifiers up to date", "plist", p.Name)
	}

	return added, nil
}
