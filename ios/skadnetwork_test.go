package ios

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSKAdNetworkItems(t *testing.T) {
	var (
		ctx = context.Background()
		p   = newTestInfoPlist(t)
	)

	added, err := MergeSKAdNetworkItems(ctx, p, []string{"a.skadnetwork", "b.skadnetwork", "a.skadnetwork", ""})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	ids, err := SKAdNetworkIdentifiers(p)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"b.skadnetwork", "c.skadnetwork", "a.skadnetwork"}, ids); diff != "" {
		t.Errorf("SKAdNetworkIdentifiers() mismatch (-want +got):\n%s", diff)
	}

	added, err = MergeSKAdNetworkItems(ctx, p, []string{"a.skadnetwork"})
	require.NoError(t, err)
	assert.Equal(t, 0, added)
}

func TestMergeSKAdNetworkItemsCreates(t *testing.T) {
	var (
		ctx = context.Background()
		p   = &InfoPlist{Name: InfoPlistName, Root: Dict{}}
	)

	added, err := MergeSKAdNetworkItems(ctx, p, []string{"a.skadnetwork"})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	want := []any{map[string]any{KeySKAdNetworkIdentifier: "a.skadnetwork"}}
	if diff := cmp.Diff(want, p.Root[KeySKAdNetworkItems]); diff != "" {
		t.Errorf("SKAdNetworkItems mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeSKAdNetworkItemsKeepsOtherElements(t *testing.T) {
	var (
		ctx = context.Background()
		p   = &InfoPlist{Name: InfoPlistName, Root: Dict{
			KeySKAdNetworkItems: []any{"stray", map[string]any{"Other": "x"}},
		}}
	)

	_, err := MergeSKAdNetworkItems(ctx, p, []string{"a.skadnetwork"})
	require.NoError(t, err)

	items, _, err := p.Root.Array(KeySKAdNetworkItems)
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, "stray", items[0])
}

func TestMergeSKAdNetworkItemsNotArray(t *testing.T) {
	var (
		ctx = context.Background()
		p   = &InfoPlist{Name: InfoPlistName, Root: Dict{KeySKAdNetworkItems: "oops"}}
	)

	_, err := MergeSKAdNetworkItems(ctx, p, []string{"a.skadnetwork"})
	assert.Error(t, err)
	assert.Equal(t, "oops", p.Root[KeySKAdNetworkItems])
}
