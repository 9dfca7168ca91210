package adpatchregexp_test

import (
	"testing"

	"github.com/frantjc/adpatch/internal/adpatchregexp"
	"github.com/stretchr/testify/assert"
)

func TestIsAdMobAppID(t *testing.T) {
	assert.True(t, adpatchregexp.IsAdMobAppID("ca-app-pub-3940256099942544~3347511713"))
	assert.False(t, adpatchregexp.IsAdMobAppID(""))
	assert.False(t, adpatchregexp.IsAdMobAppID("ca-app-pub-"))
	assert.False(t, adpatchregexp.IsAdMobAppID(" ca-app-pub-3940256099942544~3347511713"))
}

func TestIsSKAdNetworkIdentifier(t *testing.T) {
	assert.True(t, adpatchregexp.IsSKAdNetworkIdentifier("cstr6suwn9.skadnetwork"))
	assert.False(t, adpatchregexp.IsSKAdNetworkIdentifier("cstr6suwn9"))
}

func TestIsFacebookAppID(t *testing.T) {
	assert.True(t, adpatchregexp.IsFacebookAppID("1234567890"))
	assert.False(t, adpatchregexp.IsFacebookAppID(""))
	assert.False(t, adpatchregexp.IsFacebookAppID("fb1234567890"))
}
