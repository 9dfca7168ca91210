package ios

import (
	"context"
	"testing"

	"github.com/frantjc/adpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInfoPlistConfig() *InfoPlistConfig {
	settings := adpatch.DefaultSettings()
	settings.IOS.NSUserTrackingUsageDescription = true
	settings.IOS.NSLocationWhenInUseUsageDescription = true
	settings.IOS.NSCalendarsUsageDescription = false
	settings.IOS.NSAppTransportSecurity = true
	settings.AdMob.IOSAppID = testAppID

	return NewInfoPlistConfig(settings)
}

func TestReconcileInfoPlist(t *testing.T) {
	var (
		ctx = context.Background()
		p   = newTestInfoPlist(t)
		cfg = newTestInfoPlistConfig()
	)

	cfg.SKAdNetworkIdentifiers = []string{"a.skadnetwork", "b.skadnetwork"}
	require.NoError(t, ReconcileInfoPlist(ctx, p, cfg))

	id, _ := p.Root.GetString(KeyGADApplicationIdentifier)
	assert.Equal(t, testAppID, id)

	tracking, _ := p.Root.GetString(KeyNSUserTrackingUsageDescription)
	assert.Equal(t, UserTrackingUsageDescription, tracking)

	location, _ := p.Root.GetString(KeyNSLocationWhenInUseUsageDescription)
	assert.Equal(t, "Written by the developer.", location)

	assert.False(t, p.Root.Has(KeyNSCalendarsUsageDescription))

	ats, ok := AsDict(p.Root[KeyNSAppTransportSecurity])
	require.True(t, ok)
	assert.Equal(t, true, ats[KeyNSAllowsArbitraryLoads])

	ids, err := SKAdNetworkIdentifiers(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.skadnetwork", "c.skadnetwork", "a.skadnetwork"}, ids)
}

func TestReconcileInfoPlistIdempotent(t *testing.T) {
	var (
		ctx = context.Background()
		p   = newTestInfoPlist(t)
		cfg = newTestInfoPlistConfig()
	)

	cfg.SKAdNetworkIdentifiers = []string{"a.skadnetwork"}
	require.NoError(t, ReconcileInfoPlist(ctx, p, cfg))

	first, err := p.Bytes()
	require.NoError(t, err)

	p, err = ParseInfoPlist(InfoPlistName, first)
	require.NoError(t, err)
	require.NoError(t, ReconcileInfoPlist(ctx, p, cfg))

	second, err := p.Bytes()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestReconcileInfoPlistInvalidAppID(t *testing.T) {
	var (
		ctx = context.Background()
		p   = newTestInfoPlist(t)
		cfg = newTestInfoPlistConfig()
	)

	before, err := p.Bytes()
	require.NoError(t, err)

	cfg.AdMobAppID = "not-an-app-id"
	assert.True(t, adpatch.IsFatal(ReconcileInfoPlist(ctx, p, cfg)))

	after, err := p.Bytes()
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestReconcileKeysToggle(t *testing.T) {
	var (
		ctx = context.Background()
		p   = newTestInfoPlist(t)
		on  = []KeyFlag{{Key: KeyNSUserTrackingUsageDescription, Set: true, Value: UserTrackingUsageDescription}}
		off = []KeyFlag{{Key: KeyNSUserTrackingUsageDescription}}
	)

	assert.True(t, ReconcileKeys(ctx, p, on))
	assert.False(t, ReconcileKeys(ctx, p, on))
	assert.True(t, ReconcileKeys(ctx, p, off))
	assert.False(t, p.Root.Has(KeyNSUserTrackingUsageDescription))
	assert.False(t, ReconcileKeys(ctx, p, off))
}

func TestReconcileAdMobAppID(t *testing.T) {
	var (
		ctx = context.Background()
		p   = newTestInfoPlist(t)
	)

	assert.True(t, ReconcileAdMobAppID(ctx, p, testAppID))
	assert.False(t, ReconcileAdMobAppID(ctx, p, testAppID))

	p.Root[KeyGADApplicationIdentifier] = []any{testAppID}
	assert.True(t, ReconcileAdMobAppID(ctx, p, testAppID))

	id, ok := p.Root.GetString(KeyGADApplicationIdentifier)
	assert.True(t, ok)
	assert.Equal(t, testAppID, id)
}

func newTestATSInfoPlist() *InfoPlist {
	return &InfoPlist{Name: InfoPlistName, Root: Dict{
		KeyNSAppTransportSecurity: map[string]any{
			"NSExceptionDomains": map[string]any{
				"localhost": map[string]any{"NSExceptionAllowsInsecureHTTPLoads": true},
			},
		},
	}}
}

func TestReconcileArbitraryLoadsKeepsExceptionDomains(t *testing.T) {
	var (
		ctx = context.Background()
		p   = newTestATSInfoPlist()
	)

	changed, err := ReconcileArbitraryLoads(ctx, p, true)
	require.NoError(t, err)
	assert.True(t, changed)

	ats, ok := AsDict(p.Root[KeyNSAppTransportSecurity])
	require.True(t, ok)
	assert.Equal(t, true, ats[KeyNSAllowsArbitraryLoads])
	assert.True(t, ats.Has("NSExceptionDomains"))

	changed, err = ReconcileArbitraryLoads(ctx, p, true)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = ReconcileArbitraryLoads(ctx, p, false)
	require.NoError(t, err)
	assert.True(t, changed)

	ats, ok = AsDict(p.Root[KeyNSAppTransportSecurity])
	require.True(t, ok)
	assert.False(t, ats.Has(KeyNSAllowsArbitraryLoads))
	assert.True(t, ats.Has("NSExceptionDomains"))
}

func TestReconcileArbitraryLoadsDisabledKeepsDict(t *testing.T) {
	var (
		ctx = context.Background()
		p   = newTestATSInfoPlist()
	)

	changed, err := ReconcileArbitraryLoads(ctx, p, false)
	require.NoError(t, err)
	assert.False(t, changed)

	ats, ok := AsDict(p.Root[KeyNSAppTransportSecurity])
	require.True(t, ok)
	assert.True(t, ats.Has("NSExceptionDomains"))
}

func TestReconcileArbitraryLoadsCreates(t *testing.T) {
	var (
		ctx = context.Background()
		p   = &InfoPlist{Name: InfoPlistName, Root: Dict{}}
	)

	changed, err := ReconcileArbitraryLoads(ctx, p, false)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.False(t, p.Root.Has(KeyNSAppTransportSecurity))

	changed, err = ReconcileArbitraryLoads(ctx, p, true)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, map[string]any{KeyNSAllowsArbitraryLoads: true}, p.Root[KeyNSAppTransportSecurity])
}

func TestReconcileArbitraryLoadsNotDict(t *testing.T) {
	var (
		ctx = context.Background()
		p   = &InfoPlist{Name: InfoPlistName, Root: Dict{KeyNSAppTransportSecurity: "oops"}}
	)

	_, err := ReconcileArbitraryLoads(ctx, p, true)
	assert.Error(t, err)
	assert.Equal(t, "oops", p.Root[KeyNSAppTransportSecurity])
}

func TestReconcileInfoPlistDefaultKeepsATS(t *testing.T) {
	var (
		ctx = context.Background()
		p   = newTestATSInfoPlist()
		cfg = newTestInfoPlistConfig()
	)

	cfg.AllowsArbitraryLoads = false
	require.NoError(t, ReconcileInfoPlist(ctx, p, cfg))

	ats, ok := AsDict(p.Root[KeyNSAppTransportSecurity])
	require.True(t, ok)
	assert.True(t, ats.Has("NSExceptionDomains"))
}

func TestReconcileFacebook(t *testing.T) {
	var (
		ctx = context.Background()
		p   = newTestInfoPlist(t)
		cfg = &FacebookConfig{AppID: "1234567890", AutoLogAppEvents: true}
	)

	assert.True(t, ReconcileFacebook(ctx, p, cfg))
	assert.False(t, ReconcileFacebook(ctx, p, cfg))

	id, _ := p.Root.GetString(KeyFacebookAppID)
	assert.Equal(t, "1234567890", id)
	assert.Equal(t, true, p.Root[KeyFacebookAutoLogAppEventsEnabled])
	assert.Equal(t, false, p.Root[KeyFacebookAdvertiserIDCollectionEnabled])

	cfg.AutoLogAppEvents = false
	assert.True(t, ReconcileFacebook(ctx, p, cfg))
	assert.Equal(t, false, p.Root[KeyFacebookAutoLogAppEventsEnabled])
}

func TestReconcileFacebookInvalidAppID(t *testing.T) {
	var (
		ctx = context.Background()
		p   = newTestInfoPlist(t)
	)

	assert.False(t, ReconcileFacebook(ctx, p, &FacebookConfig{AppID: "fb-not-numeric"}))
	assert.False(t, p.Root.Has(KeyFacebookAppID))
}

func TestNewInfoPlistConfigFacebook(t *testing.T) {
	settings := adpatch.DefaultSettings()
	assert.Nil(t, NewInfoPlistConfig(settings).Facebook)

	settings.Facebook.AutoConfiguration = true
	settings.Facebook.IOSAppID = "1234567890"
	settings.Facebook.AdvertiserIDCollection = true

	cfg := NewInfoPlistConfig(settings)
	require.NotNil(t, cfg.Facebook)
	assert.Equal(t, "1234567890", cfg.Facebook.AppID)
	assert.True(t, cfg.Facebook.AdvertiserIDCollection)
}
