package ios

import (
	"context"
	"fmt"
	"reflect"

	"github.com/frantjc/adpatch"
	"github.com/frantjc/adpatch/internal/adpatchregexp"
)

const (
	KeyGADApplicationIdentifier            = "GADApplicationIdentifier"
	KeyNSUserTrackingUsageDescription      = "NSUserTrackingUsageDescription"
	KeyNSLocationWhenInUseUsageDescription = "NSLocationWhenInUseUsageDescription"
	KeyNSCalendarsUsageDescription         = "NSCalendarsUsageDescription"
	KeyNSAppTransportSecurity              = "NSAppTransportSecurity"
	KeyNSAllowsArbitraryLoads              = "NSAllowsArbitraryLoads"

	KeyFacebookAppID                         = "FacebookAppID"
	KeyFacebookAutoLogAppEventsEnabled       = "FacebookAutoLogAppEventsEnabled"
	KeyFacebookAdvertiserIDCollectionEnabled = "FacebookAdvertiserIDCollectionEnabled"
)

const productName = "$(PRODUCT_NAME)"

var (
	UserTrackingUsageDescription      = productName + " needs your advertising identifier to provide personalized advertising experience tailored to you."
	LocationWhenInUseUsageDescription = productName + " needs your location for analytics and advertising purposes."
	CalendarsUsageDescription         = productName + " needs your calendar to provide personalized advertising experience tailored to you."
)

// KeyFlag is whether a top-level Info.plist key should be set,
// and what to set it to if it is missing.
type KeyFlag struct {
	Key   string
	Set   bool
	Value any
}

// FacebookConfig is the desired Facebook SDK configuration.
type FacebookConfig struct {
	AppID                  string
	AutoLogAppEvents       bool
	AdvertiserIDCollection bool
}

// InfoPlistConfig is the desired state of an Info.plist.
type InfoPlistConfig struct {
	Keys []KeyFlag
	// AllowsArbitraryLoads is reconciled inside NSAppTransportSecurity,
	// whose other entries are left alone.
	AllowsArbitraryLoads bool
	// AdMob enables reconciling the AdMob app ID.
	// When false, GADApplicationIdentifier is left alone.
	AdMob      bool
	AdMobAppID string
	// SKAdNetworkIdentifiers are merged into SKAdNetworkItems.
	// Nothing is merged when empty.
	SKAdNetworkIdentifiers []string
	// Facebook is nil when Facebook keys are not managed.
	Facebook *FacebookConfig
}

// NewInfoPlistConfig derives an InfoPlistConfig from settings.
// AdMob is enabled and SKAdNetworkIdentifiers is left for the caller
// to resolve.
func NewInfoPlistConfig(settings *adpatch.Settings) *InfoPlistConfig {
	cfg := &InfoPlistConfig{
		Keys: []KeyFlag{
			{Key: KeyNSUserTrackingUsageDescription, Set: settings.IOS.NSUserTrackingUsageDescription, Value: UserTrackingUsageDescription},
			{Key: KeyNSLocationWhenInUseUsageDescription, Set: settings.IOS.NSLocationWhenInUseUsageDescription, Value: LocationWhenInUseUsageDescription},
			{Key: KeyNSCalendarsUsageDescription, Set: settings.IOS.NSCalendarsUsageDescription, Value: CalendarsUsageDescription},
		},
		AllowsArbitraryLoads: settings.IOS.NSAppTransportSecurity,
		AdMob:                true,
		AdMobAppID:           settings.AdMob.IOSAppID,
	}

	if settings.Facebook.AutoConfiguration {
		cfg.Facebook = &FacebookConfig{
			AppID:                  settings.Facebook.IOSAppID,
			AutoLogAppEvents:       settings.Facebook.AutoLogAppEvents,
			AdvertiserIDCollection: settings.Facebook.AdvertiserIDCollection,
		}
	}

	return cfg
}

// ValidateAdMobAppID returns a fatal error if id is not a usable AdMob app ID.
func ValidateAdMobAppID(id string) error {
	if id == "" {
		return adpatch.Fatalf("AdMob iOS app ID is not set, the app may crash on startup")
	} else if !adpatchregexp.IsAdMobAppID(id) {
		return adpatch.Fatalf("AdMob iOS app ID %q is not valid, the app may crash on startup", id)
	}

	return nil
}

// ReconcileInfoPlist converges p to cfg. Validation happens before
// anything is changed, so on error p is left untouched.
func ReconcileInfoPlist(ctx context.Context, p *InfoPlist, cfg *InfoPlistConfig) error {
	if cfg.AdMob {
		if err := ValidateAdMobAppID(cfg.AdMobAppID); err != nil {
			return err
		}

		ReconcileAdMobAppID(ctx, p, cfg.AdMobAppID)
	}

	ReconcileKeys(ctx, p, cfg.Keys)

	if _, err := ReconcileArbitraryLoads(ctx, p, cfg.AllowsArbitraryLoads); err != nil {
		adpatch.LoggerFrom(ctx).Error(err, "skipping NSAllowsArbitraryLoads", "plist", p.Name)
	}

	if cfg.Facebook != nil {
		ReconcileFacebook(ctx, p, cfg.Facebook)
	}

	if len(cfg.SKAdNetworkIdentifiers) > 0 {
		if _, err := MergeSKAdNetworkItems(ctx, p, cfg.SKAdNetworkIdentifiers); err != nil {
			adpatch.LoggerFrom(ctx).Error(err, "skipping SKAdNetworkItems", "plist", p.Name)
		}
	}

	return nil
}

// ReconcileKeys sets each missing key that should be set and deletes
// each present key that should not be. Existing values are never
// overwritten. It reports whether p changed.
func ReconcileKeys(ctx context.Context, p *InfoPlist, flags []KeyFlag) bool {
	var (
		log     = adpatch.LoggerFrom(ctx)
		changed = false
	)

	for _, flag := range flags {
		present := p.Root.Has(flag.Key)

		switch {
		case flag.Set && !present:
			p.Root[flag.Key] = flag.Value
			log.Info("added key", "plist", p.Name, "key", flag.Key)
			changed = true
		case !flag.Set && present:
			p.Root.Delete(flag.Key)
			log.Info("removed key", "plist", p.Name, "key", flag.Key)
			changed = true
		default:
			log.V(1).Info("key up to date", "plist", p.Name, "key", flag.Key, "set", flag.Set)
		}
	}

	return changed
}

// ReconcileAdMobAppID sets GADApplicationIdentifier to id, replacing
// whatever was there. The caller is expected to have validated id.
// It reports whether p changed.
func ReconcileAdMobAppID(ctx context.Context, p *InfoPlist, id string) bool {
	return ReconcileValue(ctx, p, KeyGADApplicationIdentifier, id)
}

// ReconcileValue sets key to value unless it already is. It reports whether p changed.
func ReconcileValue(ctx context.Context, p *InfoPlist, key string, value any) bool {
	if reflect.DeepEqual(p.Root[key], value) {
		adpatch.LoggerFrom(ctx).V(1).Info("key up to date", "plist", p.Name, "key", key)
		return false
	}

	p.Root[key] = value
	adpatch.LoggerFrom(ctx).Info("set key", "plist", p.Name, "key", key, "value", value)

	return true
}

// ReconcileArbitraryLoads sets NSAllowsArbitraryLoads inside
// NSAppTransportSecurity when allow is true, creating the dictionary if
// need be, and removes only that entry when allow is false. Other
// entries, such as NSExceptionDomains, are never touched. It errors,
// without changing p, if NSAppTransportSecurity is not a dictionary.
func ReconcileArbitraryLoads(ctx context.Context, p *InfoPlist, allow bool) (bool, error) {
	log := adpatch.LoggerFrom(ctx)

	v, present := p.Root[KeyNSAppTransportSecurity]
	ats, ok := AsDict(v)
	if present && !ok {
		return false, fmt.Errorf("%s is a %T, not a dictionary", KeyNSAppTransportSecurity, v)
	}

	switch {
	case allow && (!present || ats[KeyNSAllowsArbitraryLoads] != true):
		if !present {
			ats = Dict{}
		}

		ats[KeyNSAllowsArbitraryLoads] = true
		p.Root[KeyNSAppTransportSecurity] = map[string]any(ats)
		log.Info("allowed arbitrary loads", "plist", p.Name)
		return true, nil
	case !allow && present && ats.Delete(KeyNSAllowsArbitraryLoads):
		log.Info("removed arbitrary loads", "plist", p.Name)
		return true, nil
	}

	log.V(1).Info("arbitrary loads up to date", "plist", p.Name, "allow", allow)
	return false, nil
}

// ReconcileFacebook sets the Facebook SDK keys. A missing or malformed
// app ID is logged and leaves p alone. It reports whether p changed.
func ReconcileFacebook(ctx context.Context, p *InfoPlist, cfg *FacebookConfig) bool {
	if !adpatchregexp.IsFacebookAppID(cfg.AppID) {
		adpatch.LoggerFrom(ctx).Error(nil, "Facebook iOS app ID is missing or not valid, Facebook keys won't be added", "plist", p.Name, "appID", cfg.AppID)
		return false
	}

	changed := false
	for _, kv := range []struct {
		key   string
		value any
	}{
		{KeyFacebookAppID, cfg.AppID},
		{KeyFacebookAutoLogAppEventsEnabled, cfg.AutoLogAppEvents},
		{KeyFacebookAdvertiserIDCollectionEnabled, cfg.AdvertiserIDCollection},
	} {
		if ReconcileValue(ctx, p, kv.key, kv.value) {
			changed = true
		}
	}

	return changed
}
