package android

import (
	"context"
	"strconv"

	"github.com/frantjc/adpatch"
	"github.com/frantjc/adpatch/internal/adpatchregexp"
)

const (
	PermissionAccessCoarseLocation = "android.permission.ACCESS_COARSE_LOCATION"
	PermissionAccessFineLocation   = "android.permission.ACCESS_FINE_LOCATION"
	PermissionWriteExternalStorage = "android.permission.WRITE_EXTERNAL_STORAGE"
	PermissionAccessWifiState      = "android.permission.ACCESS_WIFI_STATE"
	PermissionVibrate              = "android.permission.VIBRATE"

	MetaDataAdMobAppID = "com.google.android.gms.ads.APPLICATION_ID"

	MetaDataFacebookApplicationID                 = "com.facebook.sdk.ApplicationId"
	MetaDataFacebookAutoLogAppEventsEnabled       = "com.facebook.sdk.AutoLogAppEventsEnabled"
	MetaDataFacebookAdvertiserIDCollectionEnabled = "com.facebook.sdk.AdvertiserIDCollectionEnabled"

	MultiDexApplication = "androidx.multidex.MultiDexApplication"
)

// PermissionFlag is whether a permission should be declared.
type PermissionFlag struct {
	Name  string
	Grant bool
}

// FacebookConfig is the desired Facebook SDK configuration.
type FacebookConfig struct {
	AppID                  string
	AutoLogAppEvents       bool
	AdvertiserIDCollection bool
}

// ManifestConfig is the desired state of an AndroidManifest.xml.
type ManifestConfig struct {
	Permissions []PermissionFlag
	// AdMob enables reconciling the AdMob app ID. When false,
	// any existing app ID is removed instead.
	AdMob      bool
	AdMobAppID string
	// Facebook is nil when Facebook meta-data is not managed.
	Facebook *FacebookConfig
}

// NewManifestConfig derives a ManifestConfig from settings.
// AdMob is enabled.
func NewManifestConfig(settings *adpatch.Settings) *ManifestConfig {
	cfg := &ManifestConfig{
		Permissions: []PermissionFlag{
			{Name: PermissionAccessCoarseLocation, Grant: settings.Android.AccessCoarseLocationPermission},
			{Name: PermissionAccessFineLocation, Grant: settings.Android.AccessFineLocationPermission},
			{Name: PermissionWriteExternalStorage, Grant: settings.Android.WriteExternalStoragePermission},
			{Name: PermissionAccessWifiState, Grant: settings.Android.AccessWifiStatePermission},
			{Name: PermissionVibrate, Grant: settings.Android.VibratePermission},
		},
		AdMob:      true,
		AdMobAppID: settings.AdMob.AndroidAppID,
	}

	if settings.Facebook.AutoConfiguration {
		cfg.Facebook = &FacebookConfig{
			AppID:                  settings.Facebook.AndroidAppID,
			AutoLogAppEvents:       settings.Facebook.AutoLogAppEvents,
			AdvertiserIDCollection: settings.Facebook.AdvertiserIDCollection,
		}
	}

	return cfg
}

// ValidateAdMobAppID returns a fatal error if id is not a usable AdMob app ID.
// An app built without one crashes on startup.
func ValidateAdMobAppID(id string) error {
	if id == "" {
		return adpatch.Fatalf("AdMob Android app ID is not set, the app may crash on startup")
	} else if !adpatchregexp.IsAdMobAppID(id) {
		return adpatch.Fatalf("AdMob Android app ID %q is not valid, the app may crash on startup", id)
	}

	return nil
}

// ReconcileManifest converges m to cfg. Validation happens before
// anything is changed, so on error m is left untouched.
func ReconcileManifest(ctx context.Context, m *Manifest, cfg *ManifestConfig) error {
	if cfg.AdMob {
		if err := ValidateAdMobAppID(cfg.AdMobAppID); err != nil {
			return err
		}
	}

	ReconcilePermissions(ctx, m, cfg.Permissions)

	if cfg.AdMob {
		ReconcileAdMobAppID(ctx, m, cfg.AdMobAppID)
	} else if n := m.RemoveMetaData(MetaDataAdMobAppID); n > 0 {
		adpatch.LoggerFrom(ctx).Info("removed AdMob app ID", "manifest", m.Name, "count", n)
	}

	if cfg.Facebook != nil {
		ReconcileFacebook(ctx, m, cfg.Facebook)
	}

	ReconcileMultidex(ctx, m)

	return nil
}

// ReconcilePermissions makes sure that each granted permission is declared
// exactly once and that no other permission in flags is declared at all.
// Permissions not in flags are left alone. It reports whether m changed.
func ReconcilePermissions(ctx context.Context, m *Manifest, flags []PermissionFlag) bool {
	var (
		log     = adpatch.LoggerFrom(ctx)
		changed = false
	)

	for _, flag := range flags {
		present := m.FindPermission(flag.Name) != nil

		switch {
		case flag.Grant && !present:
			m.AddPermission(flag.Name)
			log.Info("added permission", "manifest", m.Name, "permission", flag.Name)
			changed = true
		case flag.Grant:
			if n := m.DedupePermission(flag.Name); n > 0 {
				log.Info("removed duplicate permission", "manifest", m.Name, "permission", flag.Name, "count", n)
				changed = true
			} else {
				log.V(1).Info("permission up to date", "manifest", m.Name, "permission", flag.Name, "granted", flag.Grant)
			}
		case !flag.Grant && present:
			n := m.RemovePermission(flag.Name)
			log.Info("removed permission", "manifest", m.Name, "permission", flag.Name, "count", n)
			changed = true
		default:
			log.V(1).Info("permission up to date", "manifest", m.Name, "permission", flag.Name, "granted", flag.Grant)
		}
	}

	return changed
}

// ReconcileAdMobAppID replaces every AdMob app ID meta-data with exactly
// one carrying id. The caller is expected to have validated id.
// It reports whether m changed.
func ReconcileAdMobAppID(ctx context.Context, m *Manifest, id string) bool {
	return ReconcileMetaData(ctx, m, MetaDataAdMobAppID, id)
}

// ReconcileMetaData replaces every <application><meta-data> named name
// with exactly one carrying value. It reports whether m changed.
func ReconcileMetaData(ctx context.Context, m *Manifest, name, value string) bool {
	if values := m.MetaData(name); len(values) == 1 && values[0] == value {
		adpatch.LoggerFrom(ctx).V(1).Info("meta-data up to date", "manifest", m.Name, "name", name)
		return false
	}

	m.RemoveMetaData(name)
	m.AddMetaData(name, value)
	adpatch.LoggerFrom(ctx).Info("set meta-data", "manifest", m.Name, "name", name, "value", value)

	return true
}

// ReconcileFacebook sets the Facebook SDK meta-data. A missing or
// malformed app ID is logged and leaves m alone. It reports whether m changed.
func ReconcileFacebook(ctx context.Context, m *Manifest, cfg *FacebookConfig) bool {
	if !adpatchregexp.IsFacebookAppID(cfg.AppID) {
		adpatch.LoggerFrom(ctx).Error(nil, "Facebook Android app ID is missing or not valid, Facebook meta-data won't be added", "manifest", m.Name, "appID", cfg.AppID)
		return false
	}

	changed := false
	for _, kv := range [][2]string{
		// The SDK reads the ID as a string only when it is prefixed.
		{MetaDataFacebookApplicationID, "fb" + cfg.AppID},
		{MetaDataFacebookAutoLogAppEventsEnabled, strconv.FormatBool(cfg.AutoLogAppEvents)},
		{MetaDataFacebookAdvertiserIDCollectionEnabled, strconv.FormatBool(cfg.AdvertiserIDCollection)},
	} {
		if ReconcileMetaData(ctx, m, kv[0], kv[1]) {
			changed = true
		}
	}

	return changed
}

// ReconcileMultidex drops the legacy MultiDexApplication from <application>.
// Multidex is configured through the Gradle template instead.
func ReconcileMultidex(ctx context.Context, m *Manifest) bool {
	if m.RemoveApplicationName(MultiDexApplication) {
		adpatch.LoggerFrom(ctx).Info("removed application name", "manifest", m.Name, "name", MultiDexApplication)
		return true
	}

	return false
}
