package adpatch_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/frantjc/adpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsMissingFile(t *testing.T) {
	settings, err := adpatch.LoadSettings(filepath.Join(t.TempDir(), adpatch.SettingsName))
	require.NoError(t, err)

	defaults := adpatch.DefaultSettings()
	assert.Equal(t, defaults.Android.Manifest, settings.Android.Manifest)
	assert.Equal(t, defaults.IOS.MainTarget, settings.IOS.MainTarget)
	assert.Equal(t, adpatch.DefaultSKAdNetworkURL, settings.SKAdNetwork.URL)
	assert.Equal(t, "Assets/Appodeal/Editor/Dependencies/AdNetworkDependencies/GoogleAdMobDependencies.xml", settings.AdMob.Dependencies)
	assert.Equal(t, "Assets/google-services.json", settings.Firebase.GoogleServicesJSON)
	assert.False(t, settings.Facebook.AutoConfiguration)
}

func TestLoadSettings(t *testing.T) {
	name := filepath.Join(t.TempDir(), adpatch.SettingsName)
	require.NoError(t, os.WriteFile(name, []byte(`
android:
  vibratePermission: true
admob:
  androidAppId: ca-app-pub-3940256099942544~3347511713
ios:
  skAdNetworkIdentifiers:
    - cstr6suwn9.skadnetwork
`), 0o644))

	settings, err := adpatch.LoadSettings(name)
	require.NoError(t, err)

	assert.True(t, settings.Android.VibratePermission)
	assert.False(t, settings.Android.AccessWifiStatePermission)
	assert.Equal(t, "ca-app-pub-3940256099942544~3347511713", settings.AdMob.AndroidAppID)
	assert.Equal(t, []string{"cstr6suwn9.skadnetwork"}, settings.IOS.SKAdNetworkIdentifiers)
	assert.Equal(t, adpatch.DefaultSettings().Android.GradleTemplate, settings.Android.GradleTemplate)
}

func TestLoadSettingsMalformed(t *testing.T) {
	name := filepath.Join(t.TempDir(), adpatch.SettingsName)
	require.NoError(t, os.WriteFile(name, []byte("android: [\n"), 0o644))

	_, err := adpatch.LoadSettings(name)
	assert.True(t, adpatch.IsParse(err))
}

func TestLoadSettingsEnv(t *testing.T) {
	t.Setenv("ADPATCH_ADMOB_IOSAPPID", "ca-app-pub-3940256099942544~1458002511")

	settings, err := adpatch.LoadSettings(filepath.Join(t.TempDir(), adpatch.SettingsName))
	require.NoError(t, err)
	assert.Equal(t, "ca-app-pub-3940256099942544~1458002511", settings.AdMob.IOSAppID)
}

func TestSetSetting(t *testing.T) {
	name := filepath.Join(t.TempDir(), adpatch.SettingsName)

	settings, err := adpatch.SetSetting(name, "android.vibratePermission", "true")
	require.NoError(t, err)
	assert.True(t, settings.Android.VibratePermission)

	_, err = adpatch.SetSetting(name, "admob.iosAppId", "ca-app-pub-3940256099942544~1458002511")
	require.NoError(t, err)

	settings, err = adpatch.LoadSettings(name)
	require.NoError(t, err)
	assert.True(t, settings.Android.VibratePermission)
	assert.Equal(t, "ca-app-pub-3940256099942544~1458002511", settings.AdMob.IOSAppID)

	_, err = adpatch.SetSetting(name, "android.notASetting", "true")
	assert.Error(t, err)
}

func TestSetSettingIgnoresEnv(t *testing.T) {
	t.Setenv("ADPATCH_ADMOB_IOSAPPID", "ca-app-pub-3940256099942544~1458002511")

	name := filepath.Join(t.TempDir(), adpatch.SettingsName)

	settings, err := adpatch.SetSetting(name, "facebook.iosAppId", "1234567890")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", settings.Facebook.IOSAppID)
	assert.Empty(t, settings.AdMob.IOSAppID)

	b, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "ca-app-pub-3940256099942544~1458002511")
	assert.Contains(t, string(b), "1234567890")

	settings, err = adpatch.LoadSettings(name)
	require.NoError(t, err)
	assert.Equal(t, "ca-app-pub-3940256099942544~1458002511", settings.AdMob.IOSAppID)
}
