package adpatch

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/frantjc/adpatch/internal/adpatchio"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// SettingsName is the default name of the settings file.
	SettingsName = "adpatch.yaml"
	// EnvPrefix prefixes environment variables that override settings,
	// e.g. ADPATCH_ADMOB_ANDROIDAPPID.
	EnvPrefix = "ADPATCH"
)

// Settings is everything that configures a reconciliation.
// Reconcilers only ever read it.
type Settings struct {
	Android     AndroidSettings     `yaml:"android" mapstructure:"android"`
	IOS         IOSSettings         `yaml:"ios" mapstructure:"ios"`
	AdMob       AdMobSettings       `yaml:"admob" mapstructure:"admob"`
	SKAdNetwork SKAdNetworkSettings `yaml:"skadnetwork" mapstructure:"skadnetwork"`
	Firebase    FirebaseSettings    `yaml:"firebase" mapstructure:"firebase"`
	Facebook    FacebookSettings    `yaml:"facebook" mapstructure:"facebook"`
}

type AndroidSettings struct {
	// Manifest is the path to the AndroidManifest.xml to reconcile,
	// relative to the project directory unless absolute.
	Manifest string `yaml:"manifest" mapstructure:"manifest"`
	// GradleTemplate is the path to the main Gradle template,
	// relative to the project directory unless absolute.
	GradleTemplate string `yaml:"gradleTemplate" mapstructure:"gradleTemplate"`

	AccessCoarseLocationPermission bool `yaml:"accessCoarseLocationPermission" mapstructure:"accessCoarseLocationPermission"`
	AccessFineLocationPermission   bool `yaml:"accessFineLocationPermission" mapstructure:"accessFineLocationPermission"`
	WriteExternalStoragePermission bool `yaml:"writeExternalStoragePermission" mapstructure:"writeExternalStoragePermission"`
	AccessWifiStatePermission      bool `yaml:"accessWifiStatePermission" mapstructure:"accessWifiStatePermission"`
	VibratePermission              bool `yaml:"vibratePermission" mapstructure:"vibratePermission"`

	Multidex bool `yaml:"multidex" mapstructure:"multidex"`
}

type IOSSettings struct {
	MainTarget      string `yaml:"mainTarget" mapstructure:"mainTarget"`
	FrameworkTarget string `yaml:"frameworkTarget" mapstructure:"frameworkTarget"`

	NSUserTrackingUsageDescription      bool `yaml:"nsUserTrackingUsageDescription" mapstructure:"nsUserTrackingUsageDescription"`
	NSLocationWhenInUseUsageDescription bool `yaml:"nsLocationWhenInUseUsageDescription" mapstructure:"nsLocationWhenInUseUsageDescription"`
	NSCalendarsUsageDescription         bool `yaml:"nsCalendarsUsageDescription" mapstructure:"nsCalendarsUsageDescription"`
	NSAppTransportSecurity              bool `yaml:"nsAppTransportSecurity" mapstructure:"nsAppTransportSecurity"`

	SKAdNetworkItems       bool     `yaml:"skAdNetworkItems" mapstructure:"skAdNetworkItems"`
	SKAdNetworkIdentifiers []string `yaml:"skAdNetworkIdentifiers" mapstructure:"skAdNetworkIdentifiers"`
}

type AdMobSettings struct {
	AndroidAppID string `yaml:"androidAppId" mapstructure:"androidAppId"`
	IOSAppID     string `yaml:"iosAppId" mapstructure:"iosAppId"`
	// Dependencies is the path to the AdMob network dependencies XML.
	// When set and missing, app ID reconciliation is skipped.
	Dependencies string `yaml:"dependencies" mapstructure:"dependencies"`
}

type SKAdNetworkSettings struct {
	URL string `yaml:"url" mapstructure:"url"`
}

type FirebaseSettings struct {
	AutoConfiguration bool `yaml:"autoConfiguration" mapstructure:"autoConfiguration"`
	// GoogleServicesJSON is the google-services.json downloaded from the Firebase console.
	GoogleServicesJSON string `yaml:"googleServicesJson" mapstructure:"googleServicesJson"`
	// AndroidLib is the Android library that Firebase string resources are generated into.
	AndroidLib string `yaml:"androidLib" mapstructure:"androidLib"`
	// AndroidPackageName picks the google-services.json client to use.
	// The first client is used when empty.
	AndroidPackageName string `yaml:"androidPackageName" mapstructure:"androidPackageName"`
}

type FacebookSettings struct {
	AutoConfiguration      bool   `yaml:"autoConfiguration" mapstructure:"autoConfiguration"`
	AndroidAppID           string `yaml:"androidAppId" mapstructure:"androidAppId"`
	IOSAppID               string `yaml:"iosAppId" mapstructure:"iosAppId"`
	AutoLogAppEvents       bool   `yaml:"autoLogAppEvents" mapstructure:"autoLogAppEvents"`
	AdvertiserIDCollection bool   `yaml:"advertiserIdCollection" mapstructure:"advertiserIdCollection"`
}

// DefaultSKAdNetworkURL serves the SKAdNetwork identifiers of every mediated network.
const DefaultSKAdNetworkURL = "https://mw-backend.appodeal.com/v1/skadnetwork/"

// DefaultSettings returns the Settings used for anything a settings file leaves out.
func DefaultSettings() *Settings {
	return &Settings{
		Android: AndroidSettings{
			Manifest:       "Assets/Plugins/Android/appodeal.androidlib/AndroidManifest.xml",
			GradleTemplate: "Assets/Plugins/Android/mainTemplate.gradle",
		},
		IOS: IOSSettings{
			MainTarget:      "Unity-iPhone",
			FrameworkTarget: "UnityFramework",
		},
		AdMob: AdMobSettings{
			Dependencies: "Assets/Appodeal/Editor/Dependencies/AdNetworkDependencies/GoogleAdMobDependencies.xml",
		},
		SKAdNetwork: SKAdNetworkSettings{
			URL: DefaultSKAdNetworkURL,
		},
		Firebase: FirebaseSettings{
			GoogleServicesJSON: "Assets/google-services.json",
			AndroidLib:         "Assets/Plugins/Android/FirebaseApp.androidlib",
		},
	}
}

func newViper(settings *Settings, env bool) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if env {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	b, err := yaml.Marshal(settings)
	if err != nil {
		return nil, err
	}

	if err := v.ReadConfig(bytes.NewReader(b)); err != nil {
		return nil, err
	}

	return v, nil
}

func isNotExist(err error) bool {
	cfnferr := viper.ConfigFileNotFoundError{}
	return errors.Is(err, fs.ErrNotExist) || errors.As(err, &cfnferr)
}

func loadViper(name string, env bool) (*viper.Viper, error) {
	v, err := newViper(DefaultSettings(), env)
	if err != nil {
		return nil, err
	}

	if name != "" {
		v.SetConfigFile(name)
		if err := v.MergeInConfig(); err != nil && !isNotExist(err) {
			return nil, &ParseError{Path: name, Err: err}
		}
	}

	return v, nil
}

// LoadSettings reads the settings file at name on top of DefaultSettings.
// A missing file is not an error. Environment variables prefixed with
// EnvPrefix take precedence over the file.
func LoadSettings(name string) (*Settings, error) {
	v, err := loadViper(name, true)
	if err != nil {
		return nil, err
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, &ParseError{Path: name, Err: err}
	}

	return settings, nil
}

// SaveSettings writes settings to name as YAML.
func SaveSettings(name string, settings *Settings) error {
	b, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}

	return adpatchio.WriteFile(name, b)
}

// SetSetting sets the dot-separated key in the settings file at name
// to value, which is parsed as YAML so that "true", "[a, b]" and plain
// strings all land as the right type. The file is created if necessary.
// Environment variables are ignored so that they never end up in the file.
func SetSetting(name, key, value string) (*Settings, error) {
	v, err := loadViper(name, false)
	if err != nil {
		return nil, err
	}

	key = strings.ToLower(key)
	if !slices.Contains(v.AllKeys(), key) {
		return nil, fmt.Errorf("unknown setting %s", key)
	}

	var parsed any
	if err := yaml.Unmarshal([]byte(value), &parsed); err != nil || parsed == nil {
		parsed = value
	}

	v.Set(key, parsed)

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("set %s: %w", key, err)
	}

	return settings, SaveSettings(name, settings)
}
