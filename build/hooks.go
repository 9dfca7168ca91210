package build

import (
	"context"
	"os"
	"path/filepath"

	"github.com/frantjc/adpatch"
	"github.com/frantjc/adpatch/admob"
	"github.com/frantjc/adpatch/android"
	"github.com/frantjc/adpatch/internal/adpatchio"
	"github.com/frantjc/adpatch/ios"
	"github.com/frantjc/adpatch/xcode"
)

const (
	OrderAndroidManifest = 0
	OrderAndroidGradle   = 1
	OrderAndroidFirebase = 2
	OrderIOSInfoPlist    = 41
	OrderIOSProject      = 45
)

const (
	GoogleServiceInfoPlistName = "GoogleService-Info.plist"
	// FirebaseLibraryPackage is the package of the generated Firebase Android library.
	FirebaseLibraryPackage = "com.google.firebase.app.unity"
)

// DefaultPipeline returns a Pipeline with every hook adpatch knows.
func DefaultPipeline() *Pipeline {
	return &Pipeline{
		Hooks: []Hook{
			{Name: "android-manifest", Phase: PhasePre, Platform: PlatformAndroid, Order: OrderAndroidManifest, Run: AndroidManifest},
			{Name: "android-gradle", Phase: PhasePre, Platform: PlatformAndroid, Order: OrderAndroidGradle, Run: AndroidGradle},
			{Name: "android-firebase", Phase: PhasePre, Platform: PlatformAndroid, Order: OrderAndroidFirebase, Run: AndroidFirebase},
			{Name: "ios-info-plist", Phase: PhasePost, Platform: PlatformIOS, Order: OrderIOSInfoPlist, Run: IOSInfoPlist},
			{Name: "ios-project", Phase: PhasePost, Platform: PlatformIOS, Order: OrderIOSProject, Run: IOSProject},
		},
	}
}

func resolve(dir, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}

	return filepath.Join(dir, name)
}

// adMobDependencies reports whether the AdMob network is part of the
// build. Without a configured dependencies file it is assumed to be.
func adMobDependencies(ctx context.Context, b *Build) (*admob.Dependencies, bool) {
	name := b.Settings.AdMob.Dependencies
	if name == "" {
		return nil, true
	}

	deps, err := admob.OpenDependencies(b.Resolve(name))
	if err != nil {
		adpatch.LoggerFrom(ctx).Error(err, "missing AdMob network config, AdMob app ID won't be added")
		return nil, false
	}

	return deps, true
}

// AndroidManifest reconciles optional permissions, the AdMob app ID and the
// multidex application of the SDK's AndroidManifest.xml. The manifest is
// required.
func AndroidManifest(ctx context.Context, b *Build) error {
	name := b.Resolve(b.Settings.Android.Manifest)

	before, exists, err := adpatchio.ReadFile(name)
	if !exists {
		return adpatch.Fatal(&adpatch.NotFoundError{Path: name})
	} else if err != nil {
		return adpatch.Fatal(err)
	}

	m, err := android.ParseManifest(name, before)
	if err != nil {
		return adpatch.Fatal(err)
	}

	cfg := android.NewManifestConfig(b.Settings)
	_, cfg.AdMob = adMobDependencies(ctx, b)

	if err := android.ReconcileManifest(ctx, m, cfg); err != nil {
		return err
	}

	after, err := m.Bytes()
	if err != nil {
		return adpatch.Fatal(err)
	}

	return b.Save("android-manifest", name, before, after, m.Save)
}

// AndroidGradle reconciles multidex in the main Gradle template.
// The template is optional.
func AndroidGradle(ctx context.Context, b *Build) error {
	name := b.Resolve(b.Settings.Android.GradleTemplate)
	if name == "" {
		return nil
	}

	before, exists, err := adpatchio.ReadFile(name)
	if !exists {
		adpatch.LoggerFrom(ctx).Error(nil, "missing gradle template, multidex won't be configured", "template", name)
		return nil
	} else if err != nil {
		return adpatch.Fatal(err)
	}

	g := android.ParseGradleTemplate(name, before)
	android.ReconcileGradleMultidex(ctx, g, b.Settings.Android.Multidex)

	return b.Save("android-gradle", name, before, g.Bytes(), g.Save)
}

// AndroidFirebase generates the Firebase string resources from
// google-services.json into an Android library, creating the library if
// need be. It only runs with Firebase auto configuration, and a missing
// google-services.json is not an error.
func AndroidFirebase(ctx context.Context, b *Build) error {
	if !b.Settings.Firebase.AutoConfiguration {
		return nil
	}

	var (
		log      = adpatch.LoggerFrom(ctx)
		jsonName = b.Resolve(b.Settings.Firebase.GoogleServicesJSON)
		lib      = b.Resolve(b.Settings.Firebase.AndroidLib)
	)

	gs, err := android.OpenGoogleServices(jsonName)
	if adpatch.IsNotFound(err) {
		log.Error(nil, "missing google-services.json, Firebase won't be configured", "json", jsonName)
		return nil
	} else if err != nil {
		return adpatch.Fatal(err)
	}

	client := gs.Client(b.Settings.Firebase.AndroidPackageName)
	if client == nil {
		log.Error(nil, "google-services.json has no client for package, Firebase won't be configured", "json", jsonName, "package", b.Settings.Firebase.AndroidPackageName)
		return nil
	}

	after, err := android.GoogleServicesXML(gs.Values(client))
	if err != nil {
		return adpatch.Fatal(err)
	}

	if err := os.MkdirAll(filepath.Join(lib, filepath.Dir(android.GoogleServicesXMLName)), 0o755); err != nil {
		return adpatch.Fatal(err)
	}

	for name, content := range map[string][]byte{
		android.AndroidManifestName:   android.LibraryManifest(FirebaseLibraryPackage),
		android.ProjectPropertiesName: android.LibraryProjectProperties,
	} {
		if name = filepath.Join(lib, name); !adpatchio.Exists(name) {
			if err := adpatchio.WriteFile(name, content); err != nil {
				return adpatch.Fatal(err)
			}
			log.Info("created " + name)
		}
	}

	name := filepath.Join(lib, android.GoogleServicesXMLName)

	before, exists, err := adpatchio.ReadFile(name)
	if exists && err != nil {
		return adpatch.Fatal(err)
	}

	return b.Save("android-firebase", name, before, after, func() error {
		return adpatchio.WriteFile(name, after)
	})
}

// IOSInfoPlist reconciles the AdMob app ID, usage descriptions and
// SKAdNetwork identifiers of the exported Info.plist, which is required.
func IOSInfoPlist(ctx context.Context, b *Build) error {
	var (
		log  = adpatch.LoggerFrom(ctx)
		name = filepath.Join(b.Path, ios.InfoPlistName)
	)

	before, exists, err := adpatchio.ReadFile(name)
	if !exists {
		return adpatch.Fatal(&adpatch.NotFoundError{Path: name})
	} else if err != nil {
		return adpatch.Fatal(err)
	}

	p, err := ios.ParseInfoPlist(name, before)
	if err != nil {
		return adpatch.Fatal(err)
	}

	cfg := ios.NewInfoPlistConfig(b.Settings)
	if deps, ok := adMobDependencies(ctx, b); !ok {
		cfg.AdMob = false
	} else if deps != nil && !deps.HasIOSPod(admob.IOSAdapterPod) {
		log.Error(nil, "AdMob network config does not declare the iOS adapter, ensure the plugin is imported correctly", "pod", admob.IOSAdapterPod)
		cfg.AdMob = false
	}

	if b.Settings.IOS.SKAdNetworkItems {
		if b.SKAdNetwork != nil {
			cfg.SKAdNetworkIdentifiers = b.SKAdNetwork.Identifiers(ctx)
		} else {
			cfg.SKAdNetworkIdentifiers = b.Settings.IOS.SKAdNetworkIdentifiers
		}
	}

	if err := ios.ReconcileInfoPlist(ctx, p, cfg); err != nil {
		return err
	}

	after, err := p.Bytes()
	if err != nil {
		return adpatch.Fatal(err)
	}

	return b.Save("ios-info-plist", name, before, after, p.Save)
}

// IOSProject applies the SDK's baseline to the exported Xcode project,
// which is required.
func IOSProject(ctx context.Context, b *Build) error {
	name := xcode.FindProject(b.Path)

	before, exists, err := adpatchio.ReadFile(name)
	if !exists {
		return adpatch.Fatal(&adpatch.NotFoundError{Path: name})
	} else if err != nil {
		return adpatch.Fatal(err)
	}

	p, err := xcode.ParseProject(name, before)
	if err != nil {
		return adpatch.Fatal(err)
	}

	cfg := xcode.NewPatchConfig(b.Settings, b.XcodeVersion)
	if b.Settings.Firebase.AutoConfiguration && adpatchio.Exists(filepath.Join(b.Path, GoogleServiceInfoPlistName)) {
		cfg.Resources = append(cfg.Resources, GoogleServiceInfoPlistName)
	}

	changed, err := xcode.Patch(ctx, p, cfg)
	if err != nil {
		return err
	}

	after := before
	if changed {
		if after, err = p.Bytes(); err != nil {
			return adpatch.Fatal(err)
		}
	}

	return b.Save("ios-project", name, before, after, p.Save)
}
