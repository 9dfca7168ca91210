package xcode

import (
	"context"
	"path/filepath"

	"github.com/frantjc/adpatch"
)

// MinVersionToEnableBitcode is the first Xcode version whose
// toolchain can build the SDK with bitcode enabled.
const MinVersionToEnableBitcode = "10.0"

var (
	Frameworks = []string{
		"AdSupport",
		"AudioToolbox",
		"AVFoundation",
		"CFNetwork",
		"CoreFoundation",
		"CoreGraphics",
		"CoreImage",
		"CoreLocation",
		"CoreMedia",
		"CoreMotion",
		"CoreTelephony",
		"CoreText",
		"EventKitUI",
		"EventKit",
		"GLKit",
		"ImageIO",
		"JavaScriptCore",
		"MediaPlayer",
		"MessageUI",
		"MobileCoreServices",
		"QuartzCore",
		"SafariServices",
		"Security",
		"Social",
		"StoreKit",
		"SystemConfiguration",
		"Twitter",
		"UIKit",
		"VideoToolbox",
		"WatchConnectivity",
		"WebKit",
	}

	WeakFrameworks = []string{
		"AppTrackingTransparency",
	}

	Libraries = []string{
		"libc++.dylib",
		"libz.dylib",
		"libsqlite3.dylib",
		"libxml2.2.dylib",
	}
)

// PatchConfig is the input to Patch that varies between builds.
type PatchConfig struct {
	MainTarget      string
	FrameworkTarget string
	// XcodeVersion is the version of the Xcode that will build the
	// project. Empty means unknown, which is treated as recent.
	XcodeVersion string
	// Resources are paths, relative to the project's directory, of
	// files to reference and bundle with the main target.
	Resources []string
}

// NewPatchConfig derives a PatchConfig from settings.
func NewPatchConfig(settings *adpatch.Settings, xcodeVersion string) *PatchConfig {
	return &PatchConfig{
		MainTarget:      settings.IOS.MainTarget,
		FrameworkTarget: settings.IOS.FrameworkTarget,
		XcodeVersion:    xcodeVersion,
	}
}

// BitcodeEnabled reports whether ENABLE_BITCODE should be YES
// for projects built with the given version of Xcode.
func BitcodeEnabled(xcodeVersion string) bool {
	return xcodeVersion == "" || adpatch.CompareVersions(xcodeVersion, MinVersionToEnableBitcode) >= 0
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}

	return "NO"
}

// Patch applies the baseline frameworks, libraries and build settings
// the SDK needs to p. Every step checks before it adds, so patching an
// already patched project changes nothing. A missing main target is fatal.
// It reports whether p changed.
func Patch(ctx context.Context, p *Project, cfg *PatchConfig) (bool, error) {
	var (
		log     = adpatch.LoggerFrom(ctx).WithValues("project", p.Name)
		changed = false
	)

	target, ok := p.Target(cfg.MainTarget)
	if !ok {
		return false, adpatch.Fatalf("target %s not found in %s", cfg.MainTarget, p.Name)
	}

	for _, frameworks := range []struct {
		names []string
		weak  bool
	}{
		{Frameworks, false},
		{WeakFrameworks, true},
	} {
		for _, framework := range frameworks.names {
			if p.ContainsFramework(target, framework) {
				log.V(1).Info("framework already linked", "framework", framework)
				continue
			}

			p.AddFramework(target, framework, frameworks.weak)
			log.Info("linked framework", "framework", framework, "weak", frameworks.weak)
			changed = true
		}
	}

	for _, lib := range Libraries {
		ref := p.AddFileReference("usr/lib/"+lib, lib, SourceTreeSDKRoot)
		if p.AddFileToBuild(target, ref) {
			log.Info("linked library", "library", lib)
			changed = true
		}
	}

	for _, resource := range cfg.Resources {
		ref := p.AddFileReference(resource, filepath.Base(resource), SourceTreeSourceRoot)
		if p.AddFileToResources(target, ref) {
			log.Info("added resource", "resource", resource)
			changed = true
		}
	}

	bitcode := BitcodeEnabled(cfg.XcodeVersion)
	log.V(1).Info("resolved bitcode", "xcodeVersion", cfg.XcodeVersion, "enabled", bitcode)

	for _, prop := range []struct {
		target, name, value string
		add                 bool
	}{
		{target, "OTHER_LDFLAGS", "-ObjC", true},
		{target, "ENABLE_BITCODE", yesNo(bitcode), false},
		{target, "LIBRARY_SEARCH_PATHS", "$(SRCROOT)/Libraries", true},
		{target, "LIBRARY_SEARCH_PATHS", "$(TOOLCHAIN_DIR)/usr/lib/swift/$(PLATFORM_NAME)", true},
		{target, "ALWAYS_EMBED_SWIFT_STANDARD_LIBRARIES", "YES", false},
		{target, "LD_RUNPATH_SEARCH_PATHS", "@executable_path/Frameworks", true},
		{target, "SWIFT_VERSION", "4.0", false},
	} {
		if applyBuildProperty(p, prop.target, prop.name, prop.value, prop.add) {
			log.Info("set build property", "target", cfg.MainTarget, "name", prop.name, "value", prop.value)
			changed = true
		}
	}

	if frameworkTarget, ok := p.Target(cfg.FrameworkTarget); ok {
		if applyBuildProperty(p, frameworkTarget, "ALWAYS_EMBED_SWIFT_STANDARD_LIBRARIES", "NO", false) {
			log.Info("set build property", "target", cfg.FrameworkTarget, "name", "ALWAYS_EMBED_SWIFT_STANDARD_LIBRARIES", "value", "NO")
			changed = true
		}
	} else {
		log.V(1).Info("no framework target", "target", cfg.FrameworkTarget)
	}

	return changed, nil
}

func applyBuildProperty(p *Project, target, name, value string, add bool) bool {
	if add {
		return p.AddBuildProperty(target, name, value)
	}

	return p.SetBuildProperty(target, name, value)
}
