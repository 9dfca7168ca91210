package adpatchregexp

import "regexp"

var (
	// AdMobAppID matches an AdMob application identifier,
	// e.g. ca-app-pub-3940256099942544~3347511713.
	AdMobAppID = regexp.MustCompile(`^ca-app-pub-\S+$`)
	// SKAdNetworkIdentifier matches identifiers such as cstr6suwn9.skadnetwork.
	SKAdNetworkIdentifier = regexp.MustCompile(`^[a-zA-Z0-9]+\.skadnetwork$`)
	// FacebookAppID matches a numeric Facebook app ID.
	FacebookAppID = regexp.MustCompile(`^[0-9]+$`)
	// XcodeVersion finds the version in the output of `xcodebuild -version`.
	XcodeVersion = regexp.MustCompile(`(?m)^Xcode\s+([0-9]+(?:\.[0-9]+)*)`)
)
