package adpatch

import (
	"strconv"
	"strings"
)

var (
	// Version is the semantic version of adpatch.
	// It is set at build time with -ldflags.
	Version = "0.0.0"
	// Prerelease is the prerelease suffix of Version, if any.
	Prerelease = ""
)

// SemVer returns the semantic version of adpatch.
func SemVer() string {
	if Prerelease != "" {
		return Version + "-" + Prerelease
	}

	return Version
}

// CompareVersions compares two dotted version strings segment by segment,
// numerically, left to right. The shorter version is padded with zeros, so
// "9" and "9.0" are equal. Segments that are not numbers count as 0.
// The result is negative when a < b, 0 when equal and positive when a > b.
func CompareVersions(a, b string) int {
	var (
		as = strings.Split(strings.TrimSpace(a), ".")
		bs = strings.Split(strings.TrimSpace(b), ".")
		n  = max(len(as), len(bs))
	)

	for i := 0; i < n; i++ {
		var x, y int
		if i < len(as) {
			x = versionSegment(as[i])
		}
		if i < len(bs) {
			y = versionSegment(bs[i])
		}

		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}

	return 0
}

func versionSegment(s string) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || i < 0 {
		return 0
	}

	return i
}
