package xcodebuild

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/frantjc/adpatch/internal/adpatchregexp"
)

// Version finds `xcodebuild` on the PATH and runs Version against it.
// See Command.Version.
func Version(ctx context.Context) (string, error) {
	return Command("xcodebuild").Version(ctx)
}

// Command represents the path to an `xcodebuild` executable.
type Command string

func (c Command) String() string {
	return string(c)
}

// Version runs `xcodebuild -version` and returns the Xcode version
// it prints, e.g. "15.0.1".
func (c Command) Version(ctx context.Context) (string, error) {
	var (
		buf = new(bytes.Buffer)
		//nolint:gosec
		cmd = exec.CommandContext(ctx, c.String(), "-version")
	)

	cmd.Stdout = buf

	if err := cmd.Run(); err != nil {
		return "", err
	}

	return ParseVersion(buf.String())
}

// ParseVersion finds the Xcode version in the output of `xcodebuild -version`.
func ParseVersion(out string) (string, error) {
	if m := adpatchregexp.XcodeVersion.FindStringSubmatch(out); len(m) == 2 {
		return m[1], nil
	}

	return "", fmt.Errorf("xcode version not found")
}
