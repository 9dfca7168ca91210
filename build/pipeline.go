package build

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/frantjc/adpatch"
	"github.com/opencontainers/go-digest"
)

type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(s)); p {
	case PlatformAndroid, PlatformIOS:
		return p, nil
	}

	return "", fmt.Errorf("unknown platform %s", s)
}

type Phase string

const (
	PhasePre  Phase = "prebuild"
	PhasePost Phase = "postbuild"
)

// IdentifierSource supplies SKAdNetwork identifiers to a build.
type IdentifierSource interface {
	Identifiers(context.Context) []string
}

// Build is one invocation of the hooks for a phase of a platform's build.
type Build struct {
	Platform Platform
	Phase    Phase
	// Path is the project directory for Android prebuilds and the
	// exported Xcode project directory for iOS postbuilds.
	Path string
	// ProjectDir is what relative paths in Settings are resolved
	// against. Path is used when empty.
	ProjectDir string
	Settings   *adpatch.Settings
	// XcodeVersion is empty when unknown.
	XcodeVersion string
	// SKAdNetwork may be nil, in which case only the identifiers
	// from Settings are used.
	SKAdNetwork IdentifierSource

	documents []Document
}

// Document describes a document a hook reconciled.
type Document struct {
	Hook    string
	Path    string
	Changed bool
	Digest  digest.Digest
}

// Documents returns the documents reconciled so far in the order they were saved.
func (b *Build) Documents() []Document {
	return b.documents
}

// Resolve returns name relative to b.ProjectDir, or b.Path if that is
// empty, unless it is absolute.
func (b *Build) Resolve(name string) string {
	if b.ProjectDir != "" {
		return resolve(b.ProjectDir, name)
	}

	return resolve(b.Path, name)
}

// Save writes after to path if it differs from before and records the
// result. Hooks call it only once every step for the document succeeded.
func (b *Build) Save(hook, path string, before, after []byte, write func() error) error {
	var (
		beforeDigest = digest.FromBytes(before)
		afterDigest  = digest.FromBytes(after)
		changed      = beforeDigest != afterDigest
	)

	if changed {
		if err := write(); err != nil {
			return adpatch.Fatal(fmt.Errorf("write %s: %w", path, err))
		}
	}

	b.documents = append(b.documents, Document{
		Hook:    hook,
		Path:    path,
		Changed: changed,
		Digest:  afterDigest,
	})

	return nil
}

// Hook reconciles part of a build's output.
type Hook struct {
	Name     string
	Phase    Phase
	Platform Platform
	// Order sorts hooks within a phase, lowest first.
	Order int
	Run   func(context.Context, *Build) error
}

// Pipeline is an ordered set of hooks.
type Pipeline struct {
	Hooks []Hook
}

// Run runs every hook of b's phase and platform in order. The first
// error aborts the build step and is returned; adpatch.IsFatal tells
// whether the hook meant it to fail the build.
func (p *Pipeline) Run(ctx context.Context, b *Build) error {
	hooks := slices.Clone(p.Hooks)
	slices.SortStableFunc(hooks, func(a, b Hook) int {
		return a.Order - b.Order
	})

	log := adpatch.LoggerFrom(ctx).WithValues("phase", b.Phase, "platform", b.Platform)

	for _, hook := range hooks {
		if hook.Phase != b.Phase || hook.Platform != b.Platform {
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		log.V(1).Info("running hook", "hook", hook.Name, "order", hook.Order)
		if err := hook.Run(adpatch.WithLogger(ctx, log.WithValues("hook", hook.Name)), b); err != nil {
			return fmt.Errorf("%s: %w", hook.Name, err)
		}
	}

	return nil
}
