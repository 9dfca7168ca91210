package command

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/frantjc/adpatch"
	"github.com/frantjc/adpatch/build"
	"github.com/frantjc/adpatch/skadnetwork"
	"github.com/frantjc/adpatch/xcodebuild"
	"github.com/spf13/cobra"
	"gocloud.dev/blob"
)

func defaultCacheURL() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}

	dir = filepath.Join(dir, "adpatch")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(dir)}).String(), nil
}

func openStore(ctx context.Context, cacheURL string) (*skadnetwork.Store, error) {
	if cacheURL == "" {
		var err error
		if cacheURL, err = defaultCacheURL(); err != nil {
			return nil, err
		}
	}

	adpatch.LoggerFrom(ctx).V(1).Info("opening bucket " + cacheURL)
	bucket, err := blob.OpenBucket(ctx, cacheURL)
	if err != nil {
		return nil, err
	}

	return &skadnetwork.Store{Bucket: bucket}, nil
}

func newClient(settings *adpatch.Settings) (*skadnetwork.Client, error) {
	cli := new(skadnetwork.Client)
	if settings.SKAdNetwork.URL != "" {
		var err error
		if cli.URL, err = url.Parse(settings.SKAdNetwork.URL); err != nil {
			return nil, err
		}
	}

	return cli, nil
}

func newBuild(phase build.Phase) *cobra.Command {
	var (
		xcodeVersion string
		projectDir   string
		offline      bool
		timeout      time.Duration
		cacheURL     string
		digest       bool
		cmd          = &cobra.Command{
			Use:   string(phase) + " <android|ios> <path>",
			Short: fmt.Sprintf("Run the %s hooks against a platform's build", phase),
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				var (
					ctx = cmd.Context()
					log = adpatch.LoggerFrom(ctx)
				)

				platform, err := build.ParsePlatform(args[0])
				if err != nil {
					return err
				}

				settings, err := adpatch.LoadSettings(cmd.Flag("settings").Value.String())
				if err != nil {
					return err
				}

				if projectDir == "" && phase == build.PhasePost {
					projectDir = "."
				}

				b := &build.Build{
					Platform:     platform,
					Phase:        phase,
					Path:         args[1],
					ProjectDir:   projectDir,
					Settings:     settings,
					XcodeVersion: xcodeVersion,
				}

				if phase == build.PhasePost && platform == build.PlatformIOS {
					if b.XcodeVersion == "" {
						if b.XcodeVersion, err = xcodebuild.Version(ctx); err != nil {
							log.V(1).Info("xcode version unknown", "err", err.Error())
						}
					}

					if settings.IOS.SKAdNetworkItems {
						resolver := &skadnetwork.Resolver{Static: settings.IOS.SKAdNetworkIdentifiers}

						store, err := openStore(ctx, cacheURL)
						if err != nil {
							log.Error(err, "opening SKAdNetwork identifier cache failed")
						} else {
							defer store.Bucket.Close()
							resolver.Store = store
						}

						if !offline {
							cli, err := newClient(settings)
							if err != nil {
								return err
							}

							fetchCtx := ctx
							if timeout > 0 {
								var cancel context.CancelFunc
								fetchCtx, cancel = context.WithTimeout(ctx, timeout)
								defer cancel()
							}

							resolver.Task = skadnetwork.Start(fetchCtx, cli.Get)
							defer resolver.Task.Cancel()
						}

						b.SKAdNetwork = resolver
					}
				}

				err = build.DefaultPipeline().Run(ctx, b)
				if digest {
					for _, document := range b.Documents() {
						log.Info("saved "+document.Path, "hook", document.Hook, "digest", document.Digest.String())
					}
				}

				if werr := writeDocuments(cmd, b.Documents()); werr != nil && err == nil {
					err = werr
				}

				return err
			},
		}
	)

	cmd.Flags().StringVar(&xcodeVersion, "xcode-version", "", "version of Xcode that builds the project (default from xcodebuild -version)")
	cmd.Flags().StringVar(&projectDir, "project-dir", "", "directory that settings paths are relative to (default <path> for prebuild, the working directory for postbuild)")
	cmd.Flags().BoolVar(&offline, "offline", false, "use only configured and cached SKAdNetwork identifiers")
	cmd.Flags().DurationVar(&timeout, "skadnetwork-timeout", 0, "how long to wait for SKAdNetwork identifiers (default no limit)")
	cmd.Flags().StringVar(&cacheURL, "cache-url", "", "blob URL to cache SKAdNetwork identifiers in (default the user cache directory)")
	cmd.Flags().BoolVar(&digest, "digest", false, "log the digest of each saved document")

	return cmd
}

func writeDocuments(cmd *cobra.Command, documents []build.Document) error {
	if len(documents) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HOOK\tDOCUMENT\tCHANGED")
	for _, document := range documents {
		fmt.Fprintf(tw, "%s\t%s\t%t\n", document.Hook, document.Path, document.Changed)
	}

	return tw.Flush()
}
