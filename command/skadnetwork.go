package command

import (
	"fmt"

	"github.com/frantjc/adpatch"
	"github.com/spf13/cobra"
)

func newSKAdNetwork() *cobra.Command {
	var (
		cmd = &cobra.Command{
			Use:   "skadnetwork",
			Short: "Manage cached SKAdNetwork identifiers",
		}
	)

	cmd.AddCommand(newSKAdNetworkFetch())

	return cmd
}

func newSKAdNetworkFetch() *cobra.Command {
	var (
		cacheURL string
		cmd      = &cobra.Command{
			Use:   "fetch",
			Short: "Fetch SKAdNetwork identifiers and cache them for offline builds",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()

				settings, err := adpatch.LoadSettings(cmd.Flag("settings").Value.String())
				if err != nil {
					return err
				}

				cli, err := newClient(settings)
				if err != nil {
					return err
				}

				ids, err := cli.Get(ctx)
				if err != nil {
					return err
				}

				store, err := openStore(ctx, cacheURL)
				if err != nil {
					return err
				}
				defer store.Bucket.Close()

				if err := store.Save(ctx, ids); err != nil {
					return err
				}

				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}

				return nil
			},
		}
	)

	cmd.Flags().StringVar(&cacheURL, "cache-url", "", "blob URL to cache SKAdNetwork identifiers in (default the user cache directory)")

	return cmd
}
