package command

import (
	"github.com/frantjc/adpatch"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newSettings() *cobra.Command {
	var (
		cmd = &cobra.Command{
			Use:   "settings",
			Short: "Show or change adpatch settings",
		}
	)

	cmd.AddCommand(newSettingsShow(), newSettingsSet())

	return cmd
}

func newSettingsShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := adpatch.LoadSettings(cmd.Flag("settings").Value.String())
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()

			return enc.Encode(settings)
		},
	}
}

func newSettingsSet() *cobra.Command {
	return &cobra.Command{
		Use:     "set <key> <value>",
		Short:   "Change a setting, e.g. `set android.vibratePermission true`",
		Args:    cobra.ExactArgs(2),
		Example: "  adpatch settings set admob.androidAppId ca-app-pub-3940256099942544~3347511713",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := adpatch.SetSetting(cmd.Flag("settings").Value.String(), args[0], args[1])
			return err
		},
	}
}
