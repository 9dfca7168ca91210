package command

import (
	"github.com/frantjc/adpatch"
	"github.com/frantjc/adpatch/build"
	"github.com/spf13/cobra"
)

// NewAdpatch returns the root command for
// adpatch which acts as its CLI entrypoint.
func NewAdpatch() *cobra.Command {
	var (
		settingsName string
		cmd          = &cobra.Command{
			Use:   "adpatch",
			Short: "Reconcile mobile build artifacts for the ad mediation SDK",
		}
	)

	cmd.PersistentFlags().StringVarP(&settingsName, "settings", "s", adpatch.SettingsName, "path to the settings file")

	cmd.AddCommand(
		newBuild(build.PhasePre),
		newBuild(build.PhasePost),
		newSKAdNetwork(),
		newSettings(),
	)

	return cmd
}
