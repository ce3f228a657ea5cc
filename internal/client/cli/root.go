package cli

import (
	"github.com/spf13/cobra"
)

func (a *App) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "obrafield",
		Short: "Offline-first field data collection for construction sites",
		Long: `obrafield keeps a local copy of the back office catalogs and lets you
record attendance, quality surveys and measurement bulletins with or without
a connection. Changes are pushed and the local mirror refreshed whenever the
server is reachable.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		a.loginCmd(),
		a.syncCmd(),
		a.statusCmd(),
		a.listCmd(),
		a.addCmd(),
		a.deleteCmd(),
		versionCmd(),
	)
	return root
}
