package cli

import (
	"github.com/spf13/cobra"

	"github.com/maadhav-codes/diff2commit/internal/version"
)

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			app.printer().Println(version.Info())
		},
	}
}
