package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "promptmetal %s (%s/%s)\n", AppVersion, runtime.GOOS, runtime.GOARCH)
		},
	}
}
