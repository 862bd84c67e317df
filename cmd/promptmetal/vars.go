package cli

import (
	"github.com/spf13/cobra"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/config"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/logging"
)

// AppVersion is set at build time with -ldflags "-X ...cli.AppVersion=v1.2.0".
var AppVersion = "dev"

// Shared CLI flags (used across multiple command files)
var (
	headless bool
	devMode  bool
	verbose  bool
)

// ServerConfig holds the loaded configuration (set by main)
var ServerConfig *config.Config

// SetupRootCmd configures the root command with all subcommands and flags
func SetupRootCmd(c *config.Config) *cobra.Command {
	ServerConfig = c

	rootCmd := &cobra.Command{
		Use:   "promptmetal",
		Short: "PromptMetal - expense tracking desktop app",
		Long: `PromptMetal runs its web UI in a native window backed by a local server.

Just type 'promptmetal' to start the backend and open the window.
Use --headless to open the UI in the system browser instead.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := c.Log.Level
			if verbose {
				level = "debug"
			}
			logging.Init(cmd.ErrOrStderr(), level, c.Log.Format)
		},
		Run: func(cmd *cobra.Command, args []string) {
			if headless {
				RunAll()
			} else {
				RunDesktop()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Root-only flags
	rootCmd.Flags().BoolVar(&headless, "headless", false, "run without native window (open the UI in the system browser)")
	rootCmd.Flags().BoolVar(&devMode, "dev", false, "run the backend from source with the dev command")

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(ProbeCmd())
	rootCmd.AddCommand(VersionCmd())

	return rootCmd
}
