package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/probe"
)

// ProbeCmd waits for a TCP port, for scripts and health checks.
func ProbeCmd() *cobra.Command {
	var (
		host    string
		port    int
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Wait until a TCP port accepts connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == 0 {
				port = ServerConfig.Server.Port
			}
			p := probe.New()
			p.Interval = ServerConfig.Supervisor.ProbeInterval
			if err := p.WaitForReady(cmd.Context(), host, port, timeout); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s:%d is accepting connections\n", host, port)
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "host to probe")
	cmd.Flags().IntVar(&port, "port", 0, "port to probe (default: configured backend port)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall timeout")
	cmd.SilenceUsage = true
	return cmd
}
