package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/server"
	"github.com/Pavarotty7/Prompt-Metal-sub001/internal/svc"
)

// ServeCmd creates the serve command (backend only). The desktop host runs
// this as its child process.
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the backend server only",
		Long:  `Start the PromptMetal HTTP backend: Google OAuth, Drive backup endpoints and the web UI.`,
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}
}

func runServe() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svcCtx, err := svc.NewServiceContext(*ServerConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
	svcCtx.Version = AppVersion

	if err := server.Run(ctx, *ServerConfig, server.ServerOptions{SvcCtx: svcCtx}); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
