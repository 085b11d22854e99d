package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/garrettladley/slackgate/internal/version"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:     "slackgate",
		Short:   "Verify and route Slack Events API callbacks",
		Version: version.Get(),
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(secretsCmd())
	addDevCommands(rootCmd)

	if err := fang.Execute(context.Background(), rootCmd, fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM)); err != nil {
		os.Exit(1)
	}
}
