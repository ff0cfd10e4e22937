package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/shutdown"
	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"

	"github.com/flanksource/claude-history/history"
)

var (
	version   = "dev"
	commit    = "unknown"
	date      = "unknown"
	claudeDir string
)

var rootCmd = &cobra.Command{
	Use:   "claude-history",
	Short: "Query Claude Code conversation history",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		clicky.Flags.UseFlags()
	},
}

func newService() *history.Service {
	if claudeDir != "" {
		return history.NewService(history.WithClaudeDir(claudeDir))
	}
	return history.NewService()
}

func init() {
	clicky.BindAllFlags(rootCmd.PersistentFlags(), "format")
	logger.Configure(logger.Flags{LogToStderr: true, Color: true})
	rootCmd.PersistentFlags().StringVar(&claudeDir, "claude-dir", "", "Claude home directory (default: $CLAUDE_HOME or ~/.claude)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("claude-history %s (commit: %s, built: %s, go: %s)\n",
				version, commit, date, runtime.Version())
		},
	})
}

func main() {
	defer shutdown.RecoverAndShutdown()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
