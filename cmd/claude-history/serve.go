package main

import (
	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"

	"github.com/flanksource/claude-history/mcp"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:          "serve",
		Short:        "Serve conversation history over MCP on stdio",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Infof("%s %s started", mcp.ServerName, version)
			return mcp.NewServer(newService(), version).ServeStdio()
		},
	})
}
