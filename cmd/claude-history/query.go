package main

import (
	"github.com/flanksource/clicky"
	"github.com/spf13/cobra"

	"github.com/flanksource/claude-history/history"
)

var searchOpts history.SearchOptions

func init() {
	clicky.AddCommand(rootCmd, history.ProjectListOptions{}, func(history.ProjectListOptions) (any, error) {
		return newService().ListProjects()
	})

	clicky.AddCommand(rootCmd, history.SessionOptions{}, func(opts history.SessionOptions) (any, error) {
		return newService().ListSessions(opts)
	})

	clicky.AddCommand(rootCmd, history.HistoryOptions{}, func(opts history.HistoryOptions) (any, error) {
		return newService().GetConversationHistory(opts)
	})

	searchCmd := &cobra.Command{
		Use:          "search <query>",
		Short:        "Search conversation history by content",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := newService().SearchConversations(args[0], searchOpts)
			if err != nil {
				return err
			}
			clicky.MustPrint(results, clicky.FormatOptions{})
			return nil
		},
	}
	searchCmd.Flags().IntVar(&searchOpts.Limit, "limit", history.DefaultSearchLimit, "Maximum number of results to return")
	searchCmd.Flags().StringVar(&searchOpts.ProjectPath, "project", "", "Restrict to a single decoded project path")
	searchCmd.Flags().StringVar(&searchOpts.StartDate, "since", "", "Start date (YYYY-MM-DD or full ISO timestamp)")
	searchCmd.Flags().StringVar(&searchOpts.EndDate, "until", "", "End date (YYYY-MM-DD or full ISO timestamp)")
	searchCmd.Flags().StringVar(&searchOpts.Timezone, "timezone", "", "IANA timezone for date filtering")
	rootCmd.AddCommand(searchCmd)
}
