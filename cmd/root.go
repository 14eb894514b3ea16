package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "repofinder [description...]",
		Short: "Find GitHub repositories from a plain-language description",
		Long: `A CLI and HTTP service that turns a free-text description of the
project you need into GitHub searches, merges in language model
recommendations, and ranks the repositories it finds.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runSearch(cmd, args, opts)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Add search flags to root command so `repofinder x` and `repofinder search x` work identically
	addSearchFlags(rootCmd, opts)

	// Register subcommands
	rootCmd.AddCommand(NewCmdSearch(opts))
	rootCmd.AddCommand(NewCmdServe())
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdVersion())
	rootCmd.AddCommand(NewCmdRateLimit())

	return rootCmd
}
