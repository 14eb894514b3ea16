package cmd

import (
	"fmt"
	"io"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spf13/cobra"

	"github.com/spiffcs/repofinder/config"
	"github.com/spiffcs/repofinder/internal/ghclient"
)

// NewCmdRateLimit creates the ratelimit command.
func NewCmdRateLimit() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Check GitHub API rate limit status",
		Long: `Display current GitHub API rate limit status including remaining quota and reset time.

Searches without GITHUB_TOKEN share the much lower anonymous quota.`,
	}
	cmd.AddCommand(NewCmdRateLimitStatus())
	return cmd
}

// NewCmdRateLimitStatus creates the ratelimit status subcommand.
func NewCmdRateLimitStatus() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current rate limit status",
		Long:  `Display the current GitHub API rate limit status for core, search and GraphQL APIs.`,
		RunE:  runRateLimitStatus,
	}
}

func runRateLimitStatus(cmd *cobra.Command, _ []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client, err := ghclient.NewClient(ghclient.Options{
		Token:   settings.GitHub.Token,
		BaseURL: settings.GitHub.BaseURL,
		Proxy:   settings.GitHub.Proxy,
		Timeout: settings.GitHub.Timeout,
	})
	if err != nil {
		return err
	}

	limits, err := client.RateLimits(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if client.Authenticated() {
		fmt.Fprintln(out, "GitHub API Rate Limits:")
	} else {
		fmt.Fprintln(out, "GitHub API Rate Limits (anonymous):")
	}
	fmt.Fprintln(out)
	writeRate(out, "Core API:", limits.Core, time.Now())
	writeRate(out, "Search API:", limits.Search, time.Now())
	writeRate(out, "GraphQL:", limits.GraphQL, time.Now())
	return nil
}

// writeRate prints one quota line; nil rates are skipped.
func writeRate(w io.Writer, label string, rate *gh.Rate, now time.Time) {
	if rate == nil {
		return
	}
	resetIn := rate.Reset.Time.Sub(now).Round(time.Second)
	if resetIn < 0 {
		resetIn = 0
	}
	fmt.Fprintf(w, "%-11s %d/%d remaining (resets in %s)\n", label, rate.Remaining, rate.Limit, resetIn)
}
