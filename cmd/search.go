package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/spiffcs/repofinder/config"
	"github.com/spiffcs/repofinder/internal/assembler"
	"github.com/spiffcs/repofinder/internal/duration"
	"github.com/spiffcs/repofinder/internal/ghclient"
	"github.com/spiffcs/repofinder/internal/log"
	"github.com/spiffcs/repofinder/internal/model"
	"github.com/spiffcs/repofinder/internal/output"
	"github.com/spiffcs/repofinder/internal/tui"
)

// searchRuntime bundles TUI-related state that's threaded through the search command.
type searchRuntime struct {
	useTUI  bool
	events  chan tui.Event
	tuiDone chan error
}

// startTUI initializes and starts the TUI goroutine if TUI mode is enabled.
// Quitting the TUI early cancels the search through cancel.
func (rt *searchRuntime) startTUI(cancel context.CancelFunc) {
	if !rt.useTUI {
		return
	}
	rt.events = make(chan tui.Event, 100)
	rt.tuiDone = make(chan error, 1)
	go func() {
		err := tui.Run(rt.events)
		cancel()
		rt.tuiDone <- err
	}()
}

// close closes the event channel and waits for the TUI to finish.
func (rt *searchRuntime) close() {
	if rt.events == nil {
		return
	}
	close(rt.events)
	<-rt.tuiDone
	rt.events = nil
}

// NewCmdSearch creates the search command.
func NewCmdSearch(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <description...>",
		Short: "Find GitHub repositories matching a description (same as root repofinder)",
		Long: `Turns a free-text description of what you need into GitHub searches,
merges in model recommendations, and ranks the repositories found by
freshness, activity and documentation.`,
		Example: `  repofinder search "a simple, fast python web crawler"
  repofinder search "我想要一个简单快速的Python爬虫" -o json
  repofinder search "terminal ui library" --min-stars 500 --pushed-within 1y`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args, opts)
		},
	}

	addSearchFlags(cmd, opts)
	return cmd
}

// addSearchFlags adds the search-specific flags to a command.
func addSearchFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Output format (table, json, markdown)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", 0, "Maximum number of repositories to show (default from config, 10)")
	cmd.Flags().IntVar(&opts.PerPage, "per-page", 0, "Repositories requested per GitHub search (default from config, 12)")
	cmd.Flags().StringVar(&opts.PushedWithin, "pushed-within", "", "Only repositories pushed within this window (e.g., 90, 6mo, 2y; 0 disables)")
	cmd.Flags().IntVar(&opts.MinStars, "min-stars", 0, "Minimum star count")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "GitHub sort order (best, stars, forks, updated)")
	cmd.Flags().StringArrayVar(&opts.Filters, "filter", nil, "Extra GitHub qualifier, repeatable (e.g., license:mit)")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Bypass the response cache")
	cmd.Flags().BoolVar(&opts.Stream, "stream", false, "Print repositories as soon as they are scored")
	cmd.Flags().BoolVar(&opts.NoName, "no-name", false, "Do not match keywords against repository names")
	cmd.Flags().BoolVar(&opts.NoDescription, "no-description", false, "Do not match keywords against descriptions")
	cmd.Flags().BoolVar(&opts.NoReadme, "no-readme", false, "Do not match keywords against READMEs")
	cmd.Flags().BoolVar(&opts.NoTopics, "no-topics", false, "Do not add topic qualifiers")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")

	// TUI flag with tri-state: nil = auto, true = force, false = disable
	cmd.Flags().Var(newTUIFlag(opts), "tui", "Enable/disable TUI progress (default: auto-detect)")

	// Profiling flags
	cmd.Flags().StringVar(&opts.CPUProfile, "cpuprofile", "", "Write CPU profile to file")
	cmd.Flags().StringVar(&opts.MemProfile, "memprofile", "", "Write memory profile to file")
	cmd.Flags().StringVar(&opts.Trace, "trace", "", "Write execution trace to file")
}

func runSearch(cmd *cobra.Command, args []string, opts *Options) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	format := opts.Format
	if format == "" {
		format = settings.DefaultFormat
	}
	outFormat, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	if opts.Stream && outFormat == output.FormatMarkdown {
		return errors.New("markdown output is not supported with --stream")
	}

	req, err := buildRequest(strings.Join(args, " "), opts, settings.SearchDefaults(), cmd.Flags())
	if err != nil {
		return err
	}

	// Setup
	rt, cleanup, err := setupRuntime(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	svc, err := newServices(settings)
	if err != nil {
		return err
	}

	if opts.Stream {
		return streamSearch(ctx, svc.assembler, req, outFormat, os.Stdout, os.Stderr)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	rt.startTUI(cancel)

	tracker := tui.NewTracker(rt.events)
	tracker.Start()
	resp, err := svc.assembler.SearchWithProgress(ctx, req, tracker.Emit)
	reportRateLimit(rt, svc.github.RateLimitStatus())
	rt.close()
	if err != nil {
		return err
	}

	log.Info("search finished", "results", len(resp.Results))
	return output.NewFormatter(outFormat).Format(resp, os.Stdout)
}

// setupRuntime starts profiling, configures logging and decides on TUI mode.
func setupRuntime(opts *Options) (*searchRuntime, func(), error) {
	profiler := NewProfiler(opts.CPUProfile, opts.MemProfile, opts.Trace)
	if err := profiler.Start(); err != nil {
		return nil, nil, err
	}

	useTUI := !opts.Stream && shouldUseTUI(opts)

	// Initialize logging - suppress logs during TUI to avoid interleaving with display
	if useTUI {
		log.Initialize(opts.Verbosity, io.Discard)
	} else {
		log.Initialize(opts.Verbosity, os.Stderr)
	}

	return &searchRuntime{useTUI: useTUI}, profiler.Stop, nil
}

// buildRequest applies flags that were explicitly set on top of the
// configured defaults and validates the result.
func buildRequest(query string, opts *Options, defaults model.SearchRequest, flags *pflag.FlagSet) (model.SearchRequest, error) {
	req := defaults
	req.Query = query
	req.UseCache = !opts.NoCache
	req.IncludeName = !opts.NoName
	req.IncludeDescription = !opts.NoDescription
	req.IncludeReadme = !opts.NoReadme
	req.IncludeTopics = !opts.NoTopics
	req.Filters = opts.Filters

	if flags.Changed("limit") {
		req.Limit = opts.Limit
	}
	if flags.Changed("per-page") {
		req.PerPage = opts.PerPage
	}
	if flags.Changed("min-stars") {
		req.MinStars = opts.MinStars
	}
	if flags.Changed("sort") {
		req.Sort = opts.Sort
	}
	if flags.Changed("pushed-within") {
		days, err := duration.Days(opts.PushedWithin)
		if err != nil {
			return model.SearchRequest{}, fmt.Errorf("invalid --pushed-within: %w", err)
		}
		req.PushedWithinDays = days
	}

	if err := req.Validate(); err != nil {
		return model.SearchRequest{}, err
	}
	return req, nil
}

// streamLine is one line of --stream -o json output.
type streamLine struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// streamSearch prints pipeline events as they happen. Items go to out,
// progress and recoverable errors to errOut.
func streamSearch(ctx context.Context, a *assembler.Assembler, req model.SearchRequest, format output.Format, out, errOut io.Writer) error {
	emit := func(e assembler.Event) error {
		if format == output.FormatJSON {
			return output.WriteJSONLine(out, streamLine{Event: string(e.Kind), Data: e.Data})
		}

		switch data := e.Data.(type) {
		case assembler.IntentData:
			fmt.Fprintf(errOut, "Keywords: %s\n", strings.Join(data.Keywords, ", "))
		case assembler.DebugQueryData:
			log.Debug("github query", "q", data.GitHubQuery)
		case model.RepoResult:
			_, err := fmt.Fprintln(out, output.FormatItem(data))
			return err
		case assembler.ErrorData:
			fmt.Fprintf(errOut, "! %s: %s\n", data.Stage, data.Detail)
		case assembler.DoneData:
			fmt.Fprintf(errOut, "%d repositories\n", data.Count)
		}
		return nil
	}
	return a.Stream(ctx, req, emit)
}

// reportRateLimit surfaces an exhausted GitHub rate limit.
func reportRateLimit(rt *searchRuntime, status ghclient.RateLimitStatus) {
	if !status.Limited {
		return
	}
	if rt.events != nil {
		tui.SendEvent(rt.events, tui.RateLimitEvent{Limited: true, ResetAt: status.ResetAt})
		return
	}
	log.Warn("GitHub rate limit exhausted", "resets_at", status.ResetAt)
}
