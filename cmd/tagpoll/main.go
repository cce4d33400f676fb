// Package main provides the tagpoll CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	tagpoll "github.com/anatolykoptev/go-tagpoll"
	"github.com/anatolykoptev/go-tagpoll/internal/display"
	"github.com/anatolykoptev/go-tagpoll/internal/feed"
	"github.com/anatolykoptev/go-tagpoll/internal/store"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	hashtag   string
	proxy     string
	apiURL    string
	envFile   string
	logLevel  string
	plainHTTP bool
}

// newRootCmd creates the root command for the tagpoll CLI.
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "tagpoll",
		Short:         "Poll recent posts for a hashtag",
		Long:          "tagpoll polls the X/Twitter v2 recent search endpoint for posts matching a hashtag (reposts excluded).",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd, opts)
		},
	}
	rootCmd.SetVersionTemplate("tagpoll version {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.hashtag, "hashtag", tagpoll.DefaultHashtag, "Hashtag to search for")
	pf.StringVar(&opts.proxy, "proxy", "", "Proxy URL for API requests")
	pf.StringVar(&opts.apiURL, "api-url", "", "API base URL (default https://api.twitter.com)")
	pf.StringVar(&opts.envFile, "env-file", ".env", "File with TWITTER_* credentials; ignored when missing")
	pf.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.BoolVar(&opts.plainHTTP, "plain-http", false, "Use the standard Go HTTP transport instead of the browser-profile transport")

	rootCmd.AddCommand(newFetchCmd(opts))
	rootCmd.AddCommand(newSampleCmd(opts))
	rootCmd.AddCommand(newPollCmd(opts))

	return rootCmd
}

// setup loads the env file and installs the logger.
func setup(cmd *cobra.Command, opts *globalOptions) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", opts.logLevel, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", opts.envFile, err)
		}
	}
	return nil
}

// newFetcher builds a Fetcher from the environment and the global flags.
func newFetcher(opts *globalOptions) (*tagpoll.Fetcher, error) {
	cfg := tagpoll.ClientConfig{
		Hashtag: opts.hashtag,
		BaseURL: opts.apiURL,
		Proxy:   opts.proxy,
	}
	if opts.plainHTTP {
		cfg.Transport = http.DefaultTransport
	}
	return tagpoll.NewFetcherFromEnv(cfg)
}

// render writes records in the requested format.
func render(w io.Writer, hashtag string, records []tagpoll.Record, format string) error {
	switch format {
	case "text":
		_, err := fmt.Fprint(w, display.NewTerminalFormatter().FormatRecords(records))
		return err
	case "json":
		return display.WriteJSON(w, records)
	case "atom", "rss":
		out, err := feed.Build(hashtag, records, feed.Format(format), time.Now())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, out)
		return err
	}
	return fmt.Errorf("invalid format %q", format)
}

// newFetchCmd creates the fetch subcommand.
func newFetchCmd(opts *globalOptions) *cobra.Command {
	var count int
	var format string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch recent posts once",
		Long:  "Fetch up to --count recent posts matching the hashtag and print them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := newFetcher(opts)
			if err != nil {
				return err
			}
			records := f.FetchRecent(cmd.Context(), count)
			return render(cmd.OutOrStdout(), f.Hashtag(), records, format)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "Maximum number of posts")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json, atom, rss)")

	return cmd
}

// newSampleCmd creates the sample subcommand.
func newSampleCmd(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print the most recent post",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("invalid format %q: sample supports text and json", format)
			}

			f, err := newFetcher(opts)
			if err != nil {
				return err
			}
			rec, ok := f.Sample(cmd.Context())
			if !ok {
				return render(cmd.OutOrStdout(), f.Hashtag(), nil, format)
			}
			return render(cmd.OutOrStdout(), f.Hashtag(), []tagpoll.Record{rec}, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json)")

	return cmd
}

// newPollCmd creates the poll subcommand.
func newPollCmd(opts *globalOptions) *cobra.Command {
	var (
		count      int
		interval   time.Duration
		dbPath     string
		format     string
		iterations int
	)

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Poll repeatedly and print posts not seen before",
		Long:  "Poll the recent search endpoint every --interval and print posts that are not yet in the --db store.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("invalid format %q: poll supports text and json", format)
			}
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive")
			}

			f, err := newFetcher(opts)
			if err != nil {
				return err
			}
			st, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			return poll(cmd.Context(), cmd.OutOrStdout(), f, st, pollOptions{
				count:      count,
				interval:   interval,
				format:     format,
				iterations: iterations,
			})
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "Maximum number of posts per poll")
	cmd.Flags().DurationVarP(&interval, "interval", "i", 30*time.Second, "Delay between polls")
	cmd.Flags().StringVar(&dbPath, "db", "tagpoll.db", "SQLite file remembering seen posts")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json)")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "Stop after this many polls (0 = until interrupted)")

	return cmd
}

type pollOptions struct {
	count      int
	interval   time.Duration
	format     string
	iterations int
}

// poll runs the fetch/dedupe/print loop until ctx is done or the iteration
// budget is spent.
func poll(ctx context.Context, w io.Writer, f *tagpoll.Fetcher, st *store.Store, o pollOptions) error {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for i := 1; ; i++ {
		records := f.FetchRecent(ctx, o.count)
		fresh, err := st.Remember(ctx, f.Hashtag(), records)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("remember posts: %w", err)
		}
		slog.Debug("poll", slog.Int("iteration", i), slog.Int("fetched", len(records)), slog.Int("new", len(fresh)))
		if len(fresh) > 0 {
			if err := render(w, f.Hashtag(), fresh, o.format); err != nil {
				return err
			}
		}

		if o.iterations > 0 && i >= o.iterations {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
