// Package encounter parses encounter command flags and runs simulations.
package encounter

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	entrypoint "github.com/louisbranch/skirmish/internal/platform/cmd"
	"github.com/louisbranch/skirmish/internal/platform/timeouts"
	"github.com/louisbranch/skirmish/internal/services/encounter/app"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/catalog"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/encounter"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/timeline"
	"github.com/louisbranch/skirmish/internal/services/encounter/storage"
	storagesqlite "github.com/louisbranch/skirmish/internal/services/encounter/storage/sqlite"
	"github.com/louisbranch/skirmish/internal/services/encounter/transport/feed"
)

// Config holds encounter command configuration.
type Config struct {
	Matchup                string        `env:"MATCHUP"`
	DBPath                 string        `env:"DB_PATH"`
	Seed                   int64         `env:"SEED"`
	Runs                   int           `env:"RUNS"                      envDefault:"1"`
	FeedAddr               string        `env:"FEED_ADDR"`
	FeedWait               time.Duration `env:"FEED_WAIT"`
	FeedOrigins            []string      `env:"FEED_ORIGINS"`
	MaxTurns               int           `env:"MAX_TURNS"`
	Lookahead              int           `env:"LOOKAHEAD"`
	Strict                 bool          `env:"STRICT"`
	RegenerateOnStatChange bool          `env:"REGENERATE_ON_STAT_CHANGE"`
	Verbose                bool          `env:"VERBOSE"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Matchup, "matchup", cfg.Matchup, "path to a JSON file with primary and opponent actors")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "encounter database path (empty uses the built-in catalog and stores nothing)")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed (0 draws a fresh seed)")
	fs.IntVar(&cfg.Runs, "runs", cfg.Runs, "number of encounters to simulate")
	fs.StringVar(&cfg.FeedAddr, "feed-addr", cfg.FeedAddr, "serve a websocket event feed on this address")
	fs.DurationVar(&cfg.FeedWait, "feed-wait", cfg.FeedWait, "wait this long for feed subscribers before simulating")
	fs.IntVar(&cfg.MaxTurns, "max-turns", cfg.MaxTurns, "turn limit (0 uses the default)")
	fs.IntVar(&cfg.Lookahead, "lookahead", cfg.Lookahead, "window regeneration lookahead (0 uses the default)")
	fs.BoolVar(&cfg.Strict, "strict", cfg.Strict, "fail on ledger invariant violations")
	fs.BoolVar(&cfg.RegenerateOnStatChange, "regenerate-on-stat-change", cfg.RegenerateOnStatChange, "rebuild the action window as soon as cadence stats change")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "log every resolved event")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.Matchup) == "" {
		return Config{}, errors.New("matchup is required")
	}
	if cfg.Runs <= 0 {
		return Config{}, errors.New("runs must be greater than zero")
	}
	return cfg, nil
}

// Matchup is the JSON shape of the -matchup file.
type Matchup struct {
	Primary  encounter.Actor `json:"primary"`
	Opponent encounter.Actor `json:"opponent"`
}

// LoadMatchup reads a matchup file.
func LoadMatchup(path string) (Matchup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Matchup{}, fmt.Errorf("read matchup: %w", err)
	}
	var m Matchup
	if err := json.Unmarshal(data, &m); err != nil {
		return Matchup{}, fmt.Errorf("decode matchup: %w", err)
	}
	return m, nil
}

// Run starts the encounter command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceEncounter, func(ctx context.Context) error {
		return run(ctx, cfg, out, errOut)
	})
}

func run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	logger := entrypoint.NewLogger(entrypoint.ServiceEncounter, errOut)

	matchup, err := LoadMatchup(cfg.Matchup)
	if err != nil {
		return err
	}

	opts := []app.Option{app.WithLogger(logger), app.WithVerbose(cfg.Verbose)}
	cat, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("load default catalog: %w", err)
	}
	if cfg.DBPath != "" {
		store, err := storagesqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open encounter store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Printf("close encounter store: %v", err)
			}
		}()
		stored, err := store.LoadCatalog(ctx)
		switch {
		case err == nil:
			cat = stored
		case errors.Is(err, storage.ErrNotFound):
			logger.Printf("catalog store is empty, using built-in catalog")
		default:
			return fmt.Errorf("load catalog: %w", err)
		}
		opts = append(opts, app.WithStore(store))
	}

	if cfg.FeedAddr != "" {
		hub := feed.NewHub(feed.Config{Logger: logger, AllowedOrigins: cfg.FeedOrigins})
		defer hub.Close()
		stop, err := serveFeed(cfg.FeedAddr, hub, logger)
		if err != nil {
			return err
		}
		defer stop()
		opts = append(opts, app.WithSink(hub))
		if cfg.FeedWait > 0 {
			logger.Printf("waiting %s for feed subscribers", cfg.FeedWait)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.FeedWait):
			}
		}
	}

	sim, err := app.NewSimulator(cat, encounter.Config{
		MaxTurns:               cfg.MaxTurns,
		Lookahead:              cfg.Lookahead,
		Strict:                 cfg.Strict,
		RegenerateOnStatChange: cfg.RegenerateOnStatChange,
	}, opts...)
	if err != nil {
		return err
	}

	printer := message.NewPrinter(language.English)
	if cfg.Runs == 1 {
		report, err := sim.Run(ctx, cfg.Seed, matchup.Primary, matchup.Opponent)
		if err != nil {
			return err
		}
		return writeReport(printer, out, report)
	}

	summary, err := sim.RunBatch(ctx, cfg.Runs, cfg.Seed, matchup.Primary, matchup.Opponent)
	if err != nil {
		return err
	}
	return writeSummary(printer, out, summary)
}

func writeReport(p *message.Printer, out io.Writer, report app.Report) error {
	if _, err := fmt.Fprintf(out, "encounter %s (seed %d): %s vs %s\n", report.ID, report.Seed, report.Primary, report.Opponent); err != nil {
		return err
	}
	for _, ev := range report.Events {
		if _, err := fmt.Fprintln(out, app.Describe(ev)); err != nil {
			return err
		}
	}
	if _, err := p.Fprintf(out, "%s after %d events\n", app.DescribeResult(report.Result), len(report.Events)); err != nil {
		return err
	}
	for _, w := range report.Warnings() {
		if _, err := fmt.Fprintf(out, "warning: %s\n", w); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(p *message.Printer, out io.Writer, s app.BatchSummary) error {
	if _, err := fmt.Fprintf(out, "seed %d\n", s.FirstSeed); err != nil {
		return err
	}
	_, err := p.Fprintf(out,
		"%d runs\nprimary wins %d (%.1f%%)\nopponent wins %d (%.1f%%)\ndraws %d, fled %d, turn limit %d\naverage %.2f turns, %.2f events\nwarnings %d\n",
		s.Runs,
		s.Wins[timeline.Primary], s.WinRate(timeline.Primary)*100,
		s.Wins[timeline.Opponent], s.WinRate(timeline.Opponent)*100,
		s.Draws, s.Fled, s.TurnLimit,
		s.AvgTurns, s.AvgEvents,
		s.Warnings,
	)
	return err
}

// serveFeed starts the websocket feed and returns a function that stops it.
func serveFeed(addr string, hub *feed.Hub, logger *log.Logger) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen feed: %w", err)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/feed", hub.Handle)
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	logger.Printf("feed listening on ws://%s/feed", listener.Addr())
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("serve feed: %v", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Printf("shutdown feed: %v", err)
		}
	}, nil
}
