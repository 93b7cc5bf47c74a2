// Package scenario parses scenario command flags and runs Lua scenario files.
package scenario

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	entrypoint "github.com/louisbranch/skirmish/internal/platform/cmd"
	"github.com/louisbranch/skirmish/internal/platform/timeouts"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/catalog"
	"github.com/louisbranch/skirmish/internal/services/encounter/storage"
	storagesqlite "github.com/louisbranch/skirmish/internal/services/encounter/storage/sqlite"
	"github.com/louisbranch/skirmish/internal/tools/scenario"
)

// Config holds scenario command configuration.
type Config struct {
	Scenario   string        `env:"SCENARIO_FILE"`
	DBPath     string        `env:"DB_PATH"`
	Assertions string        `env:"SCENARIO_ASSERT"  envDefault:"strict"`
	Verbose    bool          `env:"SCENARIO_VERBOSE"`
	Timeout    time.Duration `env:"SCENARIO_TIMEOUT"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = timeouts.ScenarioStep
	}

	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to scenario lua file")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "load the catalog from this database instead of the built-in one")
	fs.StringVar(&cfg.Assertions, "assert", cfg.Assertions, "assertion mode: strict fails, log only reports")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per step")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if _, err := scenario.ParseAssertionMode(cfg.Assertions); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the scenario command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Scenario == "" {
		return errors.New("scenario path is required")
	}
	mode, err := scenario.ParseAssertionMode(cfg.Assertions)
	if err != nil {
		return err
	}

	cat, err := loadCatalog(ctx, cfg.DBPath)
	if err != nil {
		return err
	}

	logger := entrypoint.NewLogger(entrypoint.ServiceScenario, errOut)
	runner, err := scenario.NewRunner(scenario.Config{
		Catalog:    cat,
		Timeout:    cfg.Timeout,
		Assertions: mode,
		Verbose:    cfg.Verbose,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	loaded, err := scenario.LoadScenarioFromFile(cfg.Scenario)
	if err != nil {
		return err
	}
	if err := runner.RunScenario(ctx, loaded); err != nil {
		return err
	}
	if failures := runner.Failures(); failures > 0 {
		_, err = fmt.Fprintf(out, "scenario %s: %d expectation(s) failed\n", loaded.Name, failures)
		return err
	}
	_, err = fmt.Fprintf(out, "scenario %s: ok\n", loaded.Name)
	return err
}

// loadCatalog returns the stored catalog, or nil for the built-in one.
func loadCatalog(ctx context.Context, dbPath string) (*catalog.Catalog, error) {
	if dbPath == "" {
		return nil, nil
	}
	store, err := storagesqlite.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog store: %w", err)
	}
	defer store.Close()
	cat, err := store.LoadCatalog(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}
