// Package catalogimporter loads ability and item definitions from JSON files
// into the encounter catalog store.
package catalogimporter

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/skirmish/internal/services/encounter/domain/catalog"
	"github.com/louisbranch/skirmish/internal/services/encounter/storage"
	storagesqlite "github.com/louisbranch/skirmish/internal/services/encounter/storage/sqlite"
)

const (
	abilitiesFile = "abilities.json"
	itemsFile     = "items.json"
)

// Config holds configuration for the catalog importer.
type Config struct {
	Dir    string
	DBPath string
	DryRun bool
}

// ParseConfig parses CLI flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{
		DBPath: filepath.Join("data", "skirmish.db"),
	}

	fs.StringVar(&cfg.Dir, "dir", "", "directory containing abilities.json and items.json")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "encounter database path")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "validate without writing to the database")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.Dir) == "" {
		return Config{}, errors.New("dir is required")
	}
	return cfg, nil
}

// Run executes the importer using the provided Config.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = io.Discard
	}

	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return errors.New("dir is required")
	}

	payloads, err := readPayloads(dir)
	if err != nil {
		return err
	}
	if len(payloads.Abilities) == 0 && len(payloads.Items) == 0 {
		return fmt.Errorf("no catalog definitions found in %s", dir)
	}
	// Building the catalog validates every definition and rejects duplicates
	// before anything is written.
	if _, err := catalog.New(payloads.Abilities, payloads.Items); err != nil {
		return fmt.Errorf("validate catalog: %w", err)
	}

	if cfg.DryRun {
		_, err = fmt.Fprintf(out, "validated %d abilities and %d items\n", len(payloads.Abilities), len(payloads.Items))
		return err
	}

	store, err := storagesqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open catalog store: %w", err)
	}
	defer store.Close()

	if err := upsert(ctx, store, payloads); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "imported %d abilities and %d items into %s\n", len(payloads.Abilities), len(payloads.Items), cfg.DBPath)
	return err
}

type payloads struct {
	Abilities []catalog.Ability
	Items     []catalog.Item
}

func readPayloads(dir string) (payloads, error) {
	var p payloads
	abilities, err := readJSON[[]catalog.Ability](dir, abilitiesFile)
	if err != nil {
		return p, err
	}
	if abilities != nil {
		p.Abilities = *abilities
	}
	items, err := readJSON[[]catalog.Item](dir, itemsFile)
	if err != nil {
		return p, err
	}
	if items != nil {
		p.Items = *items
	}
	return p, nil
}

// readJSON decodes name under dir. A missing file yields nil.
func readJSON[T any](dir string, name string) (*T, error) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return &value, nil
}

func upsert(ctx context.Context, store storage.CatalogStore, p payloads) error {
	if store == nil {
		return fmt.Errorf("catalog store is required")
	}
	for _, ability := range p.Abilities {
		if err := store.PutAbility(ctx, ability); err != nil {
			return fmt.Errorf("put ability %s: %w", ability.ID, err)
		}
	}
	for _, item := range p.Items {
		if err := store.PutItem(ctx, item); err != nil {
			return fmt.Errorf("put item %s: %w", item.ID, err)
		}
	}
	return nil
}
