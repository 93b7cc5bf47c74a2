package encounter

import (
	"bytes"
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	storagesqlite "github.com/louisbranch/skirmish/internal/services/encounter/storage/sqlite"
)

const matchupJSON = `{
  "primary": {"name": "Knight", "base": {"attack_speed": 1, "attack_damage": 60, "max_health": 300, "attack_range": 5}},
  "opponent": {"name": "Squire", "base": {"attack_speed": 1, "attack_damage": 60, "max_health": 300, "attack_range": 5}}
}`

func writeMatchup(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matchup.json")
	if err := os.WriteFile(path, []byte(matchupJSON), 0o644); err != nil {
		t.Fatalf("write matchup: %v", err)
	}
	return path
}

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("encounter", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-matchup", "duel.json"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Runs != 1 {
		t.Fatalf("runs = %d, want 1", cfg.Runs)
	}
	if cfg.Matchup != "duel.json" || cfg.Seed != 0 || cfg.FeedAddr != "" {
		t.Fatalf("config = %+v", cfg)
	}
}

func TestParseConfigReadsEnv(t *testing.T) {
	t.Setenv("SKIRMISH_MATCHUP", "env.json")
	t.Setenv("SKIRMISH_SEED", "99")
	fs := flag.NewFlagSet("encounter", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-seed", "7"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Matchup != "env.json" || cfg.Seed != 7 {
		t.Fatalf("config = %+v, want env matchup and flag seed", cfg)
	}
}

func TestParseConfigValidates(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing matchup", nil},
		{"zero runs", []string{"-matchup", "duel.json", "-runs", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("encounter", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			if _, err := ParseConfig(fs, tt.args); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadMatchup(t *testing.T) {
	m, err := LoadMatchup(writeMatchup(t))
	if err != nil {
		t.Fatalf("load matchup: %v", err)
	}
	if m.Primary.Name != "Knight" || m.Opponent.Name != "Squire" {
		t.Fatalf("matchup = %+v", m)
	}

	if _, err := LoadMatchup(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRunSingleEncounter(t *testing.T) {
	var out bytes.Buffer
	cfg := Config{Matchup: writeMatchup(t), Seed: 42, Runs: 1}
	if err := run(context.Background(), cfg, &out, io.Discard); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "encounter ") || !strings.Contains(got, "(seed 42): Knight vs Squire") {
		t.Fatalf("output = %q", got)
	}
	if !strings.Contains(got, "primary wins by defeat on turn 5") {
		t.Fatalf("output missing result: %q", got)
	}
}

func TestRunBatch(t *testing.T) {
	var out bytes.Buffer
	cfg := Config{Matchup: writeMatchup(t), Seed: 5, Runs: 3}
	if err := run(context.Background(), cfg, &out, io.Discard); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "seed 5\n3 runs\n") || !strings.Contains(got, "primary wins 3 (100.0%)") {
		t.Fatalf("output = %q", got)
	}
}

func TestRunPersistsToStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "skirmish.db")
	cfg := Config{Matchup: writeMatchup(t), Seed: 42, Runs: 1, DBPath: dbPath}
	if err := run(context.Background(), cfg, io.Discard, io.Discard); err != nil {
		t.Fatalf("run: %v", err)
	}

	store, err := storagesqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	page, err := store.ListEncounters(context.Background(), 10, "")
	if err != nil {
		t.Fatalf("list encounters: %v", err)
	}
	if len(page.Encounters) != 1 || page.Encounters[0].Seed != 42 {
		t.Fatalf("encounters = %+v", page.Encounters)
	}
}
