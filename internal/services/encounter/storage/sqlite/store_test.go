package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/skirmish/internal/services/encounter/domain/catalog"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/stat"
	"github.com/louisbranch/skirmish/internal/services/encounter/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "encounter.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestCloseNilStore(t *testing.T) {
	t.Parallel()

	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
}

func TestLoadCatalogEmptyReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.LoadCatalog(context.Background()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("load empty catalog error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestCatalogRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	def, err := catalog.Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	for _, a := range def.Abilities() {
		if err := store.PutAbility(ctx, a); err != nil {
			t.Fatalf("put ability %s: %v", a.ID, err)
		}
	}
	for _, it := range def.Items() {
		if err := store.PutItem(ctx, it); err != nil {
			t.Fatalf("put item %s: %v", it.ID, err)
		}
	}

	got, err := store.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if len(got.Abilities()) != len(def.Abilities()) || len(got.Items()) != len(def.Items()) {
		t.Fatalf("catalog sizes = %d/%d, want %d/%d", len(got.Abilities()), len(got.Items()), len(def.Abilities()), len(def.Items()))
	}
	bash, err := got.Ability("bash")
	if err != nil {
		t.Fatalf("ability bash: %v", err)
	}
	if bash.Stun != 0.75 || bash.Cooldown != 3 {
		t.Fatalf("bash = %+v, want stun 0.75 cooldown 3", bash)
	}
	dagger, err := got.Item("dagger")
	if err != nil {
		t.Fatalf("item dagger: %v", err)
	}
	if dagger.Stats.Get(stat.AttackSpeed) != 0.25 {
		t.Fatalf("dagger attack speed = %v, want 0.25", dagger.Stats.Get(stat.AttackSpeed))
	}
}

func TestPutAbilityReplacesDefinition(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if err := store.PutAbility(ctx, catalog.Ability{ID: "zap", Name: "Zap", Cooldown: 1, Damage: &catalog.DamageSpec{True: 5}}); err != nil {
		t.Fatalf("put ability: %v", err)
	}
	if err := store.PutAbility(ctx, catalog.Ability{ID: "zap", Name: "Zap", Cooldown: 4, Damage: &catalog.DamageSpec{True: 5}}); err != nil {
		t.Fatalf("replace ability: %v", err)
	}
	cat, err := store.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	zap, err := cat.Ability("zap")
	if err != nil {
		t.Fatalf("ability zap: %v", err)
	}
	if zap.Cooldown != 4 {
		t.Fatalf("cooldown = %d, want 4", zap.Cooldown)
	}
}

func TestPutAbilityRejectsInvalid(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	err := store.PutAbility(context.Background(), catalog.Ability{ID: "bad", Cooldown: -1})
	if !errors.Is(err, catalog.ErrInvalid) {
		t.Fatalf("put invalid ability error = %v, want %v", err, catalog.ErrInvalid)
	}
}

func TestEncounterRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)
	record := storage.EncounterRecord{
		ID:        "enc-1",
		Seed:      42,
		Primary:   "Knight",
		Opponent:  "Wolf",
		Reason:    "defeat",
		Winner:    "primary",
		Turns:     7,
		CreatedAt: now,
	}
	events := []storage.EventRecord{
		{Seq: 1, Kind: "action", Turn: 1, Time: 1, Payload: []byte(`{"seq":1}`)},
		{Seq: 2, Kind: "end", Turn: 7, Time: 7.5, Payload: []byte(`{"seq":2}`)},
	}
	if err := store.PutEncounter(ctx, record, events); err != nil {
		t.Fatalf("put encounter: %v", err)
	}

	got, err := store.GetEncounter(ctx, "enc-1")
	if err != nil {
		t.Fatalf("get encounter: %v", err)
	}
	if got.Winner != "primary" || got.Events != 2 || !got.CreatedAt.Equal(now) {
		t.Fatalf("encounter = %+v", got)
	}

	stored, err := store.ListEvents(ctx, "enc-1")
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(stored) != 2 || stored[1].Kind != "end" || string(stored[1].Payload) != `{"seq":2}` {
		t.Fatalf("events = %+v", stored)
	}
}

func TestPutEncounterDuplicate(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	record := storage.EncounterRecord{ID: "enc-dup", Reason: "turn_limit"}
	if err := store.PutEncounter(ctx, record, nil); err != nil {
		t.Fatalf("put encounter: %v", err)
	}
	if err := store.PutEncounter(ctx, record, nil); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate put error = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestPutEncounterRejectsInvalidPayload(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	events := []storage.EventRecord{{Seq: 1, Kind: "action", Payload: []byte("{")}}
	if err := store.PutEncounter(ctx, storage.EncounterRecord{ID: "enc-bad", Reason: "defeat"}, events); err == nil {
		t.Fatal("expected invalid payload error")
	}
	if _, err := store.GetEncounter(ctx, "enc-bad"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get after rollback error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestListEncountersPages(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		record := storage.EncounterRecord{ID: fmt.Sprintf("enc-%d", i), Reason: "defeat"}
		if err := store.PutEncounter(ctx, record, nil); err != nil {
			t.Fatalf("put encounter %d: %v", i, err)
		}
	}

	first, err := store.ListEncounters(ctx, 2, "")
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(first.Encounters) != 2 || first.Encounters[0].ID != "enc-3" || first.NextPageToken != "enc-2" {
		t.Fatalf("first page = %+v", first)
	}

	second, err := store.ListEncounters(ctx, 2, first.NextPageToken)
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(second.Encounters) != 1 || second.Encounters[0].ID != "enc-1" || second.NextPageToken != "" {
		t.Fatalf("second page = %+v", second)
	}
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.GetEncounter(ctx, "enc-1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("get with canceled context error = %v, want %v", err, context.Canceled)
	}
}
