// Package sqlite provides a SQLite-backed encounter storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/skirmish/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/catalog"
	"github.com/louisbranch/skirmish/internal/services/encounter/storage"
	"github.com/louisbranch/skirmish/internal/services/encounter/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists catalogs and encounter logs in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite encounter store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// PutAbility inserts or replaces one ability definition.
func (s *Store) PutAbility(ctx context.Context, ability catalog.Ability) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := ability.Validate(); err != nil {
		return err
	}
	definition, err := json.Marshal(ability)
	if err != nil {
		return fmt.Errorf("encode ability %s: %w", ability.ID, err)
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO catalog_abilities (id, name, definition, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   definition = excluded.definition,
		   updated_at = excluded.updated_at`,
		ability.ID,
		ability.Name,
		string(definition),
		toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("put ability %s: %w", ability.ID, err)
	}
	return nil
}

// PutItem inserts or replaces one item definition.
func (s *Store) PutItem(ctx context.Context, item catalog.Item) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := item.Validate(); err != nil {
		return err
	}
	definition, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode item %s: %w", item.ID, err)
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO catalog_items (id, name, consumable, definition, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   consumable = excluded.consumable,
		   definition = excluded.definition,
		   updated_at = excluded.updated_at`,
		item.ID,
		item.Name,
		boolToInt(item.Consumable),
		string(definition),
		toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("put item %s: %w", item.ID, err)
	}
	return nil
}

// LoadCatalog builds a catalog from every stored definition. An empty store
// yields storage.ErrNotFound so callers can fall back to a default catalog.
func (s *Store) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var abilities []catalog.Ability
	if err := s.eachDefinition(ctx, "SELECT definition FROM catalog_abilities ORDER BY id", func(data []byte) error {
		var a catalog.Ability
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		abilities = append(abilities, a)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load abilities: %w", err)
	}
	var items []catalog.Item
	if err := s.eachDefinition(ctx, "SELECT definition FROM catalog_items ORDER BY id", func(data []byte) error {
		var it catalog.Item
		if err := json.Unmarshal(data, &it); err != nil {
			return err
		}
		items = append(items, it)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	if len(abilities) == 0 && len(items) == 0 {
		return nil, storage.ErrNotFound
	}
	return catalog.New(abilities, items)
}

func (s *Store) eachDefinition(ctx context.Context, query string, fn func([]byte) error) error {
	rows, err := s.sqlDB.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var definition string
		if err := rows.Scan(&definition); err != nil {
			return err
		}
		if err := fn([]byte(definition)); err != nil {
			return err
		}
	}
	return rows.Err()
}

// PutEncounter stores a finished encounter and its events in one transaction.
func (s *Store) PutEncounter(ctx context.Context, record storage.EncounterRecord, events []storage.EventRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id := strings.TrimSpace(record.ID)
	if id == "" {
		return fmt.Errorf("encounter id is required")
	}
	createdAt := record.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put encounter: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO encounters (
		   id,
		   seed,
		   primary_name,
		   opponent_name,
		   reason,
		   winner,
		   turns,
		   event_count,
		   created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		record.Seed,
		record.Primary,
		record.Opponent,
		record.Reason,
		record.Winner,
		record.Turns,
		len(events),
		toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put encounter: %w", err)
	}

	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO encounter_events (encounter_id, seq, kind, turn, time, payload)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare events: %w", err)
	}
	defer stmt.Close()
	for _, ev := range events {
		if !json.Valid(ev.Payload) {
			return fmt.Errorf("event %d payload is not valid json", ev.Seq)
		}
		if _, err := stmt.ExecContext(ctx, id, ev.Seq, ev.Kind, ev.Turn, ev.Time, string(ev.Payload)); err != nil {
			return fmt.Errorf("put event %d: %w", ev.Seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit encounter: %w", err)
	}
	return nil
}

// GetEncounter returns one encounter summary by ID.
func (s *Store) GetEncounter(ctx context.Context, id string) (storage.EncounterRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.EncounterRecord{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.EncounterRecord{}, fmt.Errorf("encounter id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, seed, primary_name, opponent_name, reason, winner,
		        turns, event_count, created_at
		   FROM encounters
		  WHERE id = ?`,
		id,
	)
	record, err := scanEncounter(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.EncounterRecord{}, storage.ErrNotFound
		}
		return storage.EncounterRecord{}, fmt.Errorf("get encounter: %w", err)
	}
	return record, nil
}

// ListEncounters returns one page of encounter summaries ordered by
// descending ID. Time-ordered IDs make that newest first.
func (s *Store) ListEncounters(ctx context.Context, pageSize int, pageToken string) (storage.EncounterPage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.EncounterPage{}, err
	}
	if pageSize <= 0 {
		return storage.EncounterPage{}, fmt.Errorf("page size must be greater than zero")
	}
	pageToken = strings.TrimSpace(pageToken)

	page := storage.EncounterPage{
		Encounters: make([]storage.EncounterRecord, 0, pageSize),
	}

	var (
		rows *sql.Rows
		err  error
	)
	if pageToken == "" {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT id, seed, primary_name, opponent_name, reason, winner,
			        turns, event_count, created_at
			   FROM encounters
			  ORDER BY id DESC
			  LIMIT ?`,
			pageSize+1,
		)
	} else {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT id, seed, primary_name, opponent_name, reason, winner,
			        turns, event_count, created_at
			   FROM encounters
			  WHERE id < ?
			  ORDER BY id DESC
			  LIMIT ?`,
			pageToken,
			pageSize+1,
		)
	}
	if err != nil {
		return storage.EncounterPage{}, fmt.Errorf("list encounters: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		record, err := scanEncounter(rows)
		if err != nil {
			return storage.EncounterPage{}, fmt.Errorf("list encounters: %w", err)
		}
		page.Encounters = append(page.Encounters, record)
	}
	if err := rows.Err(); err != nil {
		return storage.EncounterPage{}, fmt.Errorf("list encounters: %w", err)
	}
	if len(page.Encounters) > pageSize {
		page.NextPageToken = page.Encounters[pageSize-1].ID
		page.Encounters = page.Encounters[:pageSize]
	}
	return page, nil
}

// ListEvents returns the events of one encounter in sequence order.
func (s *Store) ListEvents(ctx context.Context, encounterID string) ([]storage.EventRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	encounterID = strings.TrimSpace(encounterID)
	if encounterID == "" {
		return nil, fmt.Errorf("encounter id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT encounter_id, seq, kind, turn, time, payload
		   FROM encounter_events
		  WHERE encounter_id = ?
		  ORDER BY seq ASC`,
		encounterID,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []storage.EventRecord
	for rows.Next() {
		var ev storage.EventRecord
		var payload string
		if err := rows.Scan(&ev.EncounterID, &ev.Seq, &ev.Kind, &ev.Turn, &ev.Time, &payload); err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		ev.Payload = []byte(payload)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEncounter(row rowScanner) (storage.EncounterRecord, error) {
	var record storage.EncounterRecord
	var createdAt int64
	if err := row.Scan(
		&record.ID,
		&record.Seed,
		&record.Primary,
		&record.Opponent,
		&record.Reason,
		&record.Winner,
		&record.Turns,
		&record.Events,
		&createdAt,
	); err != nil {
		return storage.EncounterRecord{}, err
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ storage.Store = (*Store)(nil)
