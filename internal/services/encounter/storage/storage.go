// Package storage defines persistence contracts for encounter catalogs and
// encounter logs.
package storage

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/catalog"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// EncounterRecord summarizes one finished encounter.
type EncounterRecord struct {
	ID       string
	Seed     int64
	Primary  string
	Opponent string
	// Reason is the end reason name, e.g. "defeat".
	Reason string
	// Winner is "primary", "opponent" or empty for a draw.
	Winner    string
	Turns     int
	Events    int
	CreatedAt time.Time
}

// EncounterPage is one page of encounter summaries, newest first.
type EncounterPage struct {
	Encounters    []EncounterRecord
	NextPageToken string
}

// EventRecord is one persisted encounter event. Payload holds the event
// encoded as JSON so renderers can replay it without the domain types.
type EventRecord struct {
	EncounterID string
	Seq         int
	Kind        string
	Turn        int
	Time        float64
	Payload     []byte
}

// CatalogStore persists ability and item definitions.
type CatalogStore interface {
	PutAbility(ctx context.Context, ability catalog.Ability) error
	PutItem(ctx context.Context, item catalog.Item) error
	LoadCatalog(ctx context.Context) (*catalog.Catalog, error)
}

// EncounterStore persists encounter summaries and their event logs.
type EncounterStore interface {
	PutEncounter(ctx context.Context, record EncounterRecord, events []EventRecord) error
	GetEncounter(ctx context.Context, id string) (EncounterRecord, error)
	ListEncounters(ctx context.Context, pageSize int, pageToken string) (EncounterPage, error)
	ListEvents(ctx context.Context, encounterID string) ([]EventRecord, error)
}

// Store is the full encounter persistence surface.
type Store interface {
	CatalogStore
	EncounterStore
	Close() error
}
