// Package app drives encounters end to end: it owns the resolution loop,
// traces each run, and hands events to persistence and the live feed.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/skirmish/internal/core/roll"
	platformotel "github.com/louisbranch/skirmish/internal/platform/otel"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/catalog"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/encounter"
	"github.com/louisbranch/skirmish/internal/services/encounter/storage"
)

// EventSink receives every event as it is resolved.
type EventSink interface {
	Publish(encounterID string, ev encounter.Event) error
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithStore persists every finished encounter.
func WithStore(store storage.EncounterStore) Option {
	return func(s *Simulator) { s.store = store }
}

// WithSink streams events while an encounter runs.
func WithSink(sink EventSink) Option {
	return func(s *Simulator) { s.sink = sink }
}

// WithLogger sets the operational logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Simulator) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVerbose logs one line per resolved event.
func WithVerbose(verbose bool) Option {
	return func(s *Simulator) { s.verbose = verbose }
}

// WithIDGenerator replaces the encounter ID generator.
func WithIDGenerator(fn func() (string, error)) Option {
	return func(s *Simulator) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Simulator runs encounters against one catalog.
type Simulator struct {
	catalog *catalog.Catalog
	cfg     encounter.Config
	store   storage.EncounterStore
	sink    EventSink
	logger  *log.Logger
	verbose bool
	tracer  trace.Tracer
	newID   func() (string, error)
	now     func() time.Time
}

// NewSimulator builds a Simulator for cat.
func NewSimulator(cat *catalog.Catalog, cfg encounter.Config, opts ...Option) (*Simulator, error) {
	if cat == nil {
		return nil, errors.New("catalog is required")
	}
	s := &Simulator{
		catalog: cat,
		cfg:     cfg,
		logger:  log.Default(),
		tracer:  platformotel.Tracer("github.com/louisbranch/skirmish/internal/services/encounter/app"),
		newID:   newEncounterID,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// newEncounterID returns a time-ordered UUID so stored encounters list
// newest first by ID.
func newEncounterID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Report is the outcome of one simulated encounter.
type Report struct {
	ID        string
	Seed      int64
	Primary   string
	Opponent  string
	Result    encounter.Result
	Events    []encounter.Event
	Carryover encounter.Carryover
}

// Warnings returns every invariant warning raised during the run.
func (r Report) Warnings() []string {
	var out []string
	for _, ev := range r.Events {
		out = append(out, ev.Warnings...)
	}
	return append(out, r.Carryover.Warnings...)
}

// Run resolves one encounter to completion. A zero seed draws a fresh one.
func (s *Simulator) Run(ctx context.Context, seed int64, primary, opponent encounter.Actor) (Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	seed, err := roll.ResolveSeed(seed)
	if err != nil {
		return Report{}, err
	}
	id, err := s.newID()
	if err != nil {
		return Report{}, fmt.Errorf("generate encounter id: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "encounter.run", trace.WithAttributes(
		attribute.String("encounter.id", id),
		attribute.Int64("encounter.seed", seed),
		attribute.String("encounter.primary", primary.Name),
		attribute.String("encounter.opponent", opponent.Name),
	))
	defer span.End()

	report, err := s.run(ctx, id, seed, primary, opponent)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Report{}, err
	}
	span.SetAttributes(
		attribute.String("encounter.reason", report.Result.Reason.String()),
		attribute.String("encounter.winner", winnerName(report.Result)),
		attribute.Int("encounter.turns", report.Result.Turn),
		attribute.Int("encounter.events", len(report.Events)),
	)
	return report, nil
}

func (s *Simulator) run(ctx context.Context, id string, seed int64, primary, opponent encounter.Actor) (Report, error) {
	e, err := encounter.New(s.cfg, s.catalog, roll.New(seed), primary, opponent)
	if err != nil {
		return Report{}, fmt.Errorf("start encounter: %w", err)
	}
	report := Report{ID: id, Seed: seed, Primary: primary.Name, Opponent: opponent.Name}
	span := trace.SpanFromContext(ctx)

	for !e.Over() {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		next, ev, err := encounter.ResolveNext(e)
		if err != nil {
			return Report{}, fmt.Errorf("resolve event %d: %w", len(report.Events)+1, err)
		}
		e = next
		report.Events = append(report.Events, ev)

		for _, w := range ev.Warnings {
			s.logger.Printf("encounter %s turn %d: %s", id, ev.Turn, w)
			span.AddEvent("invariant.warning", trace.WithAttributes(attribute.String("warning", w)))
		}
		if s.verbose {
			s.logger.Print(Describe(ev))
		}
		if s.sink != nil {
			if err := s.sink.Publish(id, ev); err != nil {
				s.logger.Printf("publish encounter %s event %d: %v", id, ev.Seq, err)
			}
		}
	}

	report.Result, _ = e.Result()
	carry, err := encounter.Finish(e)
	if err != nil {
		return Report{}, fmt.Errorf("finish encounter: %w", err)
	}
	report.Carryover = carry

	if s.store != nil {
		if err := s.persist(ctx, report); err != nil {
			return Report{}, err
		}
	}
	return report, nil
}

func (s *Simulator) persist(ctx context.Context, report Report) error {
	events := make([]storage.EventRecord, 0, len(report.Events))
	for _, ev := range report.Events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode event %d: %w", ev.Seq, err)
		}
		events = append(events, storage.EventRecord{
			EncounterID: report.ID,
			Seq:         ev.Seq,
			Kind:        ev.Kind.String(),
			Turn:        ev.Turn,
			Time:        ev.Time,
			Payload:     payload,
		})
	}
	record := storage.EncounterRecord{
		ID:        report.ID,
		Seed:      report.Seed,
		Primary:   report.Primary,
		Opponent:  report.Opponent,
		Reason:    report.Result.Reason.String(),
		Winner:    winnerName(report.Result),
		Turns:     report.Result.Turn,
		CreatedAt: s.now(),
	}
	if err := s.store.PutEncounter(ctx, record, events); err != nil {
		return fmt.Errorf("store encounter %s: %w", report.ID, err)
	}
	return nil
}

func winnerName(r encounter.Result) string {
	if !r.Decided {
		return ""
	}
	return r.Winner.String()
}
