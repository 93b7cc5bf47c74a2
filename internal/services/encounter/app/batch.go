package app

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/skirmish/internal/core/roll"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/encounter"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/timeline"
)

// BatchSummary aggregates repeated runs of the same matchup.
type BatchSummary struct {
	Runs      int
	FirstSeed int64
	Wins      [2]int
	Draws     int
	Fled      int
	TurnLimit int
	AvgTurns  float64
	AvgEvents float64
	Warnings  int
}

// WinRate returns the share of runs won by id.
func (b BatchSummary) WinRate(id timeline.ActorID) float64 {
	if b.Runs == 0 || !id.Valid() {
		return 0
	}
	return float64(b.Wins[id]) / float64(b.Runs)
}

// RunBatch runs the matchup n times with seeds seed, seed+1, ... A zero seed
// draws a fresh starting seed.
func (s *Simulator) RunBatch(ctx context.Context, n int, seed int64, primary, opponent encounter.Actor) (BatchSummary, error) {
	if n <= 0 {
		return BatchSummary{}, errors.New("batch size must be greater than zero")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	seed, err := roll.ResolveSeed(seed)
	if err != nil {
		return BatchSummary{}, err
	}

	ctx, span := s.tracer.Start(ctx, "encounter.batch", trace.WithAttributes(
		attribute.Int("batch.runs", n),
		attribute.Int64("batch.seed", seed),
	))
	defer span.End()

	summary := BatchSummary{FirstSeed: seed}
	var turns, events int
	for i := 0; i < n; i++ {
		report, err := s.Run(ctx, seed+int64(i), primary, opponent)
		if err != nil {
			span.RecordError(err)
			return BatchSummary{}, err
		}
		summary.Runs++
		turns += report.Result.Turn
		events += len(report.Events)
		summary.Warnings += len(report.Warnings())

		switch {
		case report.Result.Decided:
			summary.Wins[report.Result.Winner]++
		case report.Result.Reason == encounter.ReasonFled:
			summary.Fled++
		case report.Result.Reason == encounter.ReasonTurnLimit:
			summary.TurnLimit++
		default:
			summary.Draws++
		}
	}
	summary.AvgTurns = float64(turns) / float64(summary.Runs)
	summary.AvgEvents = float64(events) / float64(summary.Runs)

	span.SetAttributes(
		attribute.Float64("batch.primary_win_rate", summary.WinRate(timeline.Primary)),
		attribute.Float64("batch.avg_turns", summary.AvgTurns),
	)
	return summary, nil
}
