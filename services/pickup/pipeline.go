package pickup

import (
	"context"
	"fmt"

	"vivapickup/lib/scrapers/viva"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Source is the portal session the pipeline runs against.
type Source interface {
	FetchListing(ctx context.Context) ([]viva.ListingEntry, error)
	DetailSource
}

type RunConfig struct {
	Criteria Criteria
	Options  Options
}

type RunResult struct {
	Rows        []Row
	Diagnostics []Diagnostic
	// listing entries seen / entries matching the criteria
	Listed  int
	Matched int
	// orders that produced rows / orders suppressed by the quantity rule
	Emitted    int
	Suppressed int
}

// Empty reports whether the run produced nothing to write. Not an error,
// the caller reports it as a "no records" outcome.
func (r RunResult) Empty() bool {
	return len(r.Rows) == 0
}

// RunExtraction is the whole pipeline: fetch the listing, filter it, and
// flatten the matching orders into sheet rows. A listing failure is fatal,
// per-order failures are recorded in Diagnostics and skipped.
func RunExtraction(ctx context.Context, src Source, cfg RunConfig) (RunResult, error) {
	ctx, span := tracer.Start(ctx, "RunExtraction")
	defer span.End()

	entries, err := src.FetchListing(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch listing")
		return RunResult{}, fmt.Errorf("fetch listing: %w", err)
	}

	filtered, err := Filter(entries, cfg.Criteria)
	if err != nil {
		span.SetStatus(codes.Error, "bad filter criteria")
		return RunResult{}, err
	}
	span.SetAttributes(
		attribute.Int("listed", len(entries)),
		attribute.Int("matched", len(filtered)),
	)

	build := BuildRows(ctx, src, filtered, cfg.Options)
	return RunResult{
		Rows:        build.Rows,
		Diagnostics: build.Diagnostics,
		Listed:      len(entries),
		Matched:     len(filtered),
		Emitted:     build.Emitted,
		Suppressed:  build.Suppressed,
	}, nil
}
