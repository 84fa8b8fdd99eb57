package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"momentum/internal/domain/summary"
	domain "momentum/internal/domain/training"
)

// SummaryGenerator produces free text from a prompt.
type SummaryGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerateSummaryDeps holds dependencies for summary generation.
type GenerateSummaryDeps struct {
	Records   RecordCollection
	Generator SummaryGenerator
}

// ExecuteGenerateSummary asks the generator for a progress summary of one record.
// PRE: the record exists
// POST: any generator failure is returned wrapped in ErrSummaryFailed with no partial text
// INVARIANT: the record is never modified
func ExecuteGenerateSummary(ctx context.Context, recordID string, deps GenerateSummaryDeps) (string, error) {
	rec, err := deps.Records.Get(recordID)
	if err != nil {
		return "", err
	}
	in := summary.NewInput(rec)
	text, err := deps.Generator.Generate(ctx, summary.Prompt(in))
	if err != nil {
		slog.Warn("summary_failed", "record_id", recordID, "error", err)
		return "", fmt.Errorf("%w: %v", domain.ErrSummaryFailed, err)
	}
	slog.Info("summary_generated", "record_id", recordID, "completed", len(in.Completed), "total", in.Total())
	return text, nil
}
