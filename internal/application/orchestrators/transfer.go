package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	domain "momentum/internal/domain/training"
)

// ExportFilePrefix and the date suffix form the download name.
const ExportFilePrefix = "talentos-momentum-backup-"

// ExportResult is a ready-to-download collection file.
type ExportResult struct {
	FileName string
	Data     []byte
	Count    int
}

// TransferDeps holds dependencies for export and import.
type TransferDeps struct {
	Records RecordCollection
	Now     func() time.Time
}

// ExportFileName returns the download name for an export taken at t.
func ExportFileName(t time.Time) string {
	return ExportFilePrefix + t.UTC().Format(domain.DateLayout) + ".json"
}

// ExecuteExportCollection serializes the whole collection.
// POST: ErrExportEmpty and no file when the collection is empty
func ExecuteExportCollection(_ context.Context, deps TransferDeps) (ExportResult, error) {
	records := deps.Records.List()
	if len(records) == 0 {
		return ExportResult{}, domain.ErrExportEmpty
	}
	data, err := domain.MarshalCollection(records)
	if err != nil {
		return ExportResult{}, fmt.Errorf("marshal collection: %w", err)
	}
	return ExportResult{FileName: ExportFileName(deps.Now()), Data: data, Count: len(records)}, nil
}

// ImportCollectionInput is an uploaded file and the operator's answer to
// the overwrite confirmation.
type ImportCollectionInput struct {
	Data      []byte
	Confirmed bool
}

// ExecuteImportCollection replaces the collection with the file contents.
// PRE: Confirmed is true, otherwise ErrImportCancelled
// POST: on any error the existing collection is untouched; on success the selection is cleared
func ExecuteImportCollection(ctx context.Context, input ImportCollectionInput, deps TransferDeps) (int, error) {
	if !input.Confirmed {
		return 0, domain.ErrImportCancelled
	}
	records, err := domain.DecodeCollection(input.Data)
	if err != nil {
		slog.Warn("import_rejected", "bytes", len(input.Data), "error", err)
		return 0, err
	}
	if err := checkUniqueIDs(records); err != nil {
		return 0, err
	}
	deps.Records.Replace(ctx, records)
	slog.Info("import_applied", "count", len(records))
	return len(records), nil
}

func checkUniqueIDs(records []domain.Record) error {
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if seen[r.ID] {
			return fmt.Errorf("%w: duplicate id %s", domain.ErrImportInvalid, r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}
