package orchestrators

import (
	"context"
	"fmt"

	domain "momentum/internal/domain/training"
)

// ManageRecordsDeps holds dependencies for create, delete and selection.
type ManageRecordsDeps struct {
	Records RecordCollection
}

// ExecuteCreateRecord adds a record from the template and selects it.
// POST: the new record is last in the collection and active
func ExecuteCreateRecord(ctx context.Context, deps ManageRecordsDeps) domain.Record {
	return deps.Records.Create(ctx)
}

// DeleteRecordInput names the record to delete.
type DeleteRecordInput struct {
	RecordID string
}

// ExecuteDeleteRecord removes a record.
// PRE: the operator confirmed the deletion
// POST: ErrRecordNotFound when nothing matched; selection cleared if it pointed at the record
func ExecuteDeleteRecord(ctx context.Context, input DeleteRecordInput, deps ManageRecordsDeps) error {
	if !deps.Records.Remove(ctx, input.RecordID) {
		return fmt.Errorf("%w: %s", domain.ErrRecordNotFound, input.RecordID)
	}
	return nil
}

// ExecuteSelectRecord makes a record active; an empty id deselects.
func ExecuteSelectRecord(_ context.Context, recordID string, deps ManageRecordsDeps) error {
	if recordID == "" {
		deps.Records.Deselect()
		return nil
	}
	return deps.Records.Select(recordID)
}
