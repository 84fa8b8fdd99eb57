package orchestrators

import (
	"context"
	"errors"
	"testing"

	domain "momentum/internal/domain/training"
)

// TestExecuteAddTier_CapsAtFive verifies the fifth tier is the last one accepted.
// PRE: a record with two tiers
// POST: three adds succeed, the fourth returns ErrTierLimit with the list unchanged
func TestExecuteAddTier_CapsAtFive(t *testing.T) {
	records, rec := newRecords(t)
	n := 0
	deps := PaymentTierDeps{Records: records, GenerateID: func() string { n++; return "new" + string(rune('0'+n)) }}

	for i := 0; i < 3; i++ {
		if _, err := ExecuteAddTier(context.Background(), PaymentTierInput{RecordID: rec.ID}, deps); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	if _, err := ExecuteAddTier(context.Background(), PaymentTierInput{RecordID: rec.ID}, deps); !errors.Is(err, domain.ErrTierLimit) {
		t.Fatalf("sixth tier err = %v, want ErrTierLimit", err)
	}
	got, _ := records.Get(rec.ID)
	if len(got.PaymentTiers) != domain.MaxPaymentTiers {
		t.Errorf("tiers = %d", len(got.PaymentTiers))
	}
	last := got.PaymentTiers[4]
	if last.ID != "new3" || last.Percentage != "" || last.Explanation != "" {
		t.Errorf("new tier = %+v", last)
	}
}

// TestExecuteRemoveTier keeps the remaining order.
func TestExecuteRemoveTier(t *testing.T) {
	records, rec := newRecords(t)
	got, err := ExecuteRemoveTier(context.Background(), PaymentTierInput{RecordID: rec.ID, TierID: "tier1"}, PaymentTierDeps{Records: records})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.PaymentTiers) != 1 || got.PaymentTiers[0].ID != "tier2" {
		t.Errorf("tiers = %+v", got.PaymentTiers)
	}
}

// TestToggles verifies each checklist flip is isolated and reversible.
func TestToggles(t *testing.T) {
	records, rec := newRecords(t)
	deps := ToggleDeps{Records: records}
	ctx := context.Background()

	got, err := ExecuteToggleProgress(ctx, rec.ID, "schedules", deps)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Progress["schedules"] || got.Progress.Completed() != 1 || len(got.Progress) != 9 {
		t.Errorf("progress = %v", got.Progress)
	}
	if domain.CompletionRatio(got.Progress) != 11 {
		t.Errorf("ratio = %d, want 11", domain.CompletionRatio(got.Progress))
	}
	if _, err := ExecuteToggleProgress(ctx, rec.ID, "finance", deps); !errors.Is(err, domain.ErrUnknownField) {
		t.Errorf("unknown topic err = %v", err)
	}

	got, _ = ExecuteToggleExercise(ctx, rec.ID, "ex2", deps)
	if got.Exercises[0].Completed || !got.Exercises[1].Completed {
		t.Errorf("exercises = %+v", got.Exercises)
	}
	if _, err := ExecuteToggleExercise(ctx, rec.ID, "ex9", deps); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("unknown exercise err = %v", err)
	}

	got, _ = ExecuteToggleExperience(ctx, rec.ID, deps)
	got, _ = ExecuteToggleExperience(ctx, rec.ID, deps)
	if got.TrainerPanel.HasExperience {
		t.Error("double toggle did not restore hasExperience")
	}
}

// TestManageRecords verifies create, select and delete wiring.
func TestManageRecords(t *testing.T) {
	records, first := newRecords(t)
	deps := ManageRecordsDeps{Records: records}
	ctx := context.Background()

	second := ExecuteCreateRecord(ctx, deps)
	if second.TrainerPanel.ModelName != "Nueva Modelo 2" {
		t.Errorf("name = %q", second.TrainerPanel.ModelName)
	}
	if err := ExecuteSelectRecord(ctx, first.ID, deps); err != nil {
		t.Fatal(err)
	}
	if err := ExecuteSelectRecord(ctx, "model_0", deps); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("select unknown err = %v", err)
	}
	if err := ExecuteDeleteRecord(ctx, DeleteRecordInput{RecordID: first.ID}, deps); err != nil {
		t.Fatal(err)
	}
	if _, ok := records.Selected(); ok {
		t.Error("deleting the selected record kept the selection")
	}
	if err := ExecuteDeleteRecord(ctx, DeleteRecordInput{RecordID: first.ID}, deps); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("second delete err = %v", err)
	}
	if err := ExecuteSelectRecord(ctx, "", deps); err != nil {
		t.Errorf("deselect: %v", err)
	}
}
