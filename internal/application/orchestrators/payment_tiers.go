package orchestrators

import (
	"context"
	"log/slog"

	domain "momentum/internal/domain/training"
)

// PaymentTierInput addresses a tier on a record. TierID is ignored by add.
type PaymentTierInput struct {
	RecordID string
	TierID   string
}

// PaymentTierDeps holds dependencies for tier management.
type PaymentTierDeps struct {
	Records    RecordCollection
	GenerateID func() string
}

// ExecuteAddTier appends an empty tier with a fresh id.
// PRE: the record exists
// POST: ErrTierLimit and no change when the record already has MaxPaymentTiers tiers
func ExecuteAddTier(ctx context.Context, input PaymentTierInput, deps PaymentTierDeps) (domain.Record, error) {
	rec, err := deps.Records.Update(ctx, input.RecordID, func(r domain.Record) (domain.Record, error) {
		tiers, err := domain.AddTier(r.PaymentTiers, deps.GenerateID())
		if err != nil {
			return r, err
		}
		r.PaymentTiers = tiers
		return r, nil
	})
	if err != nil {
		return domain.Record{}, err
	}
	slog.Info("tier_added", "record_id", input.RecordID, "tiers", len(rec.PaymentTiers))
	return rec, nil
}

// ExecuteRemoveTier drops a tier; an unknown tier id leaves the list unchanged.
func ExecuteRemoveTier(ctx context.Context, input PaymentTierInput, deps PaymentTierDeps) (domain.Record, error) {
	return deps.Records.Update(ctx, input.RecordID, func(r domain.Record) (domain.Record, error) {
		r.PaymentTiers = domain.RemoveTier(r.PaymentTiers, input.TierID)
		return r, nil
	})
}
