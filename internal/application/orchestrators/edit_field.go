package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"

	domain "momentum/internal/domain/training"
)

// EditFieldInput is one scalar change coming from a field editor control.
// Value is the raw control string; numeric and date inputs are not coerced.
type EditFieldInput struct {
	RecordID string
	Section  string
	Field    string
	Value    string
	TierID   string // required when Section is paymentTiers
}

// EditFieldDeps holds dependencies for field edits.
type EditFieldDeps struct {
	Records RecordCollection
}

// ExecuteEditField merges one changed key into its substructure and replaces
// the whole substructure on the record.
// PRE: Section/Field name a catalog entry (or a tier field with TierID)
// POST: every other key of the substructure keeps its previous value
// INVARIANT: no validation or coercion is applied to Value
func ExecuteEditField(ctx context.Context, input EditFieldInput, deps EditFieldDeps) (domain.Record, error) {
	section, err := domain.ParseSection(input.Section)
	if err != nil {
		return domain.Record{}, err
	}
	if section != domain.SectionPaymentTiers {
		if _, err := domain.LookupField(section, input.Field); err != nil {
			return domain.Record{}, err
		}
	}

	return deps.Records.Update(ctx, input.RecordID, func(r domain.Record) (domain.Record, error) {
		switch section {
		case domain.SectionImportantDates:
			r.ImportantDates, err = r.ImportantDates.With(input.Field, input.Value)
		case domain.SectionPaymentMethods:
			r.PaymentMethods, err = r.PaymentMethods.With(input.Field, input.Value)
		case domain.SectionComplementaryInfo:
			r.ComplementaryInfo, err = r.ComplementaryInfo.With(input.Field, input.Value)
		case domain.SectionTrainerPanel:
			r.TrainerPanel, err = r.TrainerPanel.With(input.Field, input.Value)
		case domain.SectionPaymentTiers:
			r.PaymentTiers, err = updateTier(r.PaymentTiers, input.TierID, input.Field, input.Value)
		default:
			err = fmt.Errorf("%w: %s is not a scalar section", domain.ErrUnknownField, section)
		}
		return r, err
	})
}

func updateTier(tiers []domain.PaymentTier, tierID, field, value string) ([]domain.PaymentTier, error) {
	out := append([]domain.PaymentTier(nil), tiers...)
	for i := range out {
		if out[i].ID == tierID {
			t, err := out[i].With(field, value)
			if err != nil {
				return tiers, err
			}
			out[i] = t
			return out, nil
		}
	}
	return tiers, fmt.Errorf("%w: tier %s", domain.ErrRecordNotFound, tierID)
}

// ReplaceSectionInput carries a whole substructure as JSON.
type ReplaceSectionInput struct {
	RecordID string
	Section  string
	Body     json.RawMessage
}

// ExecuteReplaceSection decodes a substructure and swaps it in wholesale.
// PRE: Body decodes into the Go type of Section
// PRE: an exercises Body keeps the record's catalog; only completed may differ
// POST: the section equals Body exactly; nothing is merged
func ExecuteReplaceSection(ctx context.Context, input ReplaceSectionInput, deps EditFieldDeps) (domain.Record, error) {
	section, err := domain.ParseSection(input.Section)
	if err != nil {
		return domain.Record{}, err
	}
	var value any
	switch section {
	case domain.SectionPaymentTiers:
		value, err = decodeSection[[]domain.PaymentTier](input.Body)
	case domain.SectionImportantDates:
		value, err = decodeSection[domain.ImportantDates](input.Body)
	case domain.SectionPaymentMethods:
		value, err = decodeSection[domain.PaymentMethods](input.Body)
	case domain.SectionComplementaryInfo:
		value, err = decodeSection[domain.ComplementaryInfo](input.Body)
	case domain.SectionExercises:
		var ex []domain.Exercise
		if ex, err = decodeSection[[]domain.Exercise](input.Body); err == nil {
			err = checkExerciseCatalog(deps.Records, input.RecordID, ex)
		}
		value = ex
	case domain.SectionProgress:
		var p domain.Progress
		if p, err = decodeSection[domain.Progress](input.Body); err == nil {
			err = p.CheckKeys()
		}
		value = p
	case domain.SectionTrainerPanel:
		value, err = decodeSection[domain.TrainerPanel](input.Body)
	}
	if err != nil {
		return domain.Record{}, fmt.Errorf("%w: %s: %v", domain.ErrUnknownField, section, err)
	}
	return deps.Records.UpdateField(ctx, input.RecordID, section, value)
}

// checkExerciseCatalog rejects exercise lists that add, drop, reorder or
// rewrite catalog entries.
func checkExerciseCatalog(records RecordCollection, id string, next []domain.Exercise) error {
	rec, err := records.Get(id)
	if err != nil {
		return nil // UpdateField reports the missing record
	}
	if len(next) != len(rec.Exercises) {
		return fmt.Errorf("exercise catalog has %d entries, got %d", len(rec.Exercises), len(next))
	}
	for i, cur := range rec.Exercises {
		n := next[i]
		n.Completed = cur.Completed
		if n != cur {
			return fmt.Errorf("exercise %d: only completed may change", i)
		}
	}
	return nil
}

func decodeSection[T any](body json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(body, &v)
	return v, err
}
