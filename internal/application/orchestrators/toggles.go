package orchestrators

import (
	"context"
	"fmt"

	domain "momentum/internal/domain/training"
)

// ToggleDeps holds dependencies for checklist toggles.
type ToggleDeps struct {
	Records RecordCollection
}

// ExecuteToggleProgress flips one checklist topic.
// PRE: topic is one of the fixed keys
// POST: exactly one progress entry changed; the key set is unchanged
func ExecuteToggleProgress(ctx context.Context, recordID, topic string, deps ToggleDeps) (domain.Record, error) {
	t, err := domain.ParseTopic(topic)
	if err != nil {
		return domain.Record{}, err
	}
	return deps.Records.Update(ctx, recordID, func(r domain.Record) (domain.Record, error) {
		r.Progress = r.Progress.Toggle(t)
		return r, nil
	})
}

// ExecuteToggleExercise flips the completed flag of one practical exercise.
func ExecuteToggleExercise(ctx context.Context, recordID, exerciseID string, deps ToggleDeps) (domain.Record, error) {
	return deps.Records.Update(ctx, recordID, func(r domain.Record) (domain.Record, error) {
		for i := range r.Exercises {
			if r.Exercises[i].ID == exerciseID {
				r.Exercises[i].Completed = !r.Exercises[i].Completed
				return r, nil
			}
		}
		return r, fmt.Errorf("%w: exercise %s", domain.ErrRecordNotFound, exerciseID)
	})
}

// ExecuteToggleExperience flips trainerPanel.hasExperience.
func ExecuteToggleExperience(ctx context.Context, recordID string, deps ToggleDeps) (domain.Record, error) {
	return deps.Records.Update(ctx, recordID, func(r domain.Record) (domain.Record, error) {
		r.TrainerPanel.HasExperience = !r.TrainerPanel.HasExperience
		return r, nil
	})
}
