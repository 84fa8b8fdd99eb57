package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	domain "momentum/internal/domain/training"
)

// TestExecuteEditField_MergesOneKey verifies the other keys of the substructure survive.
// PRE: a record with populated importantDates
// POST: only cutoffDate changed
func TestExecuteEditField_MergesOneKey(t *testing.T) {
	records, rec := newRecords(t)
	got, err := ExecuteEditField(context.Background(), EditFieldInput{
		RecordID: rec.ID, Section: "importantDates", Field: "cutoffDate", Value: "Lunes",
	}, EditFieldDeps{Records: records})
	if err != nil {
		t.Fatalf("ExecuteEditField: %v", err)
	}
	want := domain.ImportantDates{CutoffDate: "Lunes", PaymentDate: "Viernes", PaymentFrequency: "Semanal"}
	if got.ImportantDates != want {
		t.Errorf("ImportantDates = %+v, want %+v", got.ImportantDates, want)
	}
}

// TestExecuteEditField_NoCoercion verifies numeric and date values travel as raw strings.
func TestExecuteEditField_NoCoercion(t *testing.T) {
	records, rec := newRecords(t)
	deps := EditFieldDeps{Records: records}
	got, err := ExecuteEditField(context.Background(), EditFieldInput{
		RecordID: rec.ID, Section: "paymentTiers", TierID: "tier2", Field: "percentage", Value: "abc",
	}, deps)
	if err != nil {
		t.Fatalf("tier edit: %v", err)
	}
	if got.PaymentTiers[1].Percentage != "abc" || got.PaymentTiers[0].Percentage != "45" {
		t.Errorf("tiers = %+v", got.PaymentTiers)
	}
	got, err = ExecuteEditField(context.Background(), EditFieldInput{
		RecordID: rec.ID, Section: "trainerPanel", Field: "startDate", Value: "ayer",
	}, deps)
	if err != nil || got.TrainerPanel.StartDate != "ayer" {
		t.Errorf("startDate = %q, %v", got.TrainerPanel.StartDate, err)
	}
}

// TestExecuteEditField_Errors verifies unknown targets change nothing.
func TestExecuteEditField_Errors(t *testing.T) {
	records, rec := newRecords(t)
	deps := EditFieldDeps{Records: records}
	tests := []struct {
		name  string
		input EditFieldInput
		want  error
	}{
		{"unknown section", EditFieldInput{RecordID: rec.ID, Section: "finance", Field: "x"}, domain.ErrUnknownField},
		{"unknown field", EditFieldInput{RecordID: rec.ID, Section: "importantDates", Field: "x"}, domain.ErrUnknownField},
		{"experience is a toggle", EditFieldInput{RecordID: rec.ID, Section: "trainerPanel", Field: "hasExperience", Value: "true"}, domain.ErrUnknownField},
		{"progress is not scalar", EditFieldInput{RecordID: rec.ID, Section: "progress", Field: "schedules"}, domain.ErrUnknownField},
		{"unknown tier", EditFieldInput{RecordID: rec.ID, Section: "paymentTiers", TierID: "nope", Field: "percentage"}, domain.ErrRecordNotFound},
		{"unknown record", EditFieldInput{RecordID: "model_0", Section: "importantDates", Field: "cutoffDate"}, domain.ErrRecordNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExecuteEditField(context.Background(), tt.input, deps); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	after, _ := records.Get(rec.ID)
	if after.ImportantDates != rec.ImportantDates || after.TrainerPanel != rec.TrainerPanel {
		t.Error("failed edits changed the record")
	}
}

// TestExecuteReplaceSection verifies whole-substructure replacement and its guards.
func TestExecuteReplaceSection(t *testing.T) {
	records, rec := newRecords(t)
	deps := EditFieldDeps{Records: records}

	got, err := ExecuteReplaceSection(context.Background(), ReplaceSectionInput{
		RecordID: rec.ID, Section: "importantDates", Body: json.RawMessage(`{"cutoffDate":"Lunes"}`),
	}, deps)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got.ImportantDates != (domain.ImportantDates{CutoffDate: "Lunes"}) {
		t.Errorf("section merged instead of replaced: %+v", got.ImportantDates)
	}

	bad := []ReplaceSectionInput{
		{RecordID: rec.ID, Section: "progress", Body: json.RawMessage(`{"schedules":true}`)},
		{RecordID: rec.ID, Section: "paymentTiers", Body: json.RawMessage(`[{},{},{},{},{},{}]`)},
		{RecordID: rec.ID, Section: "trainerPanel", Body: json.RawMessage(`"x"`)},
	}
	for _, in := range bad {
		if _, err := ExecuteReplaceSection(context.Background(), in, deps); err == nil {
			t.Errorf("replace %s accepted %s", in.Section, in.Body)
		}
	}

	catalogChanges := []ReplaceSectionInput{
		{RecordID: rec.ID, Section: "exercises", Body: json.RawMessage(`[{"id":"new","name":"añadido"}]`)},
		{RecordID: rec.ID, Section: "exercises", Body: json.RawMessage(`[{"id":"ex2","name":"Navegación"},{"id":"ex1","name":"Digitación"}]`)},
		{RecordID: rec.ID, Section: "exercises", Body: json.RawMessage(`[{"id":"ex1","name":"Otro nombre"},{"id":"ex2","name":"Navegación"}]`)},
		{RecordID: rec.ID, Section: "exercises", Body: json.RawMessage(`[{"id":"ex1","name":"Digitación"}]`)},
	}
	for _, in := range catalogChanges {
		if _, err := ExecuteReplaceSection(context.Background(), in, deps); !errors.Is(err, domain.ErrUnknownField) {
			t.Errorf("replace %s with %s: err = %v, want ErrUnknownField", in.Section, in.Body, err)
		}
	}
	if cur, _ := records.Get(rec.ID); len(cur.Exercises) != 2 || cur.Exercises[0].ID != "ex1" {
		t.Errorf("exercise catalog changed: %+v", cur.Exercises)
	}
}

// TestExecuteReplaceSection_ExercisesCompletion verifies completed flags can be replaced.
// PRE: record with the two-exercise catalog
// POST: completion changes; ids and names stay as they were
func TestExecuteReplaceSection_ExercisesCompletion(t *testing.T) {
	records, rec := newRecords(t)
	got, err := ExecuteReplaceSection(context.Background(), ReplaceSectionInput{
		RecordID: rec.ID, Section: "exercises",
		Body: json.RawMessage(`[{"id":"ex1","name":"Digitación","completed":true},{"id":"ex2","name":"Navegación"}]`),
	}, EditFieldDeps{Records: records})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	want := []domain.Exercise{{ID: "ex1", Name: "Digitación", Completed: true}, {ID: "ex2", Name: "Navegación"}}
	if diff := cmp.Diff(want, got.Exercises); diff != "" {
		t.Errorf("exercises mismatch (-want +got):\n%s", diff)
	}
}
