package projections

import (
	"context"
	"fmt"

	"momentum/internal/content"
	domain "momentum/internal/domain/training"
)

// Record views
const (
	ViewOnboarding = "onboarding"
	ViewTraining   = "training"
	ViewTrainer    = "trainer"
)

var sectionTitles = map[domain.Section]string{
	domain.SectionPaymentTiers:      "Porcentajes de Pago",
	domain.SectionImportantDates:    "Fechas Importantes",
	domain.SectionPaymentMethods:    "Métodos de Pago",
	domain.SectionComplementaryInfo: "Información Complementaria",
	domain.SectionTrainerPanel:      "Información Administrativa de la Modelo",
}

// FieldView pairs a catalog entry with the record's current value.
type FieldView struct {
	domain.FieldSpec
	Value string `json:"value"`
}

// FieldGroup is one onboarding card: a substructure and its checklist flag.
type FieldGroup struct {
	Section domain.Section `json:"section"`
	Title   string         `json:"title"`
	Done    bool           `json:"done"`
	Fields  []FieldView    `json:"fields"`
}

// TierView is one editable payment tier with its display position.
type TierView struct {
	Position int `json:"position"`
	domain.PaymentTier
}

// ModuleView is one training module with its checklist flag.
type ModuleView struct {
	Topic string   `json:"topic"`
	Title string   `json:"title"`
	Items []string `json:"items"`
	Done  bool     `json:"done"`
}

// ChecklistItem is one progress topic as the trainer sees it.
type ChecklistItem struct {
	Topic string `json:"topic"`
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

// GetRecordDetailQuery names the record and the view to build.
type GetRecordDetailQuery struct {
	RecordID string
	View     string
}

// GetRecordDetailResult is everything the record screens render.
type GetRecordDetailResult struct {
	Record domain.Record `json:"record"`
	View   string        `json:"view"`
	Ratio  int           `json:"completionRatio"`

	TiersDone  bool         `json:"tiersDone"`
	Tiers      []TierView   `json:"tiers"`
	CanAddTier bool         `json:"canAddTier"`
	Groups     []FieldGroup `json:"groups"`

	Modules       []ModuleView      `json:"modules"`
	ShowExercises bool              `json:"showExercises"`
	Exercises     []domain.Exercise `json:"exercises,omitempty"`

	PanelFields []FieldView     `json:"panelFields"`
	Checklist   []ChecklistItem `json:"checklist"`
	Completed   int             `json:"completed"`
	Total       int             `json:"total"`
	Reminders   []string        `json:"reminders"`
}

// GetRecordDetailDeps holds dependencies for QueryGetRecordDetail.
type GetRecordDetailDeps struct {
	Records RecordReader
	Catalog *content.Catalog
}

// QueryGetRecordDetail builds the read model for one record.
// PRE: View is empty (onboarding) or one of the View constants
// POST: Exercises are present only when the trainee has prior experience
// INVARIANT: the record is not modified
func QueryGetRecordDetail(_ context.Context, query GetRecordDetailQuery, deps GetRecordDetailDeps) (GetRecordDetailResult, error) {
	view := query.View
	switch view {
	case "":
		view = ViewOnboarding
	case ViewOnboarding, ViewTraining, ViewTrainer:
	default:
		return GetRecordDetailResult{}, fmt.Errorf("%w: view %q", domain.ErrUnknownField, view)
	}
	rec, err := deps.Records.Get(query.RecordID)
	if err != nil {
		return GetRecordDetailResult{}, err
	}

	res := GetRecordDetailResult{
		Record:     rec,
		View:       view,
		Ratio:      domain.CompletionRatio(rec.Progress),
		TiersDone:  rec.Progress[string(domain.TopicPaymentTiers)],
		CanAddTier: len(rec.PaymentTiers) < domain.MaxPaymentTiers,
	}
	for i, t := range rec.PaymentTiers {
		res.Tiers = append(res.Tiers, TierView{Position: i + 1, PaymentTier: t})
	}
	for _, s := range []domain.Section{domain.SectionImportantDates, domain.SectionPaymentMethods, domain.SectionComplementaryInfo} {
		res.Groups = append(res.Groups, FieldGroup{
			Section: s,
			Title:   sectionTitles[s],
			Done:    rec.Progress[string(s)],
			Fields:  fieldViews(rec, s),
		})
	}

	for _, m := range deps.Catalog.Modules {
		res.Modules = append(res.Modules, ModuleView{Topic: m.Topic, Title: m.Title, Items: m.Items, Done: rec.Progress[m.Topic]})
	}
	res.ShowExercises = rec.TrainerPanel.HasExperience
	if res.ShowExercises {
		res.Exercises = rec.Exercises
	}

	res.PanelFields = fieldViews(rec, domain.SectionTrainerPanel)
	for _, t := range domain.Topics {
		done := rec.Progress[string(t.Key)]
		res.Checklist = append(res.Checklist, ChecklistItem{Topic: string(t.Key), Label: t.Label, Done: done})
		if done {
			res.Completed++
		}
	}
	res.Total = len(domain.Topics)
	for _, r := range deps.Catalog.Reminders {
		if r.RequiresExperience && !rec.TrainerPanel.HasExperience {
			continue
		}
		res.Reminders = append(res.Reminders, r.Text)
	}
	return res, nil
}

// SectionTitle returns the display title of a section.
func SectionTitle(s domain.Section) string {
	return sectionTitles[s]
}

func fieldViews(rec domain.Record, s domain.Section) []FieldView {
	specs := domain.FieldsOf(s)
	out := make([]FieldView, 0, len(specs))
	for _, spec := range specs {
		v, _ := rec.FieldValue(s, spec.Key)
		out = append(out, FieldView{FieldSpec: spec, Value: v})
	}
	return out
}
