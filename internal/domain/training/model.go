package training

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Business rule constants
const (
	MaxPaymentTiers = 5
	IDPrefix        = "model_"
	NewNamePrefix   = "Nueva Modelo "
	DateLayout      = "2006-01-02"
)

// Section names a top-level substructure of a Record.
// The set is closed; json tags on Record use the same names.
type Section string

const (
	SectionPaymentTiers      Section = "paymentTiers"
	SectionImportantDates    Section = "importantDates"
	SectionPaymentMethods    Section = "paymentMethods"
	SectionComplementaryInfo Section = "complementaryInfo"
	SectionExercises         Section = "exercises"
	SectionProgress          Section = "progress"
	SectionTrainerPanel      Section = "trainerPanel"
)

// Sections lists every substructure in declaration order.
var Sections = []Section{
	SectionPaymentTiers,
	SectionImportantDates,
	SectionPaymentMethods,
	SectionComplementaryInfo,
	SectionExercises,
	SectionProgress,
	SectionTrainerPanel,
}

// PaymentTier is one payment percentage bracket.
// Percentage is free text and is never range-checked.
type PaymentTier struct {
	ID          string `json:"id" yaml:"id"`
	Percentage  string `json:"percentage" yaml:"percentage"`
	Explanation string `json:"explanation" yaml:"explanation"`
}

// ImportantDates holds the billing calendar copy.
type ImportantDates struct {
	CutoffDate       string `json:"cutoffDate" yaml:"cutoffDate"`
	PaymentDate      string `json:"paymentDate" yaml:"paymentDate"`
	PaymentFrequency string `json:"paymentFrequency" yaml:"paymentFrequency"`
}

// PaymentMethods holds payout channel copy.
type PaymentMethods struct {
	Transfers      string `json:"transfers" yaml:"transfers"`
	AvailableBanks string `json:"availableBanks" yaml:"availableBanks"`
	Currencies     string `json:"currencies" yaml:"currencies"`
	DollarRate     string `json:"dollarRate" yaml:"dollarRate"`
}

// ComplementaryInfo holds policy and observation copy.
type ComplementaryInfo struct {
	ModelObservations     string `json:"modelObservations" yaml:"modelObservations"`
	InternalPolicies      string `json:"internalPolicies" yaml:"internalPolicies"`
	AdminResponsibilities string `json:"adminResponsibilities" yaml:"adminResponsibilities"`
}

// Exercise is a practical exercise from the fixed per-record catalog.
// Only Completed is ever mutated after creation.
type Exercise struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Instructions string `json:"instructions" yaml:"instructions"`
	Target       string `json:"target" yaml:"target"`
	Completed    bool   `json:"completed" yaml:"completed"`
}

// TrainerPanel holds trainer-only data about the trainee.
type TrainerPanel struct {
	ModelName     string `json:"modelName" yaml:"modelName"`
	StartDate     string `json:"startDate" yaml:"startDate"`
	HasExperience bool   `json:"hasExperience" yaml:"hasExperience"`
	InternalNotes string `json:"internalNotes" yaml:"internalNotes"`
}

// Record is one trainee's full editable dataset.
type Record struct {
	ID                string            `json:"id" yaml:"id"`
	PaymentTiers      []PaymentTier     `json:"paymentTiers" yaml:"paymentTiers"`
	ImportantDates    ImportantDates    `json:"importantDates" yaml:"importantDates"`
	PaymentMethods    PaymentMethods    `json:"paymentMethods" yaml:"paymentMethods"`
	ComplementaryInfo ComplementaryInfo `json:"complementaryInfo" yaml:"complementaryInfo"`
	Exercises         []Exercise        `json:"exercises" yaml:"exercises"`
	Progress          Progress          `json:"progress" yaml:"progress"`
	TrainerPanel      TrainerPanel      `json:"trainerPanel" yaml:"trainerPanel"`
}

// Clone returns a deep copy of the record.
// INVARIANT: the returned value shares no slices or maps with r
func (r Record) Clone() Record {
	out := r
	if r.PaymentTiers != nil {
		out.PaymentTiers = append([]PaymentTier(nil), r.PaymentTiers...)
	}
	if r.Exercises != nil {
		out.Exercises = append([]Exercise(nil), r.Exercises...)
	}
	out.Progress = r.Progress.Clone()
	return out
}

// NewFromTemplate builds a fresh record from a template.
// PRE: id is unique within the collection; ordinal is count+1
// POST: record is a deep copy of tpl with id, model name and start date replaced
func NewFromTemplate(tpl Record, id string, ordinal int, now time.Time) Record {
	rec := tpl.Clone()
	rec.ID = id
	rec.TrainerPanel.ModelName = fmt.Sprintf("%s%d", NewNamePrefix, ordinal)
	rec.TrainerPanel.StartDate = now.UTC().Format(DateLayout)
	return rec
}

// RecordID formats the identifier for a record created at t.
func RecordID(t time.Time) string {
	return fmt.Sprintf("%s%d", IDPrefix, t.UnixMilli())
}

// ParseSection maps a wire name onto the closed Section set.
func ParseSection(name string) (Section, error) {
	for _, s := range Sections {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: section %q", ErrUnknownField, name)
}

// AddTier appends an empty tier.
// PRE: tierID is non-empty
// POST: returns a new slice one longer, or ErrTierLimit when already at MaxPaymentTiers
// INVARIANT: the input slice is not modified
func AddTier(tiers []PaymentTier, tierID string) ([]PaymentTier, error) {
	if len(tiers) >= MaxPaymentTiers {
		return tiers, ErrTierLimit
	}
	out := make([]PaymentTier, 0, len(tiers)+1)
	out = append(out, tiers...)
	return append(out, PaymentTier{ID: tierID}), nil
}

// RemoveTier drops the tier with the given id; absent ids leave the order untouched.
func RemoveTier(tiers []PaymentTier, tierID string) []PaymentTier {
	out := make([]PaymentTier, 0, len(tiers))
	for _, t := range tiers {
		if t.ID != tierID {
			out = append(out, t)
		}
	}
	return out
}

// Summary returns a short human label for logs.
func (r Record) Summary() string {
	name := strings.TrimSpace(r.TrainerPanel.ModelName)
	if name == "" {
		name = "(sin nombre)"
	}
	return r.ID + " " + name
}

// MarshalCollection serializes a collection the way export files are written.
func MarshalCollection(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.MarshalIndent(records, "", "  ")
}
