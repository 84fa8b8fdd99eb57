package orchestrators

import (
	"context"
	"testing"
	"time"

	"momentum/internal/application/collection"
	domain "momentum/internal/domain/training"
)

var testNow = time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)

func testTemplate() domain.Record {
	return domain.Record{
		ID: "template",
		PaymentTiers: []domain.PaymentTier{
			{ID: "tier1", Percentage: "45", Explanation: "inicial"},
			{ID: "tier2", Percentage: "50", Explanation: "metas"},
		},
		ImportantDates: domain.ImportantDates{CutoffDate: "Martes", PaymentDate: "Viernes", PaymentFrequency: "Semanal"},
		Exercises:      []domain.Exercise{{ID: "ex1", Name: "Digitación"}, {ID: "ex2", Name: "Navegación"}},
		Progress:       domain.NewProgress(),
		TrainerPanel:   domain.TrainerPanel{ModelName: "Jane Doe", InternalNotes: "buena actitud"},
	}
}

// newRecords returns an in-memory collection holding one created record.
func newRecords(t *testing.T) (*collection.Collection, domain.Record) {
	t.Helper()
	c := collection.New(testTemplate(), nil, collection.WithClock(func() time.Time { return testNow }))
	rec := c.Create(context.Background())
	return c, rec
}
