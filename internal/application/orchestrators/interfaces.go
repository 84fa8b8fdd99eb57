package orchestrators

import (
	"context"

	"momentum/internal/domain/presentation"
	domain "momentum/internal/domain/training"
)

// RecordCollection is the Record Store as seen by the use cases.
// *collection.Collection satisfies it.
type RecordCollection interface {
	List() []domain.Record
	Len() int
	Get(id string) (domain.Record, error)
	Create(ctx context.Context) domain.Record
	Remove(ctx context.Context, id string) bool
	Select(id string) error
	Deselect()
	Update(ctx context.Context, id string, fn func(domain.Record) (domain.Record, error)) (domain.Record, error)
	UpdateField(ctx context.Context, id string, section domain.Section, value any) (domain.Record, error)
	Replace(ctx context.Context, records []domain.Record)
}

// DeckRenderer snapshots a named deck for a record.
// *content.Catalog satisfies it.
type DeckRenderer interface {
	RenderDeck(name string, rec domain.Record) (string, []presentation.Slide, error)
}

// SlidePlayer is the presentation state machine.
type SlidePlayer interface {
	Open(title string, slides []presentation.Slide) error
	View() presentation.View
}
