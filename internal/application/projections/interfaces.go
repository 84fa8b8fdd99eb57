package projections

import (
	domain "momentum/internal/domain/training"
)

// RecordReader is the read side of the Record Store.
// *collection.Collection satisfies it.
type RecordReader interface {
	List() []domain.Record
	Get(id string) (domain.Record, error)
	Selected() (domain.Record, bool)
}
