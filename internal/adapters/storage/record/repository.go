// Package record stores the whole trainee collection as one JSON document
// in a single slot.
package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"momentum/internal/adapters/storage/slot"
	domain "momentum/internal/domain/training"
)

// DefaultSlotKey is the slot the collection lives under.
const DefaultSlotKey = "talentosMomentumModels"

// Repository loads and saves the collection document.
type Repository struct {
	slots slot.Store
	key   string
}

// NewRepository binds a repository to one slot key.
// PRE: slots is non-nil; an empty key selects DefaultSlotKey
func NewRepository(slots slot.Store, key string) *Repository {
	if key == "" {
		key = DefaultSlotKey
	}
	return &Repository{slots: slots, key: key}
}

// Key reports the slot key in use.
func (r *Repository) Key() string {
	return r.key
}

// Load returns the stored collection.
// PRE: none
// POST: an absent slot yields an empty collection; an unparsable slot is deleted and
// ErrStorageCorrupt is returned alongside an empty collection
func (r *Repository) Load(ctx context.Context) ([]domain.Record, error) {
	data, err := r.slots.Get(ctx, r.key)
	if errors.Is(err, slot.ErrNotFound) {
		return []domain.Record{}, nil
	}
	if err != nil {
		return []domain.Record{}, fmt.Errorf("load collection: %w", err)
	}

	var records []domain.Record
	if err := json.Unmarshal(data, &records); err != nil || records == nil {
		if delErr := r.slots.Delete(ctx, r.key); delErr != nil {
			return []domain.Record{}, fmt.Errorf("%w: %v (discard failed: %v)", domain.ErrStorageCorrupt, err, delErr)
		}
		if err == nil {
			err = errors.New("document is not an array")
		}
		return []domain.Record{}, fmt.Errorf("%w: %v", domain.ErrStorageCorrupt, err)
	}
	return records, nil
}

// Save writes the full collection, replacing the previous document.
// POST: on failure the error wraps ErrStorageWriteFailed
func (r *Repository) Save(ctx context.Context, records []domain.Record) error {
	data, err := domain.MarshalCollection(records)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWriteFailed, err)
	}
	if err := r.slots.Put(ctx, r.key, data); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWriteFailed, err)
	}
	return nil
}
