// Package collection owns the in-memory trainee collection and the
// operator's current selection, and mirrors every change to storage.
package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domain "momentum/internal/domain/training"
)

// Loader reads the persisted collection once at startup.
type Loader interface {
	Load(ctx context.Context) ([]domain.Record, error)
}

// Saver writes the full collection.
type Saver interface {
	Save(ctx context.Context, records []domain.Record) error
}

// Collection is the single shared, mutable record set.
// INVARIANT: ids are unique; order is creation order or imported order
// INVARIANT: selected is "" or the id of a record in records
type Collection struct {
	mu       sync.RWMutex
	records  []domain.Record
	selected string
	version  uint64

	template domain.Record
	now      func() time.Time
	saver    Saver

	saveMu sync.Mutex
	saved  uint64
}

// Option configures a Collection.
type Option func(*Collection)

// WithClock overrides the time source used for ids and start dates.
func WithClock(now func() time.Time) Option {
	return func(c *Collection) { c.now = now }
}

// New creates an empty collection.
// PRE: template carries the fixed progress keys; saver may be nil (no persistence)
func New(template domain.Record, saver Saver, opts ...Option) *Collection {
	c := &Collection{
		records:  []domain.Record{},
		template: template.Clone(),
		now:      time.Now,
		saver:    saver,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Hydrate replaces the in-memory state with what loader returns.
// PRE: called once, before the collection is served
// POST: corrupt storage leaves the collection empty and is logged only;
// any other load error is returned
func (c *Collection) Hydrate(ctx context.Context, loader Loader) error {
	records, err := loader.Load(ctx)
	if errors.Is(err, domain.ErrStorageCorrupt) {
		slog.Warn("storage_corrupt", "error", err)
		records, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("hydrate collection: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = make([]domain.Record, 0, len(records))
	for _, r := range records {
		c.records = append(c.records, r.Clone())
	}
	c.selected = ""
	slog.Info("collection_hydrated", "count", len(c.records))
	return nil
}

// List returns a copy of every record in collection order.
func (c *Collection) List() []domain.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Record, len(c.records))
	for i, r := range c.records {
		out[i] = r.Clone()
	}
	return out
}

// Len returns the number of records.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Get returns a copy of the record with id.
func (c *Collection) Get(id string) (domain.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.indexOf(id)
	if i < 0 {
		return domain.Record{}, fmt.Errorf("%w: %s", domain.ErrRecordNotFound, id)
	}
	return c.records[i].Clone(), nil
}

// Selected returns the active record, if any.
func (c *Collection) Selected() (domain.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.selected == "" {
		return domain.Record{}, false
	}
	return c.records[c.indexOf(c.selected)].Clone(), true
}

// Create appends a record built from the template and selects it.
// POST: id is "model_<millis>", bumped until unique; name is "Nueva Modelo <count+1>"
func (c *Collection) Create(ctx context.Context) domain.Record {
	c.mu.Lock()
	created := c.now()
	stamp := created
	id := domain.RecordID(stamp)
	for c.indexOf(id) >= 0 {
		stamp = stamp.Add(time.Millisecond)
		id = domain.RecordID(stamp)
	}
	rec := domain.NewFromTemplate(c.template, id, len(c.records)+1, created)
	c.records = append(c.records, rec)
	c.selected = id
	snap, v := c.snapshotLocked()
	c.mu.Unlock()

	slog.Info("record_created", "record", rec.Summary())
	c.persist(ctx, snap, v)
	return rec.Clone()
}

// Remove deletes the record with id, clearing the selection when it pointed there.
// POST: returns false and writes nothing when no record matches
func (c *Collection) Remove(ctx context.Context, id string) bool {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	c.records = append(c.records[:i:i], c.records[i+1:]...)
	if c.selected == id {
		c.selected = ""
	}
	snap, v := c.snapshotLocked()
	c.mu.Unlock()

	slog.Info("record_removed", "id", id)
	c.persist(ctx, snap, v)
	return true
}

// Select makes id the active record.
func (c *Collection) Select(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexOf(id) < 0 {
		return fmt.Errorf("%w: %s", domain.ErrRecordNotFound, id)
	}
	c.selected = id
	return nil
}

// Deselect returns the operator to the selector.
func (c *Collection) Deselect() {
	c.mu.Lock()
	c.selected = ""
	c.mu.Unlock()
}

// Update replaces the record with id by the result of fn.
// PRE: fn does not change the record id
// POST: on ErrRecordNotFound or an fn error nothing changes and nothing is written
func (c *Collection) Update(ctx context.Context, id string, fn func(domain.Record) (domain.Record, error)) (domain.Record, error) {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return domain.Record{}, fmt.Errorf("%w: %s", domain.ErrRecordNotFound, id)
	}
	next, err := fn(c.records[i].Clone())
	if err != nil {
		c.mu.Unlock()
		return domain.Record{}, err
	}
	next.ID = id
	c.records[i] = next.Clone()
	snap, v := c.snapshotLocked()
	c.mu.Unlock()

	c.persist(ctx, snap, v)
	return next, nil
}

// UpdateField replaces one whole top-level substructure of a record.
// PRE: value's dynamic type matches section (e.g. []PaymentTier for paymentTiers)
// POST: a type mismatch returns ErrUnknownField; an absent id returns ErrRecordNotFound
func (c *Collection) UpdateField(ctx context.Context, id string, section domain.Section, value any) (domain.Record, error) {
	return c.Update(ctx, id, func(r domain.Record) (domain.Record, error) {
		ok := false
		switch section {
		case domain.SectionPaymentTiers:
			var v []domain.PaymentTier
			if v, ok = value.([]domain.PaymentTier); ok {
				if len(v) > domain.MaxPaymentTiers {
					return r, domain.ErrTierLimit
				}
				r.PaymentTiers = append([]domain.PaymentTier(nil), v...)
			}
		case domain.SectionImportantDates:
			r.ImportantDates, ok = value.(domain.ImportantDates)
		case domain.SectionPaymentMethods:
			r.PaymentMethods, ok = value.(domain.PaymentMethods)
		case domain.SectionComplementaryInfo:
			r.ComplementaryInfo, ok = value.(domain.ComplementaryInfo)
		case domain.SectionExercises:
			var v []domain.Exercise
			if v, ok = value.([]domain.Exercise); ok {
				r.Exercises = append([]domain.Exercise(nil), v...)
			}
		case domain.SectionProgress:
			var v domain.Progress
			if v, ok = value.(domain.Progress); ok {
				r.Progress = v.Clone()
			}
		case domain.SectionTrainerPanel:
			r.TrainerPanel, ok = value.(domain.TrainerPanel)
		}
		if !ok {
			return r, fmt.Errorf("%w: %s cannot hold %T", domain.ErrUnknownField, section, value)
		}
		return r, nil
	})
}

// Replace swaps in an imported collection wholesale and clears the selection.
// PRE: records passed import validation
func (c *Collection) Replace(ctx context.Context, records []domain.Record) {
	c.mu.Lock()
	c.records = make([]domain.Record, 0, len(records))
	for _, r := range records {
		c.records = append(c.records, r.Clone())
	}
	c.selected = ""
	snap, v := c.snapshotLocked()
	c.mu.Unlock()

	slog.Info("collection_replaced", "count", len(snap))
	c.persist(ctx, snap, v)
}

func (c *Collection) indexOf(id string) int {
	for i := range c.records {
		if c.records[i].ID == id {
			return i
		}
	}
	return -1
}

// snapshotLocked bumps the version and copies the records for persistence.
// PRE: c.mu is held for writing
func (c *Collection) snapshotLocked() ([]domain.Record, uint64) {
	c.version++
	out := make([]domain.Record, len(c.records))
	for i, r := range c.records {
		out[i] = r.Clone()
	}
	return out, c.version
}

// persist writes snap unless a newer version has already been written.
// Failures are logged and the in-memory state stays authoritative.
func (c *Collection) persist(ctx context.Context, snap []domain.Record, version uint64) {
	if c.saver == nil {
		return
	}
	c.saveMu.Lock()
	defer c.saveMu.Unlock()
	if version <= c.saved {
		return
	}
	if err := c.saver.Save(context.WithoutCancel(ctx), snap); err != nil {
		slog.Error("storage_write_failed", "version", version, "count", len(snap), "error", err)
		return
	}
	c.saved = version
}
