package collection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	domain "momentum/internal/domain/training"
)

// --- Fakes ---

type fakeLoader struct {
	records []domain.Record
	err     error
}

func (f fakeLoader) Load(context.Context) ([]domain.Record, error) { return f.records, f.err }

type fakeSaver struct {
	mu    sync.Mutex
	saves [][]domain.Record
	err   error
}

func (f *fakeSaver) Save(_ context.Context, records []domain.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saves = append(f.saves, records)
	return nil
}

func (f *fakeSaver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakeSaver) last() []domain.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saves) == 0 {
		return nil
	}
	return f.saves[len(f.saves)-1]
}

func testTemplate() domain.Record {
	return domain.Record{
		ID:           "template",
		PaymentTiers: []domain.PaymentTier{{ID: "tier1", Percentage: "45"}},
		Exercises:    []domain.Exercise{{ID: "ex1", Name: "Digitación"}},
		Progress:     domain.NewProgress(),
		TrainerPanel: domain.TrainerPanel{ModelName: "Jane Doe"},
	}
}

var fixedNow = time.Date(2026, 3, 5, 23, 30, 0, 0, time.UTC)

func newTestCollection(saver Saver) *Collection {
	return New(testTemplate(), saver, WithClock(func() time.Time { return fixedNow }))
}

// --- Tests ---

// TestCreate_AppendsSelectsAndPersists verifies the create contract.
// PRE: an empty collection
// POST: the record is a template copy with a fresh id, default name, today's date; it is selected and saved
func TestCreate_AppendsSelectsAndPersists(t *testing.T) {
	saver := &fakeSaver{}
	c := newTestCollection(saver)
	rec := c.Create(context.Background())

	wantID := fmt.Sprintf("model_%d", fixedNow.UnixMilli())
	if rec.ID != wantID {
		t.Errorf("ID = %q, want %q", rec.ID, wantID)
	}
	if rec.TrainerPanel.ModelName != "Nueva Modelo 1" {
		t.Errorf("ModelName = %q", rec.TrainerPanel.ModelName)
	}
	if rec.TrainerPanel.StartDate != "2026-03-05" {
		t.Errorf("StartDate = %q", rec.TrainerPanel.StartDate)
	}
	if sel, ok := c.Selected(); !ok || sel.ID != rec.ID {
		t.Errorf("Selected = %v, %v", sel.ID, ok)
	}
	if saver.count() != 1 || len(saver.last()) != 1 {
		t.Errorf("saves = %d", saver.count())
	}
}

// TestCreate_SameMillisecondGetsUniqueIDs verifies ids stay unique under a frozen clock.
func TestCreate_SameMillisecondGetsUniqueIDs(t *testing.T) {
	c := newTestCollection(nil)
	a := c.Create(context.Background())
	b := c.Create(context.Background())
	if a.ID == b.ID {
		t.Fatalf("duplicate id %q", a.ID)
	}
	if b.ID != fmt.Sprintf("model_%d", fixedNow.UnixMilli()+1) {
		t.Errorf("second id = %q", b.ID)
	}
	if b.TrainerPanel.ModelName != "Nueva Modelo 2" {
		t.Errorf("second name = %q", b.TrainerPanel.ModelName)
	}
}

// TestCreate_DoesNotShareTemplateState verifies edits never leak into the template.
func TestCreate_DoesNotShareTemplateState(t *testing.T) {
	c := newTestCollection(nil)
	a := c.Create(context.Background())
	_, err := c.Update(context.Background(), a.ID, func(r domain.Record) (domain.Record, error) {
		r.PaymentTiers[0].Percentage = "99"
		r.Progress = r.Progress.Toggle(domain.TopicSchedules)
		return r, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	b := c.Create(context.Background())
	if b.PaymentTiers[0].Percentage != "45" || b.Progress[string(domain.TopicSchedules)] {
		t.Errorf("template mutated: %+v", b)
	}
}

// TestRemove_ClearsSelection verifies deleting the active record deselects it.
func TestRemove_ClearsSelection(t *testing.T) {
	saver := &fakeSaver{}
	c := newTestCollection(saver)
	a := c.Create(context.Background())
	b := c.Create(context.Background())

	if err := c.Select(a.ID); err != nil {
		t.Fatal(err)
	}
	if !c.Remove(context.Background(), b.ID) {
		t.Fatal("Remove returned false")
	}
	if sel, ok := c.Selected(); !ok || sel.ID != a.ID {
		t.Error("removing another record changed the selection")
	}
	c.Remove(context.Background(), a.ID)
	if _, ok := c.Selected(); ok {
		t.Error("selection survived removal of the selected record")
	}
	if c.Len() != 0 || saver.count() != 4 {
		t.Errorf("Len = %d, saves = %d", c.Len(), saver.count())
	}
}

// TestRemove_AbsentIsNoop verifies nothing is written for an unknown id.
func TestRemove_AbsentIsNoop(t *testing.T) {
	saver := &fakeSaver{}
	c := newTestCollection(saver)
	if c.Remove(context.Background(), "model_0") {
		t.Error("Remove of absent id returned true")
	}
	if saver.count() != 0 {
		t.Errorf("saves = %d, want 0", saver.count())
	}
}

// TestUpdateField_ReplacesWholeSubstructure verifies replace-by-value semantics.
func TestUpdateField_ReplacesWholeSubstructure(t *testing.T) {
	saver := &fakeSaver{}
	c := newTestCollection(saver)
	rec := c.Create(context.Background())

	dates := domain.ImportantDates{CutoffDate: "Lunes"}
	got, err := c.UpdateField(context.Background(), rec.ID, domain.SectionImportantDates, dates)
	if err != nil {
		t.Fatalf("UpdateField: %v", err)
	}
	if got.ImportantDates != dates {
		t.Errorf("ImportantDates = %+v", got.ImportantDates)
	}
	stored, _ := c.Get(rec.ID)
	if stored.ImportantDates.PaymentDate != "" {
		t.Error("substructure was merged, not replaced")
	}
	if saver.last()[0].ImportantDates.CutoffDate != "Lunes" {
		t.Error("persisted collection is stale")
	}
}

// TestUpdateField_Failures verifies absent ids, mismatched values and tier overflow change nothing.
func TestUpdateField_Failures(t *testing.T) {
	saver := &fakeSaver{}
	c := newTestCollection(saver)
	rec := c.Create(context.Background())
	before := saver.count()

	if _, err := c.UpdateField(context.Background(), "model_0", domain.SectionTrainerPanel, domain.TrainerPanel{}); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("absent id err = %v", err)
	}
	if _, err := c.UpdateField(context.Background(), rec.ID, domain.SectionTrainerPanel, "x"); !errors.Is(err, domain.ErrUnknownField) {
		t.Errorf("mismatch err = %v", err)
	}
	six := make([]domain.PaymentTier, 6)
	if _, err := c.UpdateField(context.Background(), rec.ID, domain.SectionPaymentTiers, six); !errors.Is(err, domain.ErrTierLimit) {
		t.Errorf("overflow err = %v", err)
	}
	if saver.count() != before {
		t.Errorf("failed updates wrote %d times", saver.count()-before)
	}
	if got, _ := c.Get(rec.ID); got.TrainerPanel.ModelName != "Nueva Modelo 1" {
		t.Error("failed update changed the record")
	}
}

// TestHydrate verifies startup loading, including the corrupt-storage path.
func TestHydrate(t *testing.T) {
	t.Run("loads in order", func(t *testing.T) {
		c := newTestCollection(nil)
		err := c.Hydrate(context.Background(), fakeLoader{records: []domain.Record{{ID: "b"}, {ID: "a"}}})
		if err != nil {
			t.Fatal(err)
		}
		list := c.List()
		if len(list) != 2 || list[0].ID != "b" {
			t.Errorf("List = %+v", list)
		}
	})
	t.Run("corrupt starts empty", func(t *testing.T) {
		c := newTestCollection(nil)
		err := c.Hydrate(context.Background(), fakeLoader{records: []domain.Record{}, err: fmt.Errorf("%w: bad", domain.ErrStorageCorrupt)})
		if err != nil || c.Len() != 0 {
			t.Errorf("err = %v, Len = %d", err, c.Len())
		}
	})
	t.Run("unavailable storage is returned", func(t *testing.T) {
		c := newTestCollection(nil)
		if err := c.Hydrate(context.Background(), fakeLoader{err: errors.New("disk gone")}); err == nil {
			t.Error("expected error")
		}
	})
}

// TestReplace_ClearsSelectionAndKeepsOrder verifies import semantics.
func TestReplace_ClearsSelectionAndKeepsOrder(t *testing.T) {
	saver := &fakeSaver{}
	c := newTestCollection(saver)
	c.Create(context.Background())

	c.Replace(context.Background(), []domain.Record{{ID: "z"}, {ID: "y"}})
	if _, ok := c.Selected(); ok {
		t.Error("selection survived Replace")
	}
	list := c.List()
	if len(list) != 2 || list[0].ID != "z" || list[1].ID != "y" {
		t.Errorf("List = %+v", list)
	}
	if len(saver.last()) != 2 {
		t.Error("Replace not persisted")
	}
}

// TestPersist_WriteFailureKeepsMemoryState verifies write errors never roll back.
func TestPersist_WriteFailureKeepsMemoryState(t *testing.T) {
	c := newTestCollection(&fakeSaver{err: errors.New("quota exceeded")})
	rec := c.Create(context.Background())
	if _, err := c.Get(rec.ID); err != nil {
		t.Errorf("record lost after failed write: %v", err)
	}
}

// TestPersist_ConcurrentMutationsEndWithLatest verifies the last write reflects the final state.
func TestPersist_ConcurrentMutationsEndWithLatest(t *testing.T) {
	saver := &fakeSaver{}
	c := newTestCollection(saver)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Create(context.Background())
		}()
	}
	wg.Wait()

	if c.Len() != 20 {
		t.Fatalf("Len = %d, want 20", c.Len())
	}
	seen := map[string]bool{}
	for _, r := range c.List() {
		if seen[r.ID] {
			t.Fatalf("duplicate id %s", r.ID)
		}
		seen[r.ID] = true
	}
	if len(saver.last()) != 20 {
		t.Errorf("last save has %d records, want 20", len(saver.last()))
	}
}
