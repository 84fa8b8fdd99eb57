package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"momentum/internal/content"
	"momentum/internal/domain/presentation"
	domain "momentum/internal/domain/training"
)

// instantTimer settles transitions synchronously.
type instantTimer struct{}

func (instantTimer) Stop() bool { return false }

func instantSchedule(_ time.Duration, f func()) presentation.Timer {
	f()
	return instantTimer{}
}

// TestExecuteStartPresentation_SnapshotsRecord verifies the deck is built from the record at open time.
// PRE: a record whose cutoff date is edited after opening
// POST: the player still shows the original value
func TestExecuteStartPresentation_SnapshotsRecord(t *testing.T) {
	catalog, err := content.Default()
	if err != nil {
		t.Fatal(err)
	}
	records, rec := newRecords(t)
	player := presentation.NewPlayer(presentation.WithSchedule(instantSchedule))
	deps := StartPresentationDeps{Records: records, Decks: catalog, Player: player}

	view, err := ExecuteStartPresentation(context.Background(), StartPresentationInput{RecordID: rec.ID, Deck: content.DeckOnboarding}, deps)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if view.State != presentation.StateShowing || view.Index != 0 || view.Total != 4 {
		t.Fatalf("view = %+v", view)
	}

	ExecuteEditField(context.Background(), EditFieldInput{RecordID: rec.ID, Section: "importantDates", Field: "cutoffDate", Value: "Domingo"}, EditFieldDeps{Records: records})
	if !player.Next() {
		t.Fatal("Next dropped")
	}
	view = player.View()
	if view.Index != 1 || view.Slide == nil {
		t.Fatalf("view = %+v", view)
	}
	if !strings.Contains(view.Slide.Body, "Martes") || strings.Contains(view.Slide.Body, "Domingo") {
		t.Errorf("slide observed a later edit: %q", view.Slide.Body)
	}
}

// TestExecuteStartPresentation_Errors verifies unknown records and decks leave the player idle.
func TestExecuteStartPresentation_Errors(t *testing.T) {
	catalog, _ := content.Default()
	records, rec := newRecords(t)
	player := presentation.NewPlayer()
	deps := StartPresentationDeps{Records: records, Decks: catalog, Player: player}

	if _, err := ExecuteStartPresentation(context.Background(), StartPresentationInput{RecordID: "model_0", Deck: content.DeckTraining}, deps); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("unknown record err = %v", err)
	}
	if _, err := ExecuteStartPresentation(context.Background(), StartPresentationInput{RecordID: rec.ID, Deck: "finance"}, deps); !errors.Is(err, domain.ErrUnknownField) {
		t.Errorf("unknown deck err = %v", err)
	}
	if player.View().State != presentation.StateIdle {
		t.Error("player left idle after failed start")
	}
}
