package orchestrators

import (
	"context"
	"log/slog"

	"momentum/internal/domain/presentation"
)

// StartPresentationInput names the record and deck to play.
type StartPresentationInput struct {
	RecordID string
	Deck     string
}

// StartPresentationDeps holds dependencies for opening a presentation.
type StartPresentationDeps struct {
	Records RecordCollection
	Decks   DeckRenderer
	Player  SlidePlayer
}

// ExecuteStartPresentation snapshots a deck from the record and opens it.
// PRE: the record and deck exist
// POST: the player shows slide 0; any open presentation is replaced
// INVARIANT: later record edits do not change the open slides
func ExecuteStartPresentation(_ context.Context, input StartPresentationInput, deps StartPresentationDeps) (presentation.View, error) {
	rec, err := deps.Records.Get(input.RecordID)
	if err != nil {
		return presentation.View{}, err
	}
	title, slides, err := deps.Decks.RenderDeck(input.Deck, rec)
	if err != nil {
		return presentation.View{}, err
	}
	if err := deps.Player.Open(title, slides); err != nil {
		return presentation.View{}, err
	}
	slog.Info("presentation_opened", "record_id", input.RecordID, "deck", input.Deck, "slides", len(slides))
	return deps.Player.View(), nil
}
