package web

import (
	"net/http"

	"momentum/internal/application/orchestrators"
	"momentum/internal/domain/presentation"
)

// navigation is the JSON answer to a player command.
type navigation struct {
	Applied bool              `json:"applied"`
	View    presentation.View `json:"view"`
}

// handleStartPresentation snapshots a deck from the record and opens it.
func handleStartPresentation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	view, err := orchestrators.ExecuteStartPresentation(r.Context(), orchestrators.StartPresentationInput{
		RecordID: id,
		Deck:     r.PathValue("deck"),
	}, orchestrators.StartPresentationDeps{
		Records: app.Records,
		Decks:   app.Catalog,
		Player:  app.Player,
	})
	if err != nil {
		respondError(w, r, err, recordURL(id, ""))
		return
	}
	if isHTMLRequest(r) {
		http.Redirect(w, r, "/presentation", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// presentationPage is the player template data.
type presentationPage struct {
	presentation.View
	FadeMs int
}

// handlePresentation shows the current slide. An idle player sends HTML
// clients back to where they were.
func handlePresentation(w http.ResponseWriter, r *http.Request) {
	view := app.Player.View()
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, view)
		return
	}
	if view.State == presentation.StateIdle {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, http.StatusOK, "presentation.html", view.Title, presentationPage{
		View:   view,
		FadeMs: int(presentation.FadeDelay.Milliseconds()),
	})
}

func navigated(w http.ResponseWriter, r *http.Request, applied bool) {
	if isHTMLRequest(r) {
		http.Redirect(w, r, "/presentation", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, navigation{Applied: applied, View: app.Player.View()})
}

// handlePresentationNext advances one slide. Requests during a transition are dropped.
func handlePresentationNext(w http.ResponseWriter, r *http.Request) {
	navigated(w, r, app.Player.Next())
}

// handlePresentationPrevious goes back one slide.
func handlePresentationPrevious(w http.ResponseWriter, r *http.Request) {
	navigated(w, r, app.Player.Previous())
}

// handlePresentationClose returns the player to idle.
func handlePresentationClose(w http.ResponseWriter, r *http.Request) {
	app.Player.Close()
	navigated(w, r, true)
}

// handlePresentationKey applies a keyboard shortcut posted by the player page.
func handlePresentationKey(w http.ResponseWriter, r *http.Request) {
	var key string
	if isJSONBody(r) {
		var req struct {
			Key string `json:"key"`
		}
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		key = req.Key
	} else {
		key = r.FormValue("key")
	}
	if presentation.CommandForKey(key) == presentation.CommandNone {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported key " + key})
		return
	}
	navigated(w, r, app.Player.HandleKey(key))
}
