package web

import (
	"encoding/json"
	"io"
	"net/http"

	"momentum/internal/application/orchestrators"
	"momentum/internal/application/projections"
	domain "momentum/internal/domain/training"
)

// maxSectionBytes bounds a JSON section body.
const maxSectionBytes = 64 << 10

// editFieldRequest is the JSON form of a field editor change.
type editFieldRequest struct {
	Section string `json:"section"`
	Field   string `json:"field"`
	Value   string `json:"value"`
	TierID  string `json:"tierId,omitempty"`
}

// recordChanged answers a successful edit: HTML clients go back to the view
// they came from, API clients get the updated record.
func recordChanged(w http.ResponseWriter, r *http.Request, rec domain.Record, status int) {
	if isHTMLRequest(r) {
		http.Redirect(w, r, recordURL(rec.ID, r.FormValue("view")), http.StatusSeeOther)
		return
	}
	writeJSON(w, status, rec)
}

// handleEditField applies one field editor change.
func handleEditField(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	input := orchestrators.EditFieldInput{RecordID: id}
	if isJSONBody(r) {
		var req editFieldRequest
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		input.Section, input.Field, input.Value, input.TierID = req.Section, req.Field, req.Value, req.TierID
	} else {
		input.Section = r.FormValue("section")
		input.Field = r.FormValue("field")
		input.Value = r.FormValue("value")
		input.TierID = r.FormValue("tierID")
	}

	rec, err := orchestrators.ExecuteEditField(r.Context(), input, orchestrators.EditFieldDeps{Records: app.Records})
	if err != nil {
		respondError(w, r, err, recordURL(id, r.FormValue("view")))
		return
	}
	recordChanged(w, r, rec, http.StatusOK)
}

// handleReplaceSection replaces a whole substructure with the request body.
func handleReplaceSection(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSectionBytes))
	if err != nil {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	if !json.Valid(body) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body is not JSON"})
		return
	}
	rec, err := orchestrators.ExecuteReplaceSection(r.Context(), orchestrators.ReplaceSectionInput{
		RecordID: r.PathValue("id"),
		Section:  r.PathValue("section"),
		Body:     body,
	}, orchestrators.EditFieldDeps{Records: app.Records})
	if err != nil {
		respondError(w, r, err, "/")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func tierDeps() orchestrators.PaymentTierDeps {
	return orchestrators.PaymentTierDeps{Records: app.Records, GenerateID: generateID}
}

// handleAddTier appends an empty payment tier.
func handleAddTier(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, err := orchestrators.ExecuteAddTier(r.Context(), orchestrators.PaymentTierInput{RecordID: id}, tierDeps())
	if err != nil {
		respondError(w, r, err, recordURL(id, ""))
		return
	}
	recordChanged(w, r, rec, http.StatusCreated)
}

// handleRemoveTier deletes one payment tier.
func handleRemoveTier(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, err := orchestrators.ExecuteRemoveTier(r.Context(), orchestrators.PaymentTierInput{
		RecordID: id,
		TierID:   r.PathValue("tierID"),
	}, tierDeps())
	if err != nil {
		respondError(w, r, err, recordURL(id, ""))
		return
	}
	recordChanged(w, r, rec, http.StatusOK)
}

func toggleDeps() orchestrators.ToggleDeps {
	return orchestrators.ToggleDeps{Records: app.Records}
}

// handleToggleProgress flips one checklist topic.
func handleToggleProgress(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, err := orchestrators.ExecuteToggleProgress(r.Context(), id, r.PathValue("topic"), toggleDeps())
	if err != nil {
		respondError(w, r, err, recordURL(id, r.FormValue("view")))
		return
	}
	recordChanged(w, r, rec, http.StatusOK)
}

// handleToggleExercise flips one practical exercise.
func handleToggleExercise(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, err := orchestrators.ExecuteToggleExercise(r.Context(), id, r.PathValue("exerciseID"), toggleDeps())
	if err != nil {
		respondError(w, r, err, recordURL(id, r.FormValue("view")))
		return
	}
	recordChanged(w, r, rec, http.StatusOK)
}

// handleToggleExperience flips the prior-experience flag.
func handleToggleExperience(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, err := orchestrators.ExecuteToggleExperience(r.Context(), id, toggleDeps())
	if err != nil {
		respondError(w, r, err, recordURL(id, r.FormValue("view")))
		return
	}
	recordChanged(w, r, rec, http.StatusOK)
}

// handleGenerateSummary asks the generator for a progress summary. The text
// is shown once and never stored on the record.
func handleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	text, err := orchestrators.ExecuteGenerateSummary(r.Context(), id, orchestrators.GenerateSummaryDeps{
		Records:   app.Records,
		Generator: app.Summarizer,
	})
	if err != nil {
		respondError(w, r, err, recordURL(id, projections.ViewTrainer))
		return
	}
	if isHTMLRequest(r) {
		renderRecord(w, r, http.StatusOK, id, projections.ViewTrainer, text)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"recordId": id, "summary": text})
}
