package web

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"momentum/internal/application/orchestrators"
	domain "momentum/internal/domain/training"
)

// maxImportBytes bounds an uploaded backup file.
const maxImportBytes = 8 << 20

func transferDeps() orchestrators.TransferDeps {
	return orchestrators.TransferDeps{Records: app.Records, Now: timeNow}
}

// handleExport downloads the whole collection as a dated JSON file.
func handleExport(w http.ResponseWriter, r *http.Request) {
	export, err := orchestrators.ExecuteExportCollection(r.Context(), transferDeps())
	if err != nil {
		respondError(w, r, err, "/")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.Write(export.Data)
	slog.Info("collection_exported", "records", export.Count, "file", export.FileName)
}

// readImport extracts the file bytes and the confirmation answer. Browsers
// post a multipart form with `file` and `confirm=yes`; API clients post the
// JSON document itself with ?confirm=yes.
func readImport(w http.ResponseWriter, r *http.Request) (orchestrators.ImportCollectionInput, error) {
	if isJSONBody(r) {
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
		if err != nil {
			return orchestrators.ImportCollectionInput{}, err
		}
		return orchestrators.ImportCollectionInput{Data: data, Confirmed: r.URL.Query().Get("confirm") == "yes"}, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		return orchestrators.ImportCollectionInput{}, err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return orchestrators.ImportCollectionInput{}, err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return orchestrators.ImportCollectionInput{}, err
	}
	return orchestrators.ImportCollectionInput{Data: data, Confirmed: r.FormValue("confirm") == "yes"}, nil
}

// handleImport replaces the collection with an uploaded backup.
func handleImport(w http.ResponseWriter, r *http.Request) {
	input, err := readImport(w, r)
	if err != nil {
		slog.Warn("import_upload_unreadable", "error", err)
		respondError(w, r, domain.ErrImportInvalid, "/")
		return
	}

	n, err := orchestrators.ExecuteImportCollection(r.Context(), input, transferDeps())
	switch {
	case errors.Is(err, domain.ErrImportCancelled):
		if isHTMLRequest(r) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	case err != nil:
		respondError(w, r, err, "/")
		return
	}
	if isHTMLRequest(r) {
		redirectWithNotice(w, r, "/", "imported")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}

// handleEmailBackup mails the export file to the configured recipients.
func handleEmailBackup(w http.ResponseWriter, r *http.Request) {
	if len(app.BackupTo) == 0 {
		if isHTMLRequest(r) {
			redirectWithNotice(w, r, "/", "backup_off")
			return
		}
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "backup e-mail is not configured"})
		return
	}
	res, err := orchestrators.ExecuteEmailBackup(r.Context(), orchestrators.EmailBackupDeps{
		Transfer:   transferDeps(),
		Sender:     app.Sender,
		Recipients: app.BackupTo,
	})
	if err != nil {
		respondError(w, r, err, "/")
		return
	}
	slog.Info("backup_emailed", "message_id", res.MessageID, "recipients", len(app.BackupTo))
	if isHTMLRequest(r) {
		redirectWithNotice(w, r, "/", "backup_sent")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"messageId": res.MessageID})
}
