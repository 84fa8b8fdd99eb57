package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"momentum/internal/adapters/http/middleware"
	"momentum/internal/application/listutil"
	"momentum/internal/application/orchestrators"
	"momentum/internal/application/projections"
	domain "momentum/internal/domain/training"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer renders slide and module bodies. Raw HTML in the input is
// escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal_error", "error", err.Error(), "request_id", middleware.RequestID(r.Context()))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json_encode_failed", "error", err)
	}
}

// Notices shown after a redirect. Only these keys are ever rendered.
var notices = map[string]string{
	"import_invalid":   "El archivo no es un respaldo válido. No se modificó ningún registro.",
	"imported":         "Respaldo importado correctamente.",
	"export_empty":     "No hay registros para exportar.",
	"backup_sent":      "Respaldo enviado por correo.",
	"backup_off":       "El envío de respaldos por correo no está configurado.",
	"summary_failed":   "No se pudo generar el resumen. Inténtalo de nuevo.",
	"tier_limit":       "Se alcanzó el máximo de niveles de pago.",
	"record_not_found": "El registro ya no existe.",
}

// noticeFor maps a user-facing failure onto its notice key.
func noticeFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrImportInvalid):
		return "import_invalid"
	case errors.Is(err, domain.ErrExportEmpty):
		return "export_empty"
	case errors.Is(err, domain.ErrSummaryFailed):
		return "summary_failed"
	case errors.Is(err, domain.ErrTierLimit):
		return "tier_limit"
	case errors.Is(err, domain.ErrRecordNotFound):
		return "record_not_found"
	}
	return ""
}

// statusFor maps domain errors onto HTTP status codes; 0 means unexpected.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrImportInvalid),
		errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrTierLimit):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrExportEmpty):
		return http.StatusConflict
	case errors.Is(err, domain.ErrSummaryFailed):
		return http.StatusBadGateway
	}
	return 0
}

// respondError answers a failed operation. HTML clients are sent back to
// `back` with a notice when one exists for the error.
func respondError(w http.ResponseWriter, r *http.Request, err error, back string) {
	status := statusFor(err)
	if status == 0 {
		internalError(w, r, err)
		return
	}
	if isHTMLRequest(r) {
		if key := noticeFor(err); key != "" {
			redirectWithNotice(w, r, back, key)
			return
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func redirectWithNotice(w http.ResponseWriter, r *http.Request, target, key string) {
	if key != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + "notice=" + url.QueryEscape(key)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// recordURL is the record screen for a view; an empty view is the default one.
func recordURL(id, view string) string {
	u := "/records/" + url.PathEscape(id)
	if view != "" && view != projections.ViewOnboarding {
		u += "?section=" + url.QueryEscape(view)
	}
	return u
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// dict builds a map from alternating keys and values for sub-templates.
func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, errors.New("dict needs key/value pairs")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", kv[i])
		}
		m[k] = kv[i+1]
	}
	return m, nil
}

// page is the data every template receives.
type page struct {
	Title  string
	Notice string
	Data   any
}

func renderTemplate(w http.ResponseWriter, r *http.Request, status int, templateName, title string, data any) {
	operator, _ := middleware.GetOperatorFromContext(r.Context())
	funcMap := template.FuncMap{
		"csrfField":      func() template.HTML { return csrf.TemplateField(r) },
		"csrfToken":      func() string { return csrf.Token(r) },
		"operator":       func() string { return operator.Name },
		"renderMarkdown": renderMarkdown,
		"sectionTitle":   projections.SectionTitle,
		"recordURL":      recordURL,
		"add":            func(a, b int) int { return a + b },
		"dict":           dict,
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(assets, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, page{Title: title, Notice: notices[r.URL.Query().Get("notice")], Data: data}); err != nil {
		internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func recordsDeps() orchestrators.ManageRecordsDeps {
	return orchestrators.ManageRecordsDeps{Records: app.Records}
}

// handleHome shows the selector, or the active record when one is selected.
// A search or paging query always shows the selector.
func handleHome(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	browsing := q.Has("q") || q.Has("sort") || q.Has("page")
	if isHTMLRequest(r) && !browsing {
		if rec, ok := app.Records.Selected(); ok {
			redirectWithNotice(w, r, recordURL(rec.ID, ""), r.URL.Query().Get("notice"))
			return
		}
	}
	handleListRecords(w, r)
}

// handleListRecords returns the selector cards.
func handleListRecords(w http.ResponseWriter, r *http.Request) {
	list := projections.QueryGetRecordList(r.Context(),
		projections.GetRecordListQuery{Params: listutil.Parse(r.URL.Query())},
		projections.GetRecordListDeps{Records: app.Records})
	if isHTMLRequest(r) {
		renderTemplate(w, r, http.StatusOK, "selector.html", "Talentos Momentum", list)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleCreateRecord adds a record from the template and opens it.
func handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	rec := orchestrators.ExecuteCreateRecord(r.Context(), recordsDeps())
	if isHTMLRequest(r) {
		http.Redirect(w, r, recordURL(rec.ID, ""), http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// handleDeleteRecord removes a record. The browser form asks for confirmation first.
func handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteDeleteRecord(r.Context(), orchestrators.DeleteRecordInput{RecordID: r.PathValue("id")}, recordsDeps())
	if err != nil {
		respondError(w, r, err, "/")
		return
	}
	if isHTMLRequest(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSelectRecord makes a record active.
func handleSelectRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := orchestrators.ExecuteSelectRecord(r.Context(), id, recordsDeps()); err != nil {
		respondError(w, r, err, "/")
		return
	}
	if isHTMLRequest(r) {
		http.Redirect(w, r, recordURL(id, ""), http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeselectRecord returns to the selector.
func handleDeselectRecord(w http.ResponseWriter, r *http.Request) {
	orchestrators.ExecuteSelectRecord(r.Context(), "", recordsDeps())
	if isHTMLRequest(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// recordPage is the record template data.
type recordPage struct {
	projections.GetRecordDetailResult
	Summary    string
	Views      []string
	CanBackup  bool
	DeckTitles map[string]string
}

// handleGetRecord renders one record in the requested view.
func handleGetRecord(w http.ResponseWriter, r *http.Request) {
	renderRecord(w, r, http.StatusOK, r.PathValue("id"), r.URL.Query().Get("section"), "")
}

func renderRecord(w http.ResponseWriter, r *http.Request, status int, id, view, summaryText string) {
	detail, err := projections.QueryGetRecordDetail(r.Context(),
		projections.GetRecordDetailQuery{RecordID: id, View: view},
		projections.GetRecordDetailDeps{Records: app.Records, Catalog: app.Catalog})
	if err != nil {
		respondError(w, r, err, "/")
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, status, detail)
		return
	}
	decks := make(map[string]string, len(app.Catalog.Decks))
	for name, d := range app.Catalog.Decks {
		decks[name] = d.Title
	}
	title := strings.TrimSpace(detail.Record.TrainerPanel.ModelName)
	if title == "" {
		title = projections.UnnamedLabel
	}
	renderTemplate(w, r, status, "record.html", title, recordPage{
		GetRecordDetailResult: detail,
		Summary:               summaryText,
		Views:                 []string{projections.ViewOnboarding, projections.ViewTraining, projections.ViewTrainer},
		CanBackup:             len(app.BackupTo) > 0,
		DeckTitles:            decks,
	})
}
