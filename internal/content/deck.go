package content

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"momentum/internal/domain/presentation"
	"momentum/internal/domain/training"
)

var deckFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// RenderDeck snapshots a deck for one record: slide bodies are executed as
// templates against rec and the result is returned as markdown slides.
// PRE: the deck exists in the catalog
// POST: the slides share nothing with rec; later record edits do not reach them
func (c *Catalog) RenderDeck(name string, rec training.Record) (string, []presentation.Slide, error) {
	deck, ok := c.Decks[name]
	if !ok {
		return "", nil, fmt.Errorf("%w: deck %q", training.ErrUnknownField, name)
	}
	slides := make([]presentation.Slide, 0, len(deck.Slides))
	for i, src := range deck.Slides {
		tpl, err := template.New(fmt.Sprintf("%s/%d", name, i)).Funcs(deckFuncs).Option("missingkey=zero").Parse(src.Body)
		if err != nil {
			return "", nil, fmt.Errorf("parse slide %d of %s: %w", i, name, err)
		}
		var buf bytes.Buffer
		if err := tpl.Execute(&buf, rec); err != nil {
			return "", nil, fmt.Errorf("render slide %d of %s: %w", i, name, err)
		}
		slides = append(slides, presentation.Slide{
			Title: src.Title,
			Body:  strings.TrimSpace(buf.String()),
		})
	}
	return deck.Title, slides, nil
}
