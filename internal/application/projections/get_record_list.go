package projections

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"momentum/internal/application/listutil"
	domain "momentum/internal/domain/training"
)

// UnnamedLabel is shown for a record whose model name is blank.
const UnnamedLabel = "Sin Nombre"

// RecordCard is one entry of the selector.
type RecordCard struct {
	ID        string `json:"id"`
	ModelName string `json:"modelName"`
	StartDate string `json:"startDate"`
	Ratio     int    `json:"completionRatio"`
	Selected  bool   `json:"selected"`
}

// GetRecordListQuery narrows and orders the selector. The zero value lists
// every record in collection order.
type GetRecordListQuery struct {
	listutil.Params
}

// GetRecordListResult carries the selector cards for the requested page.
type GetRecordListResult struct {
	Cards      []RecordCard      `json:"records"`
	SelectedID string            `json:"selectedId,omitempty"`
	Page       listutil.PageInfo `json:"page"`
	Params     listutil.Params   `json:"-"`
}

// GetRecordListDeps holds dependencies for QueryGetRecordList.
type GetRecordListDeps struct {
	Records RecordReader
}

// QueryGetRecordList builds the selector view.
// POST: one card per matching record; Ratio is recomputed from progress on every call
// POST: without a sort column cards keep collection order
func QueryGetRecordList(_ context.Context, query GetRecordListQuery, deps GetRecordListDeps) GetRecordListResult {
	result := GetRecordListResult{Params: query.Params}
	if sel, ok := deps.Records.Selected(); ok {
		result.SelectedID = sel.ID
	}
	records := deps.Records.List()
	cards := make([]RecordCard, 0, len(records))
	for _, r := range records {
		name := strings.TrimSpace(r.TrainerPanel.ModelName)
		if name == "" {
			name = UnnamedLabel
		}
		if !query.Matches(name) {
			continue
		}
		cards = append(cards, RecordCard{
			ID:        r.ID,
			ModelName: name,
			StartDate: r.TrainerPanel.StartDate,
			Ratio:     domain.CompletionRatio(r.Progress),
			Selected:  r.ID == result.SelectedID,
		})
	}
	sortCards(cards, query.Sort, query.Desc)

	result.Page = listutil.NewPageInfo(query.Page, query.PerPage, len(cards))
	start, end := result.Page.Bounds()
	result.Cards = cards[start:end]
	return result
}

func sortCards(cards []RecordCard, column string, desc bool) {
	var less func(a, b RecordCard) int
	switch column {
	case listutil.SortName:
		less = func(a, b RecordCard) int {
			return strings.Compare(strings.ToLower(a.ModelName), strings.ToLower(b.ModelName))
		}
	case listutil.SortStartDate:
		less = func(a, b RecordCard) int { return strings.Compare(a.StartDate, b.StartDate) }
	case listutil.SortCompletion:
		less = func(a, b RecordCard) int { return cmp.Compare(a.Ratio, b.Ratio) }
	default:
		return
	}
	slices.SortStableFunc(cards, func(a, b RecordCard) int {
		if desc {
			return less(b, a)
		}
		return less(a, b)
	})
}
