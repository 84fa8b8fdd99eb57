package listutil

import (
	"net/url"
	"strconv"
	"strings"
)

// Sort columns accepted by the record selector.
const (
	SortName       = "name"
	SortStartDate  = "start"
	SortCompletion = "progress"
)

var sortColumns = []string{SortName, SortStartDate, SortCompletion}

// PerPageOptions are the allowed cards-per-page values. Zero shows every card.
var PerPageOptions = []int{0, 6, 12, 24, 48}

// Params carries the selector's search, sort and paging parameters.
type Params struct {
	Search  string // case-insensitive substring of the model name
	Sort    string // one of the Sort* columns, "" keeps collection order
	Desc    bool
	Page    int // 1-indexed
	PerPage int // 0 disables paging
}

// Parse extracts q, sort, dir, page and per_page from URL query values.
// PRE: none
// POST: unknown sort columns and per_page values fall back to collection order
// and no paging; Page >= 1
func Parse(q url.Values) Params {
	p := Params{
		Search: strings.TrimSpace(q.Get("q")),
		Desc:   q.Get("dir") == "desc",
	}
	if col := q.Get("sort"); contains(sortColumns, col) {
		p.Sort = col
	}
	p.Page, _ = strconv.Atoi(q.Get("page"))
	if p.Page < 1 {
		p.Page = 1
	}
	if n, err := strconv.Atoi(q.Get("per_page")); err == nil && containsInt(PerPageOptions, n) {
		p.PerPage = n
	}
	return p
}

// Matches reports whether a model name satisfies the search term.
func (p Params) Matches(name string) bool {
	if p.Search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(p.Search))
}

// Query renders the parameters back into a query string, omitting defaults.
// page overrides p.Page so pagination links can be built from one value.
func (p Params) Query(page int) string {
	q := url.Values{}
	if p.Search != "" {
		q.Set("q", p.Search)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
		if p.Desc {
			q.Set("dir", "desc")
		}
	}
	if p.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(p.PerPage))
		if page > 1 {
			q.Set("page", strconv.Itoa(page))
		}
	}
	return q.Encode()
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPageInfo computes pagination metadata. perPage 0 puts everything on one page.
// PRE: total >= 0
// POST: TotalPages >= 1; Page clamped to [1, TotalPages]
func NewPageInfo(page, perPage, total int) PageInfo {
	totalPages := 1
	if perPage > 0 && total > 0 {
		totalPages = (total + perPage - 1) / perPage
	}
	page = min(max(page, 1), totalPages)
	return PageInfo{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Bounds returns the half-open slice range for the current page.
// POST: 0 <= start <= end <= Total
func (p PageInfo) Bounds() (start, end int) {
	if p.PerPage == 0 {
		return 0, p.Total
	}
	start = min((p.Page-1)*p.PerPage, p.Total)
	return start, min(start+p.PerPage, p.Total)
}

// PageNumbers returns at most 5 page numbers centered on the current page.
func (p PageInfo) PageNumbers() []int {
	const maxButtons = 5
	start := max(p.Page-maxButtons/2, 1)
	end := start + maxButtons - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = max(end-maxButtons+1, 1)
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// ShowPagination reports whether pagination controls should be displayed.
func (p PageInfo) ShowPagination() bool {
	return p.TotalPages > 1
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsInt(list []int, n int) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}
