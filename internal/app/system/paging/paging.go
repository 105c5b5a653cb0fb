// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultLimit is the page size when the client sends none.
const DefaultLimit = 10

// MaxLimit caps client-supplied page sizes.
const MaxLimit = 100

// Params is a 1-based page number and a page size.
type Params struct {
	Page  int
	Limit int
}

// New clamps page and limit into range. Non-positive values fall back to
// page 1 and DefaultLimit; limits above MaxLimit are capped.
func New(page, limit int) Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

// Parse reads ?page= and ?limit= from the request.
func Parse(r *http.Request) Params {
	return New(atoi(query.Get(r, "page")), atoi(query.Get(r, "limit")))
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Skip is the number of documents before this page.
func (p Params) Skip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

// ApplyToFind sets skip and limit on a Find.
func (p Params) ApplyToFind(find *options.FindOptions) *options.FindOptions {
	return find.SetSkip(p.Skip()).SetLimit(int64(p.Limit))
}

// Page is the paginated payload returned to clients.
type Page[T any] struct {
	Docs          []T   `json:"docs"`
	TotalDocs     int64 `json:"totalDocs"`
	Limit         int   `json:"limit"`
	Page          int   `json:"page"`
	TotalPages    int   `json:"totalPages"`
	PagingCounter int64 `json:"pagingCounter"`
	HasPrevPage   bool  `json:"hasPrevPage"`
	HasNextPage   bool  `json:"hasNextPage"`
	PrevPage      *int  `json:"prevPage"`
	NextPage      *int  `json:"nextPage"`
}

// Build assembles a Page from one page of docs and the total match count.
func Build[T any](docs []T, total int64, p Params) Page[T] {
	if docs == nil {
		docs = []T{}
	}
	pages := 1
	if total > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	out := Page[T]{
		Docs:          docs,
		TotalDocs:     total,
		Limit:         p.Limit,
		Page:          p.Page,
		TotalPages:    pages,
		PagingCounter: p.Skip() + 1,
		HasPrevPage:   p.Page > 1,
		HasNextPage:   p.Page < pages,
	}
	if out.HasPrevPage {
		prev := p.Page - 1
		out.PrevPage = &prev
	}
	if out.HasNextPage {
		next := p.Page + 1
		out.NextPage = &next
	}
	return out
}
