package paging

import (
	"net/http/httptest"
	"testing"
)

func TestNew_Clamps(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		want        Params
	}{
		{"defaults", 0, 0, Params{Page: 1, Limit: DefaultLimit}},
		{"negative", -3, -1, Params{Page: 1, Limit: DefaultLimit}},
		{"in range", 2, 25, Params{Page: 2, Limit: 25}},
		{"capped", 1, 1000, Params{Page: 1, Limit: MaxLimit}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.page, tt.limit); got != tt.want {
				t.Errorf("New(%d, %d) = %+v, want %+v", tt.page, tt.limit, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/fundings?page=3&limit=abc", nil)
	got := Parse(r)
	if got.Page != 3 || got.Limit != DefaultLimit {
		t.Errorf("Parse = %+v, want page 3 limit %d", got, DefaultLimit)
	}
}

func TestSkip(t *testing.T) {
	if got := (Params{Page: 3, Limit: 10}).Skip(); got != 20 {
		t.Errorf("Skip = %d, want 20", got)
	}
}

func TestBuild_MiddlePage(t *testing.T) {
	p := Build([]int{11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, 25, Params{Page: 2, Limit: 10})

	if p.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", p.TotalPages)
	}
	if p.PagingCounter != 11 {
		t.Errorf("PagingCounter = %d, want 11", p.PagingCounter)
	}
	if !p.HasPrevPage || !p.HasNextPage {
		t.Errorf("expected both prev and next, got %+v", p)
	}
	if p.PrevPage == nil || *p.PrevPage != 1 {
		t.Errorf("PrevPage = %v, want 1", p.PrevPage)
	}
	if p.NextPage == nil || *p.NextPage != 3 {
		t.Errorf("NextPage = %v, want 3", p.NextPage)
	}
}

func TestBuild_Empty(t *testing.T) {
	p := Build[int](nil, 0, New(1, 10))

	if p.Docs == nil {
		t.Error("Docs should be an empty slice, not nil")
	}
	if p.TotalPages != 1 {
		t.Errorf("TotalPages = %d, want 1", p.TotalPages)
	}
	if p.HasNextPage || p.HasPrevPage {
		t.Errorf("expected no neighbours, got %+v", p)
	}
	if p.PrevPage != nil || p.NextPage != nil {
		t.Error("PrevPage and NextPage should be nil")
	}
}
