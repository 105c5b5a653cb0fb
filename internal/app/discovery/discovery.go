// Package discovery finds donors for a blood request. When the exact query
// finds nobody it relaxes the filters one stage at a time and reports which
// stage answered.
package discovery

import (
	"context"
	"fmt"
	"strings"

	userstore "github.com/dalemusser/bloodlink/internal/app/store/users"
	"github.com/dalemusser/bloodlink/internal/app/system/apperr"
	"github.com/dalemusser/bloodlink/internal/app/system/metrics"
	"github.com/dalemusser/bloodlink/internal/app/system/paging"
	"github.com/dalemusser/bloodlink/internal/domain/models"
	"go.uber.org/zap"
)

// Directory runs one donor query.
type Directory interface {
	FindDonors(ctx context.Context, f userstore.DonorFilter, p paging.Params) ([]models.User, int64, error)
}

// Criteria is what the caller searched for. Empty fields are unfiltered.
type Criteria struct {
	BloodGroup string `json:"bloodGroup,omitempty"`
	District   string `json:"district,omitempty"`
	Upazila    string `json:"upazila,omitempty"`
}

func (c Criteria) trimmed() Criteria {
	return Criteria{
		BloodGroup: strings.TrimSpace(c.BloodGroup),
		District:   strings.TrimSpace(c.District),
		Upazila:    strings.TrimSpace(c.Upazila),
	}
}

const (
	SearchExact       = "exact"
	SearchAlternative = "alternative"
)

// Result is a search answer. OriginalSearch is set only for alternative
// results.
type Result struct {
	Donors         paging.Page[models.User]
	Message        string
	SearchType     string
	Stage          string
	OriginalSearch *Criteria
}

// stage is one relaxation step. applies reports whether the step runs for
// the given criteria; filter builds its query; message renders the result
// line for n documents.
type stage struct {
	name    string
	applies func(c Criteria) bool
	filter  func(c Criteria) userstore.DonorFilter
	message func(c Criteria, n int) string
}

// fallbacks run in order after the exact query comes back empty.
var fallbacks = []stage{
	{
		name:    "blood_district",
		applies: func(c Criteria) bool { return c.BloodGroup != "" && c.District != "" },
		filter: func(c Criteria) userstore.DonorFilter {
			return userstore.DonorFilter{BloodGroup: c.BloodGroup, District: c.District}
		},
		message: func(c Criteria, n int) string {
			return fmt.Sprintf("Found %d donor(s) in %s with blood group %s", n, c.District, c.BloodGroup)
		},
	},
	{
		name:    "blood",
		applies: func(c Criteria) bool { return c.BloodGroup != "" },
		filter: func(c Criteria) userstore.DonorFilter {
			return userstore.DonorFilter{BloodGroup: c.BloodGroup}
		},
		message: func(c Criteria, n int) string {
			return fmt.Sprintf("Found %d donor(s) with blood group %s", n, c.BloodGroup)
		},
	},
	{
		name:    "location",
		applies: func(c Criteria) bool { return c.District != "" },
		filter: func(c Criteria) userstore.DonorFilter {
			return userstore.DonorFilter{District: c.District, Upazila: c.Upazila}
		},
		message: func(c Criteria, n int) string {
			if c.Upazila != "" {
				return fmt.Sprintf("Found %d donor(s) in %s, %s", n, c.District, c.Upazila)
			}
			return fmt.Sprintf("Found %d donor(s) in %s", n, c.District)
		},
	},
	{
		name:    "all",
		applies: func(Criteria) bool { return true },
		filter:  func(Criteria) userstore.DonorFilter { return userstore.DonorFilter{} },
		message: func(_ Criteria, n int) string {
			return fmt.Sprintf("Showing all %d active donor(s)", n)
		},
	},
}

type Engine struct {
	dir Directory
	log *zap.Logger
}

func New(dir Directory, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{dir: dir, log: logger}
}

// Search runs the exact query and then each applicable fallback until one
// returns documents on the requested page. A fallback whose filter is the
// same as one already run is skipped.
func (e *Engine) Search(ctx context.Context, c Criteria, p paging.Params) (Result, error) {
	c = c.trimmed()
	exactFilter := userstore.DonorFilter(c)

	exact, err := e.run(ctx, exactFilter, p)
	if err != nil {
		return Result{}, err
	}
	if len(exact.Docs) > 0 {
		return e.done(Result{
			Donors:     exact,
			Message:    fmt.Sprintf("Found %d donor(s) matching all criteria", len(exact.Docs)),
			SearchType: SearchExact,
			Stage:      SearchExact,
		}, c), nil
	}

	tried := []userstore.DonorFilter{exactFilter}
	for _, st := range fallbacks {
		if !st.applies(c) {
			continue
		}
		f := st.filter(c)
		if seen(tried, f) {
			continue
		}
		tried = append(tried, f)

		page, err := e.run(ctx, f, p)
		if err != nil {
			return Result{}, err
		}
		if len(page.Docs) == 0 {
			continue
		}
		orig := c
		return e.done(Result{
			Donors:         page,
			Message:        st.message(c, len(page.Docs)),
			SearchType:     SearchAlternative,
			Stage:          st.name,
			OriginalSearch: &orig,
		}, c), nil
	}

	return e.done(Result{
		Donors:     exact,
		Message:    "No donors found",
		SearchType: SearchExact,
		Stage:      "none",
	}, c), nil
}

func (e *Engine) run(ctx context.Context, f userstore.DonorFilter, p paging.Params) (paging.Page[models.User], error) {
	docs, total, err := e.dir.FindDonors(ctx, f, p)
	if err != nil {
		return paging.Page[models.User]{}, apperr.Upstream("Error searching donors", err)
	}
	return paging.Build(docs, total, p), nil
}

func (e *Engine) done(r Result, c Criteria) Result {
	metrics.SearchStages.WithLabelValues(r.Stage).Inc()
	e.log.Debug("donor search",
		zap.String("blood_group", c.BloodGroup),
		zap.String("district", c.District),
		zap.String("upazila", c.Upazila),
		zap.String("stage", r.Stage),
		zap.Int("returned", len(r.Donors.Docs)))
	return r
}

func seen(tried []userstore.DonorFilter, f userstore.DonorFilter) bool {
	for _, t := range tried {
		if t == f {
			return true
		}
	}
	return false
}
