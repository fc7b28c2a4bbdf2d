package evaluation

import (
	"context"
	"sort"
	"time"

	"github.com/drdonut/voicecart-backend/internal/cart"
	"github.com/drdonut/voicecart-backend/internal/catalog"
	"github.com/drdonut/voicecart-backend/internal/resolver"
	pkgerrors "github.com/drdonut/voicecart-backend/pkg/errors"
	"github.com/drdonut/voicecart-backend/pkg/logger"
	"github.com/drdonut/voicecart-backend/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Options tune a runner. The zero value gives sequential execution with the
// default resolver threshold.
type Options struct {
	Parallelism   int
	MinConfidence float64
	ModifyBinding cart.ModifyBinding
	Metrics       *metrics.CartMetrics
}

// Runner replays evaluation cases. Cases share nothing mutable, so they run
// in parallel; each case gets a fresh engine over a shared read-only
// catalog.
type Runner struct {
	opts Options
	logg *logger.Logger

	catalogs  map[string]*catalog.Catalog
	resolvers map[string]*resolver.Resolver
}

// NewRunner prepares catalogs and resolvers for every named menu.
func NewRunner(menus []catalog.Menu, opts Options, logg *logger.Logger) (*Runner, error) {
	r := &Runner{
		opts:      opts,
		logg:      logg,
		catalogs:  make(map[string]*catalog.Catalog, len(menus)),
		resolvers: make(map[string]*resolver.Resolver, len(menus)),
	}
	for _, menu := range menus {
		cat, err := catalog.New(menu)
		if err != nil {
			return nil, err
		}
		r.catalogs[menu.Name] = cat
		r.resolvers[menu.Name] = resolver.New(cat, opts.MinConfidence)
	}
	return r, nil
}

// Run replays every case and aggregates the report. The report is
// deterministic for a given dataset and catalog: results come back sorted
// by case id regardless of scheduling.
func (r *Runner) Run(ctx context.Context, cases []Case) (*Report, error) {
	results := make([]CaseResult, len(cases))

	g, ctx := errgroup.WithContext(ctx)
	limit := r.opts.Parallelism
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, c := range cases {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := r.runCase(ctx, c)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].CaseID < results[j].CaseID })
	return &Report{Summary: buildSummary(results), Results: results}, nil
}

func (r *Runner) runCase(ctx context.Context, c Case) (CaseResult, error) {
	start := time.Now()
	cat, ok := r.catalogs[c.Menu]
	if !ok {
		return CaseResult{}, pkgerrors.New(pkgerrors.CodeValidation, "case references unknown menu").
			WithDetails(map[string]any{"case_id": c.ID, "menu": c.Menu})
	}

	engine := cart.NewEngine(cat, r.resolvers[c.Menu], cart.Options{
		ModifyBinding: r.opts.ModifyBinding,
	})
	var diagnostics []cart.Diagnostic
	for _, event := range c.Events {
		diagnostics = append(diagnostics, engine.Apply(event)...)
	}

	actual := CanonicalizeSnapshot(engine.Snapshot())
	expected := CanonicalizeExpected(c.Expected)
	diffs := Diff(actual, expected)
	exact := len(diffs) == 0

	caseCtx := r.logg.WithMenu(r.logg.WithCaseID(ctx, c.ID), c.Menu)
	if exact {
		r.logg.Debug(caseCtx, "case passed")
	} else {
		r.logg.Warn(caseCtx, "case failed")
	}
	r.opts.Metrics.ObserveEvalCase(time.Since(start), exact)

	return CaseResult{
		CaseID:      c.ID,
		Description: c.Description,
		Menu:        c.Menu,
		ExactMatch:  exact,
		F1:          F1(actual, expected),
		ItemAcc:     ItemAccuracy(actual, expected),
		Expected:    expected,
		Actual:      actual,
		Diffs:       diffs,
		Diagnostics: diagnostics,
	}, nil
}
