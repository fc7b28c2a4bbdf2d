package evaluation

import (
	"bytes"
	"context"
	"testing"

	"github.com/drdonut/voicecart-backend/internal/catalog"
	"github.com/drdonut/voicecart-backend/pkg/logger"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/sebdah/goldie/v2"
)

func newTestRunner(t *testing.T, opts Options) *Runner {
	t.Helper()
	logg := logger.New(logger.Options{Level: zerolog.Disabled})
	r, err := NewRunner(catalog.BuiltInMenus(), opts, logg)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r
}

func loadTestDataset(t *testing.T) *Dataset {
	t.Helper()
	ds, err := LoadDataset("testdata/cases.json")
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	return ds
}

func TestRunAggregates(t *testing.T) {
	r := newTestRunner(t, Options{Parallelism: 4})
	ds := loadTestDataset(t)

	report, err := r.Run(context.Background(), ds.Cases)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	s := report.Summary
	if s.TotalCases != 6 || s.ExactMatches != 5 {
		t.Fatalf("summary = %+v", s)
	}
	if s.ByMenu["small"].Total != 5 || s.ByMenu["large"].Total != 1 {
		t.Fatalf("by menu = %+v", s.ByMenu)
	}
	if s.DiagnosticCounts["unresolved_item"] != 1 {
		t.Fatalf("diagnostic counts = %+v", s.DiagnosticCounts)
	}
	if report.Passed(1.0) {
		t.Fatal("gate of 1.0 should fail with a mismatching case")
	}
	if !report.Passed(0.8) {
		t.Fatal("gate of 0.8 should pass")
	}

	for _, result := range report.Results {
		if result.CaseID != "small-005-wrong-size" && !result.ExactMatch {
			t.Fatalf("unexpected failure: %+v", result)
		}
		if result.CaseID == "small-005-wrong-size" && len(result.Diffs) != 2 {
			t.Fatalf("diffs = %+v", result.Diffs)
		}
	}
}

func TestRunIsDeterministic(t *testing.T) {
	r := newTestRunner(t, Options{Parallelism: 8})
	ds := loadTestDataset(t)
	ctx := context.Background()

	first, err := r.Run(ctx, ds.Cases)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := r.Run(ctx, ds.Cases)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("reports differ between runs (-first +second):\n%s", diff)
	}
}

func TestWriteSummaryGolden(t *testing.T) {
	r := newTestRunner(t, Options{Parallelism: 2})
	ds := loadTestDataset(t)

	report, err := r.Run(context.Background(), ds.Cases)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var buf bytes.Buffer
	report.WriteSummary(&buf)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "summary", buf.Bytes())
}

func TestFilterByMenu(t *testing.T) {
	ds := loadTestDataset(t)
	small := ds.FilterByMenu("small")
	if len(small) != 5 {
		t.Fatalf("small cases = %d", len(small))
	}
	if len(ds.FilterByMenu("")) != 6 {
		t.Fatal("empty filter must keep everything")
	}
}

func TestLoadDatasetRejectsBrokenCases(t *testing.T) {
	if _, err := LoadDataset("testdata/missing.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
