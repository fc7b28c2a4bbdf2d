package evaluation

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/drdonut/voicecart-backend/internal/cart"
)

// CaseResult is the outcome of replaying one case.
type CaseResult struct {
	CaseID      string            `json:"case_id"`
	Description string            `json:"description,omitempty"`
	Menu        string            `json:"menu"`
	ExactMatch  bool              `json:"exact_match"`
	F1          float64           `json:"f1"`
	ItemAcc     float64           `json:"item_accuracy"`
	Expected    []CanonicalLine   `json:"expected"`
	Actual      []CanonicalLine   `json:"actual"`
	Diffs       []LineDiff        `json:"diffs,omitempty"`
	Diagnostics []cart.Diagnostic `json:"diagnostics,omitempty"`
}

// MenuSummary aggregates results for one menu.
type MenuSummary struct {
	Total        int     `json:"total"`
	ExactMatches int     `json:"exact_matches"`
	AverageF1    float64 `json:"average_f1"`
}

// Summary aggregates the whole run.
type Summary struct {
	TotalCases          int                    `json:"total_cases"`
	ExactMatches        int                    `json:"exact_matches"`
	ExactMatchRate      float64                `json:"exact_match_rate"`
	AverageF1           float64                `json:"average_f1"`
	AverageItemAccuracy float64                `json:"average_item_accuracy"`
	ByMenu              map[string]MenuSummary `json:"by_menu"`
	// DiagnosticCounts separates resolver misses from state-machine
	// mistakes: it counts cases that produced at least one diagnostic of
	// each kind.
	DiagnosticCounts map[string]int `json:"diagnostic_counts,omitempty"`
}

// Report is the full evaluation output. Given the same dataset and catalog
// the report content is deterministic; only the timestamp varies, and it is
// left zero unless a caller stamps it.
type Report struct {
	GeneratedAt time.Time    `json:"generated_at,omitempty"`
	Summary     Summary      `json:"summary"`
	Results     []CaseResult `json:"results"`
}

// Passed reports whether the run met the given exact-match gate.
func (r *Report) Passed(gate float64) bool {
	return r.Summary.ExactMatchRate >= gate
}

// WriteJSON renders the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteSummary renders a short human-readable summary.
func (r *Report) WriteSummary(w io.Writer) {
	s := r.Summary
	fmt.Fprintf(w, "cases: %d\n", s.TotalCases)
	fmt.Fprintf(w, "exact matches: %d (%.1f%%)\n", s.ExactMatches, s.ExactMatchRate*100)
	fmt.Fprintf(w, "average f1: %.3f\n", s.AverageF1)
	fmt.Fprintf(w, "average item accuracy: %.3f\n", s.AverageItemAccuracy)

	menus := make([]string, 0, len(s.ByMenu))
	for menu := range s.ByMenu {
		menus = append(menus, menu)
	}
	sort.Strings(menus)
	for _, menu := range menus {
		m := s.ByMenu[menu]
		fmt.Fprintf(w, "%s menu: %d/%d exact, average f1 %.3f\n", menu, m.ExactMatches, m.Total, m.AverageF1)
	}

	for _, result := range r.Results {
		if result.ExactMatch {
			continue
		}
		fmt.Fprintf(w, "FAIL %s (%s menu, f1 %.3f)\n", result.CaseID, result.Menu, result.F1)
		for _, d := range result.Diffs {
			switch d.Kind {
			case DiffMissing:
				fmt.Fprintf(w, "  missing %s x%d\n", d.Key, d.ExpectedQuantity)
			case DiffExtra:
				fmt.Fprintf(w, "  extra %s x%d\n", d.Key, d.ActualQuantity)
			case DiffQuantityMismatch:
				fmt.Fprintf(w, "  quantity %s: expected %d, got %d\n", d.Key, d.ExpectedQuantity, d.ActualQuantity)
			}
		}
	}
}

func buildSummary(results []CaseResult) Summary {
	s := Summary{
		ByMenu:           make(map[string]MenuSummary),
		DiagnosticCounts: make(map[string]int),
	}
	s.TotalCases = len(results)
	if s.TotalCases == 0 {
		return s
	}

	var f1Sum, accSum float64
	f1ByMenu := make(map[string]float64)
	for _, r := range results {
		if r.ExactMatch {
			s.ExactMatches++
		}
		f1Sum += r.F1
		accSum += r.ItemAcc

		m := s.ByMenu[r.Menu]
		m.Total++
		if r.ExactMatch {
			m.ExactMatches++
		}
		s.ByMenu[r.Menu] = m
		f1ByMenu[r.Menu] += r.F1

		seen := make(map[string]struct{})
		for _, d := range r.Diagnostics {
			if _, dup := seen[string(d.Kind)]; dup {
				continue
			}
			seen[string(d.Kind)] = struct{}{}
			s.DiagnosticCounts[string(d.Kind)]++
		}
	}

	s.ExactMatchRate = float64(s.ExactMatches) / float64(s.TotalCases)
	s.AverageF1 = f1Sum / float64(s.TotalCases)
	s.AverageItemAccuracy = accSum / float64(s.TotalCases)
	for menu, m := range s.ByMenu {
		m.AverageF1 = f1ByMenu[menu] / float64(m.Total)
		s.ByMenu[menu] = m
	}
	if len(s.DiagnosticCounts) == 0 {
		s.DiagnosticCounts = nil
	}
	return s
}
