package evaluation

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func line(sku, size string, mods []string, qty int) CanonicalLine {
	return CanonicalLine{
		Key:       lineKeyFor(sku, size, mods),
		SKU:       sku,
		Size:      size,
		Modifiers: mods,
		Quantity:  qty,
	}
}

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDiffClassifiesMismatches(t *testing.T) {
	expected := []CanonicalLine{
		line("COF001", "medium", nil, 2),
		line("DON002", "", nil, 1),
	}
	actual := []CanonicalLine{
		line("COF001", "medium", nil, 1),
		line("DON003", "", nil, 1),
	}

	diffs := Diff(actual, expected)
	want := []LineDiff{
		{Kind: DiffQuantityMismatch, Key: "COF001|medium|", SKU: "COF001", ExpectedQuantity: 2, ActualQuantity: 1},
		{Kind: DiffMissing, Key: "DON002||", SKU: "DON002", ExpectedQuantity: 1},
		{Kind: DiffExtra, Key: "DON003||", SKU: "DON003", ActualQuantity: 1},
	}
	if diff := cmp.Diff(want, diffs); diff != "" {
		t.Fatalf("diffs mismatch (-want +got):\n%s", diff)
	}
}

func TestExactMatchIgnoresOrder(t *testing.T) {
	a := []CanonicalLine{line("COF001", "medium", nil, 1), line("DON002", "", []string{"sprinkles"}, 1)}
	b := []CanonicalLine{line("DON002", "", []string{"sprinkles"}, 1), line("COF001", "medium", nil, 1)}
	sortCanonical(a)
	sortCanonical(b)
	if !ExactMatch(a, b) {
		t.Fatal("expected exact match")
	}
}

func TestF1(t *testing.T) {
	expected := []CanonicalLine{line("COF001", "medium", nil, 2)}

	if got := F1(expected, expected); !almost(got, 1) {
		t.Fatalf("identical = %f", got)
	}
	if got := F1(nil, expected); !almost(got, 0) {
		t.Fatalf("empty actual = %f", got)
	}
	if got := F1(nil, nil); !almost(got, 1) {
		t.Fatalf("both empty = %f", got)
	}

	// One of two instances present: precision 1, recall 0.5, f1 2/3.
	actual := []CanonicalLine{line("COF001", "medium", nil, 1)}
	if got := F1(actual, expected); !almost(got, 2.0/3.0) {
		t.Fatalf("partial = %f", got)
	}
}

func TestItemAccuracyIgnoresSizeAndModifiers(t *testing.T) {
	expected := []CanonicalLine{line("COF001", "large", nil, 2)}
	actual := []CanonicalLine{line("COF001", "medium", []string{"cream"}, 2)}
	if got := ItemAccuracy(actual, expected); !almost(got, 1) {
		t.Fatalf("accuracy = %f", got)
	}
	if got := F1(actual, expected); !almost(got, 0) {
		t.Fatalf("f1 should still see the size mismatch, got %f", got)
	}
}

func TestCanonicalizeExpectedMergesDuplicateKeys(t *testing.T) {
	lines := CanonicalizeExpected([]ExpectedLine{
		{SKU: "DON002", Quantity: 1},
		{SKU: "DON002", Quantity: 2},
		{SKU: "COF001", Size: "medium", Modifiers: []string{"sugar", "cream"}, Quantity: 1},
	})
	if len(lines) != 2 {
		t.Fatalf("lines = %+v", lines)
	}
	for _, l := range lines {
		if l.SKU == "DON002" && l.Quantity != 3 {
			t.Fatalf("merged quantity = %d", l.Quantity)
		}
		if l.SKU == "COF001" && (len(l.Modifiers) != 2 || l.Modifiers[0] != "cream") {
			t.Fatalf("modifiers not sorted: %v", l.Modifiers)
		}
	}
}
