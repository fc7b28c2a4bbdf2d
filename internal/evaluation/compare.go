package evaluation

import (
	"sort"

	"github.com/drdonut/voicecart-backend/internal/cart"
	"github.com/drdonut/voicecart-backend/internal/resolver"
)

// CanonicalLine is an order-independent (key, quantity) entry used for
// comparing carts.
type CanonicalLine struct {
	Key       string   `json:"key"`
	SKU       string   `json:"sku"`
	Size      string   `json:"size,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`
	Quantity  int      `json:"quantity"`
}

// DiffKind labels one line-level mismatch.
type DiffKind string

const (
	DiffMissing          DiffKind = "missing"
	DiffExtra            DiffKind = "extra"
	DiffQuantityMismatch DiffKind = "quantity_mismatch"
)

// LineDiff describes how one canonical line differs between the actual and
// expected carts.
type LineDiff struct {
	Kind             DiffKind `json:"kind"`
	Key              string   `json:"key"`
	SKU              string   `json:"sku"`
	ExpectedQuantity int      `json:"expected_quantity,omitempty"`
	ActualQuantity   int      `json:"actual_quantity,omitempty"`
}

// CanonicalizeSnapshot flattens a cart snapshot into sorted canonical lines.
func CanonicalizeSnapshot(snap cart.Snapshot) []CanonicalLine {
	out := make([]CanonicalLine, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		out = append(out, CanonicalLine{
			Key:       l.Key,
			SKU:       l.SKU,
			Size:      l.Size,
			Modifiers: append([]string(nil), l.Modifiers...),
			Quantity:  l.Quantity,
		})
	}
	sortCanonical(out)
	return out
}

// CanonicalizeExpected flattens the expected lines of a case, merging any
// entries that share a key.
func CanonicalizeExpected(lines []ExpectedLine) []CanonicalLine {
	byKey := make(map[string]*CanonicalLine, len(lines))
	order := make([]string, 0, len(lines))
	for _, l := range lines {
		key := l.Key()
		if cur, ok := byKey[key]; ok {
			cur.Quantity += l.Quantity
			continue
		}
		mods := append([]string(nil), l.Modifiers...)
		sort.Strings(mods)
		byKey[key] = &CanonicalLine{
			Key:       key,
			SKU:       l.SKU,
			Size:      l.Size,
			Modifiers: mods,
			Quantity:  l.Quantity,
		}
		order = append(order, key)
	}
	out := make([]CanonicalLine, 0, len(byKey))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	sortCanonical(out)
	return out
}

// Diff reports the line-level differences between actual and expected
// canonical carts, sorted by line key.
func Diff(actual, expected []CanonicalLine) []LineDiff {
	actualByKey := indexByKey(actual)
	expectedByKey := indexByKey(expected)

	var diffs []LineDiff
	for _, e := range expected {
		a, ok := actualByKey[e.Key]
		if !ok {
			diffs = append(diffs, LineDiff{Kind: DiffMissing, Key: e.Key, SKU: e.SKU, ExpectedQuantity: e.Quantity})
			continue
		}
		if a.Quantity != e.Quantity {
			diffs = append(diffs, LineDiff{
				Kind:             DiffQuantityMismatch,
				Key:              e.Key,
				SKU:              e.SKU,
				ExpectedQuantity: e.Quantity,
				ActualQuantity:   a.Quantity,
			})
		}
	}
	for _, a := range actual {
		if _, ok := expectedByKey[a.Key]; !ok {
			diffs = append(diffs, LineDiff{Kind: DiffExtra, Key: a.Key, SKU: a.SKU, ActualQuantity: a.Quantity})
		}
	}
	sort.Slice(diffs, func(i, j int) bool {
		if diffs[i].Key != diffs[j].Key {
			return diffs[i].Key < diffs[j].Key
		}
		return diffs[i].Kind < diffs[j].Kind
	})
	return diffs
}

// ExactMatch reports whether the two canonical carts are identical.
func ExactMatch(actual, expected []CanonicalLine) bool {
	return len(Diff(actual, expected)) == 0
}

// F1 scores the carts over quantity-expanded line instances: a line with
// quantity three counts as three instances of its key.
func F1(actual, expected []CanonicalLine) float64 {
	actualCount := instanceCounts(actual)
	expectedCount := instanceCounts(expected)

	if len(expectedCount) == 0 {
		if len(actualCount) == 0 {
			return 1
		}
		return 0
	}

	var tp, fp, fn int
	for key, a := range actualCount {
		e := expectedCount[key]
		if a > e {
			tp += e
			fp += a - e
		} else {
			tp += a
		}
	}
	for key, e := range expectedCount {
		a := actualCount[key]
		if e > a {
			fn += e - a
		}
	}

	if tp == 0 {
		return 0
	}
	precision := float64(tp) / float64(tp+fp)
	recall := float64(tp) / float64(tp+fn)
	return 2 * precision * recall / (precision + recall)
}

// ItemAccuracy scores SKU-level agreement only, ignoring sizes and
// modifiers: the share of expected item instances present in the actual
// cart.
func ItemAccuracy(actual, expected []CanonicalLine) float64 {
	actualSKUs := skuCounts(actual)
	expectedSKUs := skuCounts(expected)

	var expectedTotal, correct int
	for sku, e := range expectedSKUs {
		expectedTotal += e
		a := actualSKUs[sku]
		if a < e {
			correct += a
		} else {
			correct += e
		}
	}
	if expectedTotal == 0 {
		if len(actualSKUs) == 0 {
			return 1
		}
		return 0
	}
	return float64(correct) / float64(expectedTotal)
}

func sortCanonical(lines []CanonicalLine) {
	sort.Slice(lines, func(i, j int) bool { return lines[i].Key < lines[j].Key })
}

func indexByKey(lines []CanonicalLine) map[string]CanonicalLine {
	out := make(map[string]CanonicalLine, len(lines))
	for _, l := range lines {
		out[l.Key] = l
	}
	return out
}

func instanceCounts(lines []CanonicalLine) map[string]int {
	out := make(map[string]int, len(lines))
	for _, l := range lines {
		out[l.Key] += l.Quantity
	}
	return out
}

func skuCounts(lines []CanonicalLine) map[string]int {
	out := make(map[string]int, len(lines))
	for _, l := range lines {
		out[l.SKU] += l.Quantity
	}
	return out
}

// lineKeyFor is a convenience for tests building canonical lines directly.
func lineKeyFor(sku, size string, modifiers []string) string {
	return resolver.LineKey(sku, size, modifiers)
}
