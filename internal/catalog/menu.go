package catalog

import (
	"github.com/shopspring/decimal"
)

// MenuItem describes a single orderable product along with the spoken
// vocabulary used to recognize it in transcribed utterances.
type MenuItem struct {
	SKU              string
	Name             string
	Category         string
	BasePriceCents   int64
	Aliases          []string
	SizeDeltaCents   map[string]int64
	Modifiers        []string
	ModifierSynonyms map[string]string
}

// HasSizes reports whether the item is priced per size.
func (m *MenuItem) HasSizes() bool {
	return len(m.SizeDeltaCents) > 0
}

// PriceCents returns the unit price for the given size. Sizes the item does
// not carry fall back to the base price.
func (m *MenuItem) PriceCents(size string) int64 {
	delta, ok := m.SizeDeltaCents[size]
	if !ok {
		return m.BasePriceCents
	}
	return m.BasePriceCents + delta
}

// CanonicalModifier maps a spoken modifier phrase to the item's canonical
// modifier name. It returns false when the phrase is not a valid modifier
// for this item.
func (m *MenuItem) CanonicalModifier(text string) (string, bool) {
	if canon, ok := m.ModifierSynonyms[text]; ok {
		text = canon
	}
	for _, mod := range m.Modifiers {
		if mod == text {
			return mod, true
		}
	}
	return "", false
}

// Menu bundles items with the menu-wide normalization tables.
type Menu struct {
	Name         string
	Items        []MenuItem
	SizeSynonyms map[string]string
	DefaultSizes map[string]string
}

// FormatPrice renders a cent amount as a fixed two-decimal dollar string,
// e.g. 129 becomes "1.29".
func FormatPrice(cents int64) string {
	return decimal.NewFromInt(cents).Shift(-2).StringFixed(2)
}

// ParsePrice converts a dollar string like "1.29" into cents.
func ParsePrice(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.Shift(2).IntPart(), nil
}
