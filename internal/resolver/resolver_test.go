package resolver

import (
	"errors"
	"testing"

	"github.com/drdonut/voicecart-backend/internal/catalog"
)

func newTestResolver(t *testing.T, menuName string) *Resolver {
	t.Helper()
	menu, err := catalog.BuiltIn(menuName)
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	cat, err := catalog.New(menu)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return New(cat, 0)
}

func TestResolveExactAlias(t *testing.T) {
	r := newTestResolver(t, catalog.MenuSmall)
	m, err := r.Resolve(Request{ItemText: "coffee"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Item.SKU != "COF001" {
		t.Fatalf("sku = %s", m.Item.SKU)
	}
	if m.Quantity != 1 {
		t.Fatalf("quantity = %d", m.Quantity)
	}
	if m.Size != "medium" {
		t.Fatalf("default size = %q", m.Size)
	}
	if m.Confidence != 1.0 {
		t.Fatalf("confidence = %f", m.Confidence)
	}
}

func TestResolveFillerQuantityAndSize(t *testing.T) {
	r := newTestResolver(t, catalog.MenuSmall)
	m, err := r.Resolve(Request{ItemText: "i'd like two large coffees please"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Item.SKU != "COF001" || m.Quantity != 2 || m.Size != "large" {
		t.Fatalf("got %s qty=%d size=%s", m.Item.SKU, m.Quantity, m.Size)
	}
}

func TestResolveDozen(t *testing.T) {
	r := newTestResolver(t, catalog.MenuLarge)
	m, err := r.Resolve(Request{ItemText: "a dozen donut holes"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Item.SKU != "DON009" || m.Quantity != 12 {
		t.Fatalf("got %s qty=%d", m.Item.SKU, m.Quantity)
	}
}

func TestEventQuantityOverridesText(t *testing.T) {
	r := newTestResolver(t, catalog.MenuSmall)
	m, err := r.Resolve(Request{ItemText: "three coffees", Quantity: 5})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Quantity != 5 {
		t.Fatalf("quantity = %d", m.Quantity)
	}
}

func TestResolveMentionInsideLongerPhrase(t *testing.T) {
	r := newTestResolver(t, catalog.MenuSmall)
	m, err := r.Resolve(Request{ItemText: "coffee with cream and sugar"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Item.SKU != "COF001" {
		t.Fatalf("sku = %s", m.Item.SKU)
	}
	if len(m.Modifiers) != 2 || m.Modifiers[0] != "cream" || m.Modifiers[1] != "sugar" {
		t.Fatalf("modifiers = %v", m.Modifiers)
	}
}

func TestResolveModifierSynonyms(t *testing.T) {
	r := newTestResolver(t, catalog.MenuSmall)
	m, err := r.Resolve(Request{ItemText: "chocolate donut", ModifierText: "with sprinkles"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Item.SKU != "DON002" {
		t.Fatalf("sku = %s", m.Item.SKU)
	}
	if len(m.Modifiers) != 1 || m.Modifiers[0] != "sprinkles" {
		t.Fatalf("modifiers = %v", m.Modifiers)
	}
	if m.Size != "" {
		t.Fatalf("donuts carry no size, got %q", m.Size)
	}
}

func TestResolveUnknownModifierDropped(t *testing.T) {
	r := newTestResolver(t, catalog.MenuSmall)
	m, err := r.Resolve(Request{ItemText: "raspberry donut", ModifierText: "with gold leaf"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(m.Modifiers) != 0 {
		t.Fatalf("modifiers = %v", m.Modifiers)
	}
}

func TestResolveCorrectionPhrases(t *testing.T) {
	r := newTestResolver(t, catalog.MenuSmall)
	m, err := r.Resolve(Request{ItemText: "actually make that a pumpkin spice latte"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Item.SKU != "COF002" {
		t.Fatalf("sku = %s", m.Item.SKU)
	}
}

func TestResolveGibberish(t *testing.T) {
	r := newTestResolver(t, catalog.MenuSmall)
	_, err := r.Resolve(Request{ItemText: "flux capacitor combo"})
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected Failure, got %v", err)
	}
	if failure.Threshold != DefaultMinConfidence {
		t.Fatalf("threshold = %f", failure.Threshold)
	}
}

func TestFuzzyTieBreaks(t *testing.T) {
	r := newTestResolver(t, catalog.MenuLarge)

	// "pumpkin" alone ties several items; without a hint the shortest
	// canonical name wins.
	m, err := r.Resolve(Request{ItemText: "pumpkin"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Item.SKU != "COF002" {
		t.Fatalf("sku = %s", m.Item.SKU)
	}

	// The category hint redirects the tie toward donuts.
	m, err = r.Resolve(Request{ItemText: "pumpkin", RecentCategory: "donuts"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Item.SKU != "DON001" {
		t.Fatalf("sku with hint = %s", m.Item.SKU)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	r := newTestResolver(t, catalog.MenuLarge)
	first, err := r.Resolve(Request{ItemText: "caramel"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for i := 0; i < 20; i++ {
		m, err := r.Resolve(Request{ItemText: "caramel"})
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if m.Item.SKU != first.Item.SKU {
			t.Fatalf("run %d resolved %s, first run %s", i, m.Item.SKU, first.Item.SKU)
		}
	}
}

func TestLineKey(t *testing.T) {
	a := LineKey("COF001", "large", []string{"sugar", "cream"})
	b := LineKey("COF001", "large", []string{"cream", "sugar"})
	if a != b {
		t.Fatalf("key order-dependent: %q vs %q", a, b)
	}
	if a == LineKey("COF001", "small", []string{"cream", "sugar"}) {
		t.Fatal("size must be part of the key")
	}
}
