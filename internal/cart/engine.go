package cart

import (
	"errors"
	"fmt"
	"time"

	"github.com/drdonut/voicecart-backend/internal/catalog"
	"github.com/drdonut/voicecart-backend/internal/resolver"
	"github.com/drdonut/voicecart-backend/pkg/metrics"
)

// ModifyBinding picks the fallback target for a modify event whose item
// text resolves to nothing in the cart ("make that a large").
type ModifyBinding string

const (
	// BindLastAdded targets the line touched most recently.
	BindLastAdded ModifyBinding = "last_added"
	// BindLastCategory targets the newest line in the most recently
	// referenced category.
	BindLastCategory ModifyBinding = "last_category"
)

// Line is one resolved entry in the cart. Lines are keyed by
// (sku, size, sorted modifiers); the key is unique within a cart.
type Line struct {
	Key            string   `json:"key"`
	SKU            string   `json:"sku"`
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	Size           string   `json:"size,omitempty"`
	Modifiers      []string `json:"modifiers,omitempty"`
	Quantity       int      `json:"quantity"`
	UnitPriceCents int64    `json:"unit_price_cents"`
}

// TotalCents is the line price times quantity.
func (l Line) TotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// Snapshot is a read-only view of the cart for display. Obtaining one never
// mutates state.
type Snapshot struct {
	Lines       []Line       `json:"lines"`
	TotalCents  int64        `json:"total_cents"`
	Total       string       `json:"total"`
	Version     uint64       `json:"version"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Options tune engine behavior. The zero value is usable.
type Options struct {
	ModifyBinding ModifyBinding
	Metrics       *metrics.CartMetrics
}

// Engine owns the cart for one ordering session and applies order events
// while preserving the line-key, quantity, and total invariants. It is not
// safe for concurrent use; callers serialize Apply per session.
type Engine struct {
	cat     *catalog.Catalog
	res     *resolver.Resolver
	binding ModifyBinding
	metrics *metrics.CartMetrics

	lines       []Line
	version     uint64
	diagnostics []Diagnostic

	lastCategory string
	lastKey      string
}

// NewEngine builds an empty cart over the given catalog and resolver.
func NewEngine(cat *catalog.Catalog, res *resolver.Resolver, opts Options) *Engine {
	binding := opts.ModifyBinding
	if binding == "" {
		binding = BindLastAdded
	}
	return &Engine{
		cat:     cat,
		res:     res,
		binding: binding,
		metrics: opts.Metrics,
	}
}

// Apply runs one event against the cart. It never fails: events that cannot
// be applied leave the cart unchanged and surface as diagnostics, which are
// also returned for the caller to act on.
func (e *Engine) Apply(event Event) []Diagnostic {
	start := time.Now()
	before := len(e.diagnostics)

	if err := event.Validate(); err != nil {
		e.diagnose(DiagInvalidEvent, event.Type, err.Error())
	} else {
		switch event.Type {
		case EventClear:
			e.applyClear()
		case EventAdd:
			e.applyAdd(event)
		case EventRemove:
			e.applyRemove(event)
		case EventModify:
			e.applyModify(event)
		}
	}

	e.metrics.ObserveApply(string(event.Type), time.Since(start))
	e.metrics.IncEventApplied(string(event.Type))
	return append([]Diagnostic(nil), e.diagnostics[before:]...)
}

// Snapshot returns the current cart state. The total is recomputed from the
// lines on every call, never cached.
func (e *Engine) Snapshot() Snapshot {
	lines := make([]Line, len(e.lines))
	for i, l := range e.lines {
		l.Modifiers = append([]string(nil), l.Modifiers...)
		lines[i] = l
	}
	total := e.totalCents()
	return Snapshot{
		Lines:       lines,
		TotalCents:  total,
		Total:       catalog.FormatPrice(total),
		Version:     e.version,
		Diagnostics: append([]Diagnostic(nil), e.diagnostics...),
	}
}

// Empty reports whether the cart holds no lines.
func (e *Engine) Empty() bool {
	return len(e.lines) == 0
}

// Version returns the mutation counter.
func (e *Engine) Version() uint64 {
	return e.version
}

// Diagnostics returns every diagnostic recorded so far.
func (e *Engine) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), e.diagnostics...)
}

func (e *Engine) applyClear() {
	e.lines = nil
	e.lastKey = ""
	e.version++
}

func (e *Engine) applyAdd(event Event) {
	match, ok := e.resolve(event)
	if !ok {
		return
	}
	key := match.Key()
	if line := e.find(key); line != nil {
		line.Quantity += match.Quantity
	} else {
		e.lines = append(e.lines, Line{
			Key:            key,
			SKU:            match.Item.SKU,
			Name:           match.Item.Name,
			Category:       match.Item.Category,
			Size:           match.Size,
			Modifiers:      match.Modifiers,
			Quantity:       match.Quantity,
			UnitPriceCents: match.Item.PriceCents(match.Size),
		})
	}
	e.touch(match.Item.Category, key)
	e.version++
}

func (e *Engine) applyRemove(event Event) {
	match, ok := e.resolve(event)
	if !ok {
		return
	}
	line := e.find(match.Key())
	if line == nil {
		// Fall back to any line with the same item when size or modifiers
		// were not spoken again ("remove the latte").
		line = e.findBySKU(match.Item.SKU)
	}
	if line == nil {
		e.diagnose(DiagUnknownTarget, event.Type,
			fmt.Sprintf("no %s line in cart", match.Item.SKU))
		return
	}
	category, key := line.Category, line.Key
	if match.QuantityExplicit {
		line.Quantity -= match.Quantity
	} else {
		line.Quantity = 0
	}
	if line.Quantity <= 0 {
		e.delete(key)
		e.touch(category, "")
	} else {
		e.touch(category, key)
	}
	e.version++
}

func (e *Engine) applyModify(event Event) {
	line := e.modifyTarget(event)
	if line == nil {
		e.diagnose(DiagUnknownTarget, event.Type, "no line matches the modify target")
		return
	}

	if event.NewQuantity != nil {
		if *event.NewQuantity == 0 {
			e.delete(line.Key)
		} else {
			line.Quantity = *event.NewQuantity
			e.touch(line.Category, line.Key)
		}
		e.version++
		return
	}

	item, err := e.cat.Item(line.SKU)
	if err != nil {
		e.diagnose(DiagUnknownTarget, event.Type, err.Error())
		return
	}
	size, mods := e.res.Restyle(item, event.NewModifierText)
	if size == "" {
		size = line.Size
	}
	if len(mods) == 0 {
		mods = line.Modifiers
	}
	newKey := resolver.LineKey(item.SKU, size, mods)
	if newKey == line.Key {
		e.diagnose(DiagInvalidEvent, event.Type, "modify changed nothing")
		return
	}

	qty := line.Quantity
	e.delete(line.Key)
	if dest := e.find(newKey); dest != nil {
		dest.Quantity += qty
		e.touch(dest.Category, dest.Key)
	} else {
		e.lines = append(e.lines, Line{
			Key:            newKey,
			SKU:            item.SKU,
			Name:           item.Name,
			Category:       item.Category,
			Size:           size,
			Modifiers:      mods,
			Quantity:       qty,
			UnitPriceCents: item.PriceCents(size),
		})
		e.touch(item.Category, newKey)
	}
	e.version++
}

// modifyTarget finds the line a modify event refers to. An explicit item
// mention wins; otherwise the configured binding policy picks the fallback.
func (e *Engine) modifyTarget(event Event) *Line {
	if event.ItemText != "" {
		match, err := e.res.Resolve(resolver.Request{
			ItemText:       event.ItemText,
			ModifierText:   event.ModifierText,
			RecentCategory: e.lastCategory,
		})
		if err == nil {
			if line := e.find(match.Key()); line != nil {
				return line
			}
			return e.findBySKU(match.Item.SKU)
		}
	}
	switch e.binding {
	case BindLastCategory:
		if e.lastCategory != "" {
			for i := len(e.lines) - 1; i >= 0; i-- {
				if e.lines[i].Category == e.lastCategory {
					return &e.lines[i]
				}
			}
		}
	default: // BindLastAdded
		if e.lastKey != "" {
			if line := e.find(e.lastKey); line != nil {
				return line
			}
		}
	}
	if len(e.lines) > 0 {
		return &e.lines[len(e.lines)-1]
	}
	return nil
}

func (e *Engine) resolve(event Event) (*resolver.Match, bool) {
	match, err := e.res.Resolve(resolver.Request{
		ItemText:       event.ItemText,
		ModifierText:   event.ModifierText,
		Quantity:       event.Quantity,
		RecentCategory: e.lastCategory,
	})
	if err != nil {
		var failure *resolver.Failure
		if errors.As(err, &failure) {
			e.diagnose(DiagUnresolvedItem, event.Type, failure.Error())
		} else {
			e.diagnose(DiagInvalidEvent, event.Type, err.Error())
		}
		return nil, false
	}
	return match, true
}

func (e *Engine) find(key string) *Line {
	for i := range e.lines {
		if e.lines[i].Key == key {
			return &e.lines[i]
		}
	}
	return nil
}

// findBySKU returns the newest line holding the given item.
func (e *Engine) findBySKU(sku string) *Line {
	for i := len(e.lines) - 1; i >= 0; i-- {
		if e.lines[i].SKU == sku {
			return &e.lines[i]
		}
	}
	return nil
}

func (e *Engine) delete(key string) {
	for i := range e.lines {
		if e.lines[i].Key == key {
			e.lines = append(e.lines[:i], e.lines[i+1:]...)
			if e.lastKey == key {
				e.lastKey = ""
			}
			return
		}
	}
}

func (e *Engine) touch(category, key string) {
	e.lastCategory = category
	e.lastKey = key
}

func (e *Engine) totalCents() int64 {
	var total int64
	for _, l := range e.lines {
		total += l.TotalCents()
	}
	return total
}

func (e *Engine) diagnose(kind DiagnosticKind, eventType EventType, detail string) {
	e.diagnostics = append(e.diagnostics, Diagnostic{
		Kind:      kind,
		EventType: eventType,
		Detail:    detail,
	})
	e.metrics.IncDiagnostic(string(kind))
}
