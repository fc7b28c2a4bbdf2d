package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/drdonut/voicecart-backend/internal/catalog"
)

// DefaultMinConfidence is the fuzzy-match floor used when the config leaves
// the threshold unset. Tuned against the evaluation dataset.
const DefaultMinConfidence = 0.6

// Request carries the free-text fields of one order event.
type Request struct {
	ItemText     string
	ModifierText string
	// Quantity overrides any count found in the text when positive.
	Quantity int
	// RecentCategory is the disambiguation hint for tie-breaks, usually the
	// category of the line touched most recently in the session.
	RecentCategory string
}

// Match is a fully resolved (item, size, modifiers, quantity) tuple.
type Match struct {
	Item      *catalog.MenuItem
	Size      string
	Modifiers []string
	Quantity  int
	// QuantityExplicit is true when the count came from the event or the
	// spoken text rather than the implicit default of one.
	QuantityExplicit bool
	Confidence       float64
}

// Key returns the cart line key for this match.
func (m *Match) Key() string {
	return LineKey(m.Item.SKU, m.Size, m.Modifiers)
}

// LineKey builds the composite key identifying a cart line. Modifiers are
// sorted so the key is order-independent.
func LineKey(sku, size string, modifiers []string) string {
	mods := append([]string(nil), modifiers...)
	sort.Strings(mods)
	return sku + "|" + size + "|" + strings.Join(mods, ",")
}

// Failure reports that no catalog entry cleared the confidence threshold.
// It is recoverable: callers drop the event and record a diagnostic.
type Failure struct {
	Input     string
	BestAlias string
	BestScore float64
	Threshold float64
}

func (f *Failure) Error() string {
	return fmt.Sprintf("no match for %q (best %q scored %.2f, threshold %.2f)",
		f.Input, f.BestAlias, f.BestScore, f.Threshold)
}

// Resolver maps event text onto catalog entries. It holds no mutable state
// and is safe for concurrent use.
type Resolver struct {
	cat           *catalog.Catalog
	minConfidence float64
}

// New builds a resolver over the given catalog. A non-positive threshold
// falls back to DefaultMinConfidence.
func New(cat *catalog.Catalog, minConfidence float64) *Resolver {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return &Resolver{cat: cat, minConfidence: minConfidence}
}

// Resolve turns event free-text into a concrete match. The same input
// against the same catalog always yields the same result.
func (r *Resolver) Resolve(req Request) (*Match, error) {
	normItem := Normalize(req.ItemText)
	normMods := Normalize(req.ModifierText)

	tokens := stripFiller(Tokenize(normItem))
	before := len(tokens)
	textQty, tokens := ExtractQuantity(tokens)
	qty := req.Quantity
	explicit := qty > 0 || len(tokens) < before
	if qty <= 0 {
		qty = textQty
	}

	size, tokens := r.extractSize(tokens)
	if size == "" {
		size, _ = r.extractSize(Tokenize(normMods))
	}

	phrase := strings.Join(tokens, " ")
	item, confidence, failure := r.findItem(phrase, req.RecentCategory)
	if failure != nil {
		return nil, failure
	}

	if item.HasSizes() {
		if size == "" {
			size = r.cat.DefaultSize(item.Category)
		}
		if size == "" {
			size = "medium"
		}
	} else {
		size = ""
	}

	modifiers := r.extractModifiers(item, normItem+" "+normMods)

	return &Match{
		Item:             item,
		Size:             size,
		Modifiers:        modifiers,
		Quantity:         qty,
		QuantityExplicit: explicit,
		Confidence:       confidence,
	}, nil
}

// Restyle resolves free text against a known item, for modify events that
// already have a target line. It returns the extracted size ("" when the
// text names none or the item is unsized) and any canonical modifiers.
func (r *Resolver) Restyle(item *catalog.MenuItem, text string) (string, []string) {
	norm := Normalize(text)
	size, _ := r.extractSize(Tokenize(norm))
	if !item.HasSizes() {
		size = ""
	}
	return size, r.extractModifiers(item, norm)
}

// findItem tries an exact alias hit, then falls back to fuzzy scoring over
// the whole alias index. Ties above the threshold prefer the recently
// referenced category, then the shortest canonical name, then the SKU.
func (r *Resolver) findItem(phrase, recentCategory string) (*catalog.MenuItem, float64, *Failure) {
	if item, ok := r.cat.ExactAlias(phrase); ok {
		return item, 1.0, nil
	}
	singular := singularizePhrase(phrase)
	if item, ok := r.cat.ExactAlias(singular); ok {
		return item, 1.0, nil
	}

	// A full alias spoken inside a longer phrase ("coffee with cream and
	// sugar") is still a certain mention. The longest mention wins.
	if item, ok := r.findMention(phrase, singular, recentCategory); ok {
		return item, 1.0, nil
	}

	type candidate struct {
		item  *catalog.MenuItem
		score float64
	}
	best := make(map[string]candidate)
	bestAlias, bestScore := "", 0.0
	for _, entry := range r.cat.AliasEntries() {
		s := Score(phrase, entry.Alias)
		if s > bestScore {
			bestScore, bestAlias = s, entry.Alias
		}
		if s < r.minConfidence {
			continue
		}
		if cur, ok := best[entry.Item.SKU]; !ok || s > cur.score {
			best[entry.Item.SKU] = candidate{item: entry.Item, score: s}
		}
	}
	if len(best) == 0 {
		return nil, 0, &Failure{
			Input:     phrase,
			BestAlias: bestAlias,
			BestScore: bestScore,
			Threshold: r.minConfidence,
		}
	}

	candidates := make([]candidate, 0, len(best))
	for _, c := range best {
		candidates = append(candidates, c)
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if recentCategory != "" {
			aRecent := a.item.Category == recentCategory
			bRecent := b.item.Category == recentCategory
			if aRecent != bRecent {
				return aRecent
			}
		}
		if len(a.item.Name) != len(b.item.Name) {
			return len(a.item.Name) < len(b.item.Name)
		}
		return a.item.SKU < b.item.SKU
	})
	winner := candidates[0]
	return winner.item, winner.score, nil
}

// findMention scans the alias index for aliases fully contained in the
// phrase on word boundaries.
func (r *Resolver) findMention(phrase, singular, recentCategory string) (*catalog.MenuItem, bool) {
	var (
		winner      *catalog.MenuItem
		winnerAlias string
	)
	for _, entry := range r.cat.AliasEntries() {
		if !containsPhrase(phrase, entry.Alias) && !containsPhrase(singular, entry.Alias) {
			continue
		}
		if winner == nil || betterMention(entry, winnerAlias, winner, recentCategory) {
			winner, winnerAlias = entry.Item, entry.Alias
		}
	}
	return winner, winner != nil
}

func betterMention(entry catalog.AliasEntry, curAlias string, cur *catalog.MenuItem, recentCategory string) bool {
	if len(entry.Alias) != len(curAlias) {
		return len(entry.Alias) > len(curAlias)
	}
	if recentCategory != "" && entry.Item.Category != cur.Category {
		return entry.Item.Category == recentCategory
	}
	if len(entry.Item.Name) != len(cur.Name) {
		return len(entry.Item.Name) < len(cur.Name)
	}
	return entry.Item.SKU < cur.SKU
}

// extractSize pulls the first recognized size word (or two-word phrase like
// "extra large") out of the token stream.
func (r *Resolver) extractSize(tokens []string) (string, []string) {
	for i := range tokens {
		if i+1 < len(tokens) {
			if size, ok := r.cat.CanonicalSize(tokens[i] + " " + tokens[i+1]); ok {
				rest := removeToken(removeToken(tokens, i+1), i)
				return size, rest
			}
		}
		if size, ok := r.cat.CanonicalSize(tokens[i]); ok {
			return size, removeToken(tokens, i)
		}
	}
	return "", tokens
}

// extractModifiers finds every valid modifier mention in the combined item
// and modifier text. Synonyms are checked longest-first so "no whipped
// cream" wins over "whipped cream". Unrecognized mentions are dropped.
func (r *Resolver) extractModifiers(item *catalog.MenuItem, text string) []string {
	found := make(map[string]struct{})
	claimed := text

	synonyms := make([]string, 0, len(item.ModifierSynonyms))
	for syn := range item.ModifierSynonyms {
		synonyms = append(synonyms, syn)
	}
	sort.Slice(synonyms, func(i, j int) bool {
		if len(synonyms[i]) != len(synonyms[j]) {
			return len(synonyms[i]) > len(synonyms[j])
		}
		return synonyms[i] < synonyms[j]
	})
	for _, syn := range synonyms {
		if containsPhrase(claimed, syn) {
			canon := item.ModifierSynonyms[syn]
			found[canon] = struct{}{}
			claimed = strings.ReplaceAll(claimed, syn, " ")
		}
	}

	mods := append([]string(nil), item.Modifiers...)
	sort.Slice(mods, func(i, j int) bool {
		if len(mods[i]) != len(mods[j]) {
			return len(mods[i]) > len(mods[j])
		}
		return mods[i] < mods[j]
	})
	for _, mod := range mods {
		if containsPhrase(claimed, mod) {
			found[mod] = struct{}{}
			claimed = strings.ReplaceAll(claimed, mod, " ")
		}
	}

	if len(found) == 0 {
		return nil
	}
	out := make([]string, 0, len(found))
	for mod := range found {
		out = append(out, mod)
	}
	sort.Strings(out)
	return out
}

func singularizePhrase(phrase string) string {
	tokens := Tokenize(phrase)
	if len(tokens) == 0 {
		return phrase
	}
	tokens[len(tokens)-1] = singularize(tokens[len(tokens)-1])
	return strings.Join(tokens, " ")
}
