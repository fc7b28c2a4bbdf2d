package catalog

import (
	"sort"
	"strings"

	pkgerrors "github.com/drdonut/voicecart-backend/pkg/errors"
	"go.uber.org/multierr"
)

// AliasEntry binds one lowercase alias to the item it names. Entries are
// sorted by alias so iteration order is stable across runs.
type AliasEntry struct {
	Alias string
	Item  *MenuItem
}

// Catalog is an immutable, indexed view of a Menu. All lookups are read-only
// and safe for concurrent use.
type Catalog struct {
	menu    Menu
	bySKU   map[string]*MenuItem
	byAlias map[string]*MenuItem
	aliases []AliasEntry
}

// New validates the menu and builds the lookup indexes. Validation collects
// every problem it finds so a broken seed surfaces all at once.
func New(menu Menu) (*Catalog, error) {
	var verr error
	if menu.Name == "" {
		verr = multierr.Append(verr, pkgerrors.New(pkgerrors.CodeCatalog, "menu name is empty"))
	}
	if len(menu.Items) == 0 {
		verr = multierr.Append(verr, pkgerrors.New(pkgerrors.CodeCatalog, "menu has no items"))
	}

	c := &Catalog{
		menu:    menu,
		bySKU:   make(map[string]*MenuItem, len(menu.Items)),
		byAlias: make(map[string]*MenuItem),
	}

	for i := range menu.Items {
		item := &menu.Items[i]
		if item.SKU == "" || item.Name == "" || item.Category == "" {
			verr = multierr.Append(verr, pkgerrors.New(pkgerrors.CodeCatalog, "item missing sku, name, or category").
				WithDetails(map[string]any{"sku": item.SKU, "name": item.Name}))
			continue
		}
		if item.BasePriceCents < 0 {
			verr = multierr.Append(verr, pkgerrors.New(pkgerrors.CodeCatalog, "item has negative base price").
				WithDetails(map[string]any{"sku": item.SKU}))
		}
		if _, dup := c.bySKU[item.SKU]; dup {
			verr = multierr.Append(verr, pkgerrors.New(pkgerrors.CodeCatalog, "duplicate sku").
				WithDetails(map[string]any{"sku": item.SKU}))
			continue
		}
		c.bySKU[item.SKU] = item

		for synonym, canon := range item.ModifierSynonyms {
			if _, ok := item.CanonicalModifier(canon); !ok {
				verr = multierr.Append(verr, pkgerrors.New(pkgerrors.CodeCatalog, "modifier synonym targets unknown modifier").
					WithDetails(map[string]any{"sku": item.SKU, "synonym": synonym, "canonical": canon}))
			}
		}

		names := append([]string{item.Name}, item.Aliases...)
		for _, raw := range names {
			alias := strings.ToLower(strings.TrimSpace(raw))
			if alias == "" {
				continue
			}
			if owner, taken := c.byAlias[alias]; taken {
				if owner.SKU != item.SKU {
					verr = multierr.Append(verr, pkgerrors.New(pkgerrors.CodeCatalog, "alias maps to multiple items").
						WithDetails(map[string]any{"alias": alias, "skus": []string{owner.SKU, item.SKU}}))
				}
				continue
			}
			c.byAlias[alias] = item
			c.aliases = append(c.aliases, AliasEntry{Alias: alias, Item: item})
		}
	}

	if verr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeCatalog, verr, "menu validation failed").
			WithDetails(map[string]any{"menu": menu.Name})
	}

	sort.Slice(c.aliases, func(i, j int) bool { return c.aliases[i].Alias < c.aliases[j].Alias })
	return c, nil
}

// Name returns the menu name.
func (c *Catalog) Name() string {
	return c.menu.Name
}

// Items returns the menu items in seed order.
func (c *Catalog) Items() []MenuItem {
	return c.menu.Items
}

// Item finds a menu item by SKU.
func (c *Catalog) Item(sku string) (*MenuItem, error) {
	item, ok := c.bySKU[sku]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown sku").
			WithDetails(map[string]any{"sku": sku, "menu": c.menu.Name})
	}
	return item, nil
}

// ExactAlias resolves a normalized phrase against the alias index.
func (c *Catalog) ExactAlias(text string) (*MenuItem, bool) {
	item, ok := c.byAlias[strings.ToLower(strings.TrimSpace(text))]
	return item, ok
}

// AliasEntries exposes the full alias index in deterministic order for
// fuzzy matching.
func (c *Catalog) AliasEntries() []AliasEntry {
	return c.aliases
}

// CanonicalSize maps a spoken size word ("venti", "xl") to its canonical
// size. It returns false for words the menu does not recognize as sizes.
func (c *Catalog) CanonicalSize(word string) (string, bool) {
	size, ok := c.menu.SizeSynonyms[strings.ToLower(strings.TrimSpace(word))]
	return size, ok
}

// DefaultSize returns the size a category falls back to when the utterance
// names none.
func (c *Catalog) DefaultSize(category string) string {
	return c.menu.DefaultSizes[category]
}
