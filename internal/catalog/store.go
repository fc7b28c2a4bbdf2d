package catalog

import (
	"context"
	"encoding/json"
	"time"

	pkgerrors "github.com/drdonut/voicecart-backend/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MenuItemRecord is the persisted form of a MenuItem. The vocabulary columns
// are stored as JSON text so the schema stays portable across postgres and
// sqlite.
type MenuItemRecord struct {
	ID               int64  `gorm:"primaryKey"`
	MenuName         string `gorm:"column:menu_name;uniqueIndex:menu_items_menu_sku_uq"`
	SKU              string `gorm:"column:sku;uniqueIndex:menu_items_menu_sku_uq"`
	Name             string
	Category         string
	BasePriceCents   int64
	Aliases          string `gorm:"default:'[]'"`
	SizeDeltas       string `gorm:"column:size_deltas;default:'{}'"`
	Modifiers        string `gorm:"default:'[]'"`
	ModifierSynonyms string `gorm:"column:modifier_synonyms;default:'{}'"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName overrides the gorm default.
func (MenuItemRecord) TableName() string { return "menu_items" }

// MenuSettingsRecord persists the menu-wide normalization tables.
type MenuSettingsRecord struct {
	ID           int64  `gorm:"primaryKey"`
	MenuName     string `gorm:"column:menu_name;uniqueIndex"`
	SizeSynonyms string `gorm:"column:size_synonyms;default:'{}'"`
	DefaultSizes string `gorm:"column:default_sizes;default:'{}'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the gorm default.
func (MenuSettingsRecord) TableName() string { return "menu_settings" }

// Repository loads and seeds menus from the database.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// LoadMenu reads a menu and its settings from the database.
func (r *Repository) LoadMenu(ctx context.Context, name string) (Menu, error) {
	var rows []MenuItemRecord
	err := r.db.WithContext(ctx).
		Where("menu_name = ?", name).
		Order("sku ASC").
		Find(&rows).Error
	if err != nil {
		return Menu{}, pkgerrors.Wrap(pkgerrors.CodeCatalog, err, "load menu items").
			WithDetails(map[string]any{"menu": name})
	}
	if len(rows) == 0 {
		return Menu{}, pkgerrors.New(pkgerrors.CodeNotFound, "menu not found").
			WithDetails(map[string]any{"menu": name})
	}

	var settings MenuSettingsRecord
	err = r.db.WithContext(ctx).Where("menu_name = ?", name).First(&settings).Error
	if err != nil {
		return Menu{}, pkgerrors.Wrap(pkgerrors.CodeCatalog, err, "load menu settings").
			WithDetails(map[string]any{"menu": name})
	}

	menu := Menu{Name: name, Items: make([]MenuItem, 0, len(rows))}
	for _, row := range rows {
		item, err := row.toMenuItem()
		if err != nil {
			return Menu{}, err
		}
		menu.Items = append(menu.Items, item)
	}
	if err := unmarshalColumn(settings.SizeSynonyms, &menu.SizeSynonyms, name, "size_synonyms"); err != nil {
		return Menu{}, err
	}
	if err := unmarshalColumn(settings.DefaultSizes, &menu.DefaultSizes, name, "default_sizes"); err != nil {
		return Menu{}, err
	}
	return menu, nil
}

// SeedMenu upserts a menu's items and settings. Existing rows for the same
// (menu, sku) pair are overwritten.
func (r *Repository) SeedMenu(ctx context.Context, menu Menu) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range menu.Items {
			row, err := toMenuItemRecord(menu.Name, item)
			if err != nil {
				return err
			}
			err = tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "menu_name"}, {Name: "sku"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"name", "category", "base_price_cents",
					"aliases", "size_deltas", "modifiers", "modifier_synonyms", "updated_at",
				}),
			}).Create(&row).Error
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeCatalog, err, "seed menu item").
					WithDetails(map[string]any{"menu": menu.Name, "sku": item.SKU})
			}
		}

		sizes, err := json.Marshal(menu.SizeSynonyms)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeCatalog, err, "encode size synonyms")
		}
		defaults, err := json.Marshal(menu.DefaultSizes)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeCatalog, err, "encode default sizes")
		}
		settings := MenuSettingsRecord{
			MenuName:     menu.Name,
			SizeSynonyms: string(sizes),
			DefaultSizes: string(defaults),
		}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "menu_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"size_synonyms", "default_sizes", "updated_at"}),
		}).Create(&settings).Error
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeCatalog, err, "seed menu settings").
				WithDetails(map[string]any{"menu": menu.Name})
		}
		return nil
	})
}

// SeedBuiltIn writes every embedded menu to the database.
func (r *Repository) SeedBuiltIn(ctx context.Context) error {
	for _, menu := range BuiltInMenus() {
		if err := r.SeedMenu(ctx, menu); err != nil {
			return err
		}
	}
	return nil
}

func (row MenuItemRecord) toMenuItem() (MenuItem, error) {
	item := MenuItem{
		SKU:            row.SKU,
		Name:           row.Name,
		Category:       row.Category,
		BasePriceCents: row.BasePriceCents,
	}
	if err := unmarshalColumn(row.Aliases, &item.Aliases, row.MenuName, "aliases"); err != nil {
		return MenuItem{}, err
	}
	if err := unmarshalColumn(row.SizeDeltas, &item.SizeDeltaCents, row.MenuName, "size_deltas"); err != nil {
		return MenuItem{}, err
	}
	if err := unmarshalColumn(row.Modifiers, &item.Modifiers, row.MenuName, "modifiers"); err != nil {
		return MenuItem{}, err
	}
	if err := unmarshalColumn(row.ModifierSynonyms, &item.ModifierSynonyms, row.MenuName, "modifier_synonyms"); err != nil {
		return MenuItem{}, err
	}
	return item, nil
}

func toMenuItemRecord(menuName string, item MenuItem) (MenuItemRecord, error) {
	row := MenuItemRecord{
		MenuName:       menuName,
		SKU:            item.SKU,
		Name:           item.Name,
		Category:       item.Category,
		BasePriceCents: item.BasePriceCents,
	}
	for _, col := range []struct {
		value any
		dest  *string
	}{
		{orEmptySlice(item.Aliases), &row.Aliases},
		{orEmptyMap(item.SizeDeltaCents), &row.SizeDeltas},
		{orEmptySlice(item.Modifiers), &row.Modifiers},
		{orEmptyStringMap(item.ModifierSynonyms), &row.ModifierSynonyms},
	} {
		raw, err := json.Marshal(col.value)
		if err != nil {
			return MenuItemRecord{}, pkgerrors.Wrap(pkgerrors.CodeCatalog, err, "encode menu item column").
				WithDetails(map[string]any{"menu": menuName, "sku": item.SKU})
		}
		*col.dest = string(raw)
	}
	return row, nil
}

func unmarshalColumn(raw string, dest any, menu, column string) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeCatalog, err, "decode menu column").
			WithDetails(map[string]any{"menu": menu, "column": column})
	}
	return nil
}

func orEmptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyMap(m map[string]int64) map[string]int64 {
	if m == nil {
		return map[string]int64{}
	}
	return m
}

func orEmptyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
