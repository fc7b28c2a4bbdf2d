package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/drdonut/voicecart-backend/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&MenuItemRecord{}, &MenuSettingsRecord{}))
	t.Cleanup(func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewRepository(gdb)
}

func TestSeedAndLoadRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SeedBuiltIn(ctx))

	for _, want := range BuiltInMenus() {
		got, err := repo.LoadMenu(ctx, want.Name)
		if err != nil {
			t.Fatalf("load %s: %v", want.Name, err)
		}
		bySKU := make(map[string]MenuItem, len(got.Items))
		for _, item := range got.Items {
			bySKU[item.SKU] = item
		}
		for _, item := range want.Items {
			loaded, ok := bySKU[item.SKU]
			if !ok {
				t.Fatalf("menu %s missing sku %s", want.Name, item.SKU)
			}
			if diff := cmp.Diff(item, loaded); diff != "" {
				t.Fatalf("menu %s sku %s mismatch (-want +got):\n%s", want.Name, item.SKU, diff)
			}
		}
		if diff := cmp.Diff(want.SizeSynonyms, got.SizeSynonyms); diff != "" {
			t.Fatalf("size synonyms mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(want.DefaultSizes, got.DefaultSizes); diff != "" {
			t.Fatalf("default sizes mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestSeedMenuIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	menu := SmallMenu()
	require.NoError(t, repo.SeedMenu(ctx, menu))
	menu.Items[0].BasePriceCents = 199
	require.NoError(t, repo.SeedMenu(ctx, menu))

	got, err := repo.LoadMenu(ctx, menu.Name)
	require.NoError(t, err)
	var count int
	for _, item := range got.Items {
		if item.SKU == "DON001" {
			count++
			if item.BasePriceCents != 199 {
				t.Fatalf("expected updated price, got %d", item.BasePriceCents)
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected a single DON001 row, got %d", count)
	}
}

func TestLoadMenuNotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.LoadMenu(context.Background(), "seasonal")
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
