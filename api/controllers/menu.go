package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/drdonut/voicecart-backend/api/responses"
	"github.com/drdonut/voicecart-backend/internal/catalog"
	pkgerrors "github.com/drdonut/voicecart-backend/pkg/errors"
	"github.com/drdonut/voicecart-backend/pkg/logger"
)

type menuItemResponse struct {
	SKU       string            `json:"sku"`
	Name      string            `json:"name"`
	Category  string            `json:"category"`
	BasePrice string            `json:"base_price"`
	Sizes     map[string]string `json:"sizes,omitempty"`
	Modifiers []string          `json:"modifiers,omitempty"`
}

type menuResponse struct {
	Menu  string             `json:"menu"`
	Items []menuItemResponse `json:"items"`
}

// GetMenu returns the active catalog for one of the served menus with
// display-formatted prices.
func GetMenu(catalogs map[string]*catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "menuName")
		cat, ok := catalogs[name]
		if !ok {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeNotFound, "unknown menu").
					WithDetails(map[string]any{"menu": name}))
			return
		}

		items := cat.Items()
		out := menuResponse{Menu: cat.Name(), Items: make([]menuItemResponse, 0, len(items))}
		for _, item := range items {
			resp := menuItemResponse{
				SKU:       item.SKU,
				Name:      item.Name,
				Category:  item.Category,
				BasePrice: catalog.FormatPrice(item.BasePriceCents),
				Modifiers: item.Modifiers,
			}
			if item.HasSizes() {
				resp.Sizes = make(map[string]string, len(item.SizeDeltaCents))
				for size := range item.SizeDeltaCents {
					resp.Sizes[size] = catalog.FormatPrice(item.PriceCents(size))
				}
			}
			out.Items = append(out.Items, resp)
		}

		responses.WriteSuccess(w, out)
	}
}
