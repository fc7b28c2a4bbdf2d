package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/drdonut/voicecart-backend/api/controllers"
	"github.com/drdonut/voicecart-backend/internal/cart"
	"github.com/drdonut/voicecart-backend/internal/catalog"
	"github.com/drdonut/voicecart-backend/internal/resolver"
	"github.com/drdonut/voicecart-backend/internal/session"
	"github.com/drdonut/voicecart-backend/pkg/config"
	"github.com/drdonut/voicecart-backend/pkg/logger"
	"github.com/drdonut/voicecart-backend/pkg/types"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Session.TTL = 0

	logg := logger.New(logger.Options{ServiceName: "router-test", Level: zerolog.Disabled})

	cat, err := catalog.New(catalog.SmallMenu())
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	res := resolver.New(cat, resolver.DefaultMinConfidence)
	registry := session.NewRegistry(cfg.Session, func() *cart.Engine {
		return cart.NewEngine(cat, res, cart.Options{})
	}, nil, nil, logg)

	return NewRouter(cfg, logg, Deps{
		Registry:    registry,
		Catalogs:    map[string]*catalog.Catalog{catalog.MenuSmall: cat},
		ReadyChecks: map[string]controllers.Pinger{"database": stubPinger{}},
	})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	data, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data payload %T", envelope.Data)
	}
	return data
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestRouter(t)

	if w := doJSON(t, h, http.MethodGet, "/health/live", nil); w.Code != http.StatusOK {
		t.Fatalf("live = %d", w.Code)
	}
	if w := doJSON(t, h, http.MethodGet, "/health/ready", nil); w.Code != http.StatusOK {
		t.Fatalf("ready = %d", w.Code)
	}
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	h := newTestRouter(t)

	w := doJSON(t, h, http.MethodPost, "/api/v1/sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create session = %d body %s", w.Code, w.Body.String())
	}
	id, _ := decodeData(t, w)["session_id"].(string)
	if id == "" {
		t.Fatal("missing session_id in create response")
	}

	w = doJSON(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/events", map[string]any{
		"type":      "add",
		"item_text": "two coffees",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("apply event = %d body %s", w.Code, w.Body.String())
	}
	data := decodeData(t, w)
	snap, _ := data["cart"].(map[string]any)
	lines, _ := snap["lines"].([]any)
	if len(lines) != 1 {
		t.Fatalf("expected one cart line, got %v", snap)
	}
	line := lines[0].(map[string]any)
	if line["sku"] != "COF001" || line["quantity"] != float64(2) {
		t.Fatalf("unexpected line %v", line)
	}

	w = doJSON(t, h, http.MethodGet, "/api/v1/sessions/"+id+"/cart", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get cart = %d", w.Code)
	}

	w = doJSON(t, h, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete session = %d", w.Code)
	}

	w = doJSON(t, h, http.MethodGet, "/api/v1/sessions/"+id+"/cart", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("cart after delete = %d", w.Code)
	}
}

func TestApplyEventRejectsMalformedBody(t *testing.T) {
	h := newTestRouter(t)

	w := doJSON(t, h, http.MethodPost, "/api/v1/sessions", nil)
	id, _ := decodeData(t, w)["session_id"].(string)

	w = doJSON(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/events", map[string]any{
		"type": "teleport",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad event type, got %d", w.Code)
	}
}

func TestApplyEventUnknownSession(t *testing.T) {
	h := newTestRouter(t)

	w := doJSON(t, h, http.MethodPost, "/api/v1/sessions/nope/events", map[string]any{
		"type":      "add",
		"item_text": "coffee",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", w.Code)
	}
}

func TestGetMenu(t *testing.T) {
	h := newTestRouter(t)

	w := doJSON(t, h, http.MethodGet, "/api/v1/menus/small", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get menu = %d", w.Code)
	}
	data := decodeData(t, w)
	items, _ := data["items"].([]any)
	if len(items) != 5 {
		t.Fatalf("expected 5 small-menu items, got %d", len(items))
	}

	if w := doJSON(t, h, http.MethodGet, "/api/v1/menus/seasonal", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown menu, got %d", w.Code)
	}
}

func TestReadinessFailureSurfacesDependency(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{ServiceName: "router-test", Level: zerolog.Disabled})

	cat, err := catalog.New(catalog.SmallMenu())
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	res := resolver.New(cat, resolver.DefaultMinConfidence)
	registry := session.NewRegistry(cfg.Session, func() *cart.Engine {
		return cart.NewEngine(cat, res, cart.Options{})
	}, nil, nil, logg)

	h := NewRouter(cfg, logg, Deps{
		Registry: registry,
		Catalogs: map[string]*catalog.Catalog{catalog.MenuSmall: cat},
		ReadyChecks: map[string]controllers.Pinger{
			"database": stubPinger{err: context.DeadlineExceeded},
		},
	})

	if w := doJSON(t, h, http.MethodGet, "/health/ready", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when a dependency is down, got %d", w.Code)
	}
}
