package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/drdonut/voicecart-backend/api/responses"
	"github.com/drdonut/voicecart-backend/api/validators"
	"github.com/drdonut/voicecart-backend/internal/cart"
	"github.com/drdonut/voicecart-backend/internal/session"
	"github.com/drdonut/voicecart-backend/pkg/logger"
)

type sessionResponse struct {
	SessionID string `json:"session_id"`
	CreatedAt string `json:"created_at"`
}

type applyEventResponse struct {
	SessionID   string            `json:"session_id"`
	Cart        cart.Snapshot     `json:"cart"`
	Diagnostics []cart.Diagnostic `json:"diagnostics"`
}

func CreateSession(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := registry.Create(r.Context())
		responses.WriteSuccessStatus(w, http.StatusCreated, sessionResponse{
			SessionID: s.ID,
			CreatedAt: s.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
}

func DeleteSession(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		if err := registry.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"session_id": id, "status": "deleted"})
	}
}

// ApplyEvent ingests one order event into a session's cart and returns the
// resulting snapshot. Unresolvable text is not an HTTP error; it comes back
// as a diagnostic on an unchanged cart.
func ApplyEvent(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		ctx := logg.WithSessionID(r.Context(), id)

		var event cart.Event
		if err := validators.DecodeJSONBody(r, &event); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := event.Validate(); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		snap, diags, err := registry.Apply(ctx, id, event)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if diags == nil {
			diags = []cart.Diagnostic{}
		}

		responses.WriteSuccess(w, applyEventResponse{
			SessionID:   id,
			Cart:        snap,
			Diagnostics: diags,
		})
	}
}

func GetCart(registry *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		snap, err := registry.Snapshot(id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, applyEventResponse{SessionID: id, Cart: snap, Diagnostics: []cart.Diagnostic{}})
	}
}
