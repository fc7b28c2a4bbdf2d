package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/drdonut/voicecart-backend/api/responses"
	"github.com/drdonut/voicecart-backend/pkg/config"
	pkgerrors "github.com/drdonut/voicecart-backend/pkg/errors"
	"github.com/drdonut/voicecart-backend/pkg/logger"
)

// Pinger is the health-check surface a readiness dependency exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

const readyProbeTimeout = 3 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-VoiceCart-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes every wired dependency. Optional dependencies (redis,
// pubsub) are passed as nil when not configured and skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-VoiceCart-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyProbeTimeout)
		defer cancel()

		for name, p := range checks {
			if p == nil {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency not ready").
						WithDetails(map[string]any{"dependency": name}))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
