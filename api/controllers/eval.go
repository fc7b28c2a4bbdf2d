package controllers

import (
	"net/http"

	"github.com/drdonut/voicecart-backend/api/responses"
	"github.com/drdonut/voicecart-backend/api/validators"
	"github.com/drdonut/voicecart-backend/internal/catalog"
	"github.com/drdonut/voicecart-backend/internal/evaluation"
	"github.com/drdonut/voicecart-backend/pkg/config"
	pkgerrors "github.com/drdonut/voicecart-backend/pkg/errors"
	"github.com/drdonut/voicecart-backend/pkg/logger"
)

type runEvaluationRequest struct {
	Dataset string `json:"dataset,omitempty"`
	Menu    string `json:"menu,omitempty" validate:"omitempty,oneof=small large"`
}

// RunEvaluation replays a labeled dataset against the engine and returns the
// full report. Wired only outside prod; the CLI is the primary harness and
// this endpoint exists for quick dataset iteration.
func RunEvaluation(cfg *config.Config, menus []catalog.Menu, opts evaluation.Options, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req runEvaluationRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		path := req.Dataset
		if path == "" {
			path = cfg.Eval.DatasetPath
		}
		if path == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "no dataset configured or supplied"))
			return
		}

		dataset, err := evaluation.LoadDataset(path)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cases := dataset.Cases
		if req.Menu != "" {
			cases = dataset.FilterByMenu(req.Menu)
		}

		runner, err := evaluation.NewRunner(menus, opts, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := runner.Run(r.Context(), cases)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}
