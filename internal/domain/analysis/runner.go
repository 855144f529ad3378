package analysis

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/verae/ironrisk/internal/risk"
)

// Failure codes recorded on the analysis.
const (
	FailMissingPayload = "missing_lab_payload"
	FailInference      = "inference_error"
)

// Scorer produces a risk result for a payload. The prediction engine
// implements it; tests substitute failures.
type Scorer interface {
	Predict(p *risk.LabPayload) (*risk.Result, error)
}

// TxManager runs a function inside a database transaction so that the
// repository's row locks hold for its duration.
type TxManager interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Runner executes one analysis job: claim, score, finalize. Claim and
// finalize each run in their own short transaction with the row locked;
// inference runs outside any lock so a slow model never blocks the table.
type Runner struct {
	repo   Repository
	tx     TxManager
	scorer Scorer
	log    zerolog.Logger
}

func NewRunner(repo Repository, tx TxManager, scorer Scorer, log zerolog.Logger) *Runner {
	return &Runner{repo: repo, tx: tx, scorer: scorer, log: log}
}

// Run processes one analysis to a terminal state. It is safe under duplicate
// delivery: redundant invocations observe a claimed or terminal analysis and
// leave it alone. Errors are logged, not returned; the queue has nothing
// useful to do with them.
func (r *Runner) Run(ctx context.Context, analysisID uuid.UUID) {
	if err := r.process(ctx, analysisID); err != nil {
		r.log.Error().Err(err).Str("analysis_id", analysisID.String()).Msg("analysis job failed")
	}
}

func (r *Runner) process(ctx context.Context, id uuid.UUID) error {
	var payload *risk.LabPayload
	claimed := false

	err := r.tx.InTx(ctx, func(ctx context.Context) error {
		a, err := r.repo.GetForUpdate(ctx, id)
		if errors.Is(err, ErrNotFound) {
			r.log.Warn().Str("analysis_id", id.String()).Msg("job for unknown analysis")
			return nil
		}
		if err != nil {
			return err
		}
		// Terminal: nothing to do. Processing: claimed by another worker.
		if a.Status != StatusQueued {
			return nil
		}

		if a.Payload.IsEmpty() {
			if err := a.Fail(FailMissingPayload, "Analysis has no lab payload to score"); err != nil {
				return err
			}
			return r.repo.Update(ctx, a)
		}

		if err := a.TransitionTo(StatusProcessing); err != nil {
			return err
		}
		if err := r.repo.Update(ctx, a); err != nil {
			return err
		}
		payload = a.Payload
		claimed = true
		return nil
	})
	if err != nil || !claimed {
		return err
	}

	result, scoreErr := r.scorer.Predict(payload)

	return r.tx.InTx(ctx, func(ctx context.Context) error {
		a, err := r.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		// Someone else finalized while we were scoring.
		if a.Status != StatusProcessing {
			return nil
		}

		if scoreErr != nil {
			if err := a.Fail(FailInference, scoreErr.Error()); err != nil {
				return err
			}
		} else {
			if err := a.Complete(result); err != nil {
				return err
			}
		}
		return r.repo.Update(ctx, a)
	})
}
