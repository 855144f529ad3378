package queue

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Inline runs each job on its own goroutine inside the API process. Job state
// lives entirely in the database, so a crash before completion leaves the
// analysis queued or processing rather than losing it.
type Inline struct {
	runner Runner
	log    zerolog.Logger
}

func NewInline(runner Runner, log zerolog.Logger) *Inline {
	return &Inline{runner: runner, log: log}
}

func (q *Inline) Enqueue(ctx context.Context, analysisID uuid.UUID) (JobInfo, error) {
	jobID := uuid.New()
	q.log.Debug().
		Str("job_id", jobID.String()).
		Str("analysis_id", analysisID.String()).
		Msg("inline job enqueued")

	// Detached from the request context: the job outlives the HTTP request.
	go q.runner.Run(context.Background(), analysisID)

	return JobInfo{ID: jobID, Status: "queued"}, nil
}
