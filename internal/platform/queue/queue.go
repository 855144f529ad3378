// Package queue dispatches analysis jobs to a background runner. Two
// implementations exist: an in-process queue for single-node deployments and
// tests, and a Redis-backed queue for deployments with separate worker
// processes.
package queue

import (
	"context"

	"github.com/google/uuid"
)

// Runner consumes one job. Run must be safe to call for analyses that no
// longer need work; duplicate delivery is possible.
type Runner interface {
	Run(ctx context.Context, analysisID uuid.UUID)
}

// JobInfo describes an enqueued job.
type JobInfo struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

// Queue accepts jobs for asynchronous execution.
type Queue interface {
	Enqueue(ctx context.Context, analysisID uuid.UUID) (JobInfo, error)
}
