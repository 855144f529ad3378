package analysis

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/verae/ironrisk/internal/platform/queue"
	"github.com/verae/ironrisk/internal/risk"
)

// Service is the request-path facade: it creates analyses and reads them
// back. All scoring happens in the Runner.
type Service struct {
	repo  Repository
	queue queue.Queue
}

func NewService(repo Repository, q queue.Queue) *Service {
	return &Service{repo: repo, queue: q}
}

// Create persists a queued analysis and enqueues its job. The payload is not
// validated here: soft payload problems surface in the stored result once the
// job runs.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, upload *Upload, payload *risk.LabPayload) (*Analysis, queue.JobInfo, error) {
	a := New(userID, upload, payload)
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, queue.JobInfo{}, fmt.Errorf("create analysis: %w", err)
	}

	job, err := s.queue.Enqueue(ctx, a.ID)
	if err != nil {
		return nil, queue.JobInfo{}, fmt.Errorf("enqueue analysis %s: %w", a.ID, err)
	}
	return a, job, nil
}

// GetStatus returns an analysis owned by userID.
func (s *Service) GetStatus(ctx context.Context, id, userID uuid.UUID) (*Analysis, error) {
	return s.repo.GetByID(ctx, id, userID)
}

// GetResult returns a completed analysis. Anything not yet terminal, or
// failed, reads as ErrNotCompleted.
func (s *Service) GetResult(ctx context.Context, id, userID uuid.UUID) (*Analysis, error) {
	a, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusCompleted {
		return nil, ErrNotCompleted
	}
	return a, nil
}

// List returns the user's analyses, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Analysis, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}
