package analysis

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/verae/ironrisk/internal/platform/queue"
	"github.com/verae/ironrisk/internal/risk"
)

// -- Mock Repository --

type mockRepo struct {
	analyses map[uuid.UUID]*Analysis
	now      time.Time
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		analyses: make(map[uuid.UUID]*Analysis),
		now:      time.Now().UTC(),
	}
}

func (m *mockRepo) Create(_ context.Context, a *Analysis) error {
	m.now = m.now.Add(time.Second)
	a.CreatedAt = m.now
	a.UpdatedAt = m.now
	cp := *a
	m.analyses[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id, userID uuid.UUID) (*Analysis, error) {
	a, ok := m.analyses[id]
	if !ok || a.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) GetForUpdate(_ context.Context, id uuid.UUID) (*Analysis, error) {
	a, ok := m.analyses[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, a *Analysis) error {
	if _, ok := m.analyses[a.ID]; !ok {
		return ErrNotFound
	}
	a.UpdatedAt = time.Now().UTC()
	cp := *a
	m.analyses[a.ID] = &cp
	return nil
}

func (m *mockRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*Analysis, int, error) {
	var mine []*Analysis
	for _, a := range m.analyses {
		if a.UserID == userID {
			cp := *a
			mine = append(mine, &cp)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })
	total := len(mine)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return mine[offset:end], total, nil
}

// -- Mock Queue --

type mockQueue struct {
	enqueued []uuid.UUID
	err      error
}

func (q *mockQueue) Enqueue(_ context.Context, analysisID uuid.UUID) (queue.JobInfo, error) {
	if q.err != nil {
		return queue.JobInfo{}, q.err
	}
	q.enqueued = append(q.enqueued, analysisID)
	return queue.JobInfo{ID: uuid.New(), Status: "queued"}, nil
}

// -- Tests --

func TestCreate_QueuesWithoutScoring(t *testing.T) {
	repo := newMockRepo()
	q := &mockQueue{}
	svc := NewService(repo, q)

	userID := uuid.New()
	a, job, err := svc.Create(context.Background(), userID, nil, &risk.LabPayload{})
	if err != nil {
		t.Fatal(err)
	}

	if a.Status != StatusQueued {
		t.Errorf("status = %s, want queued", a.Status)
	}
	if a.Result != nil {
		t.Error("create must not score")
	}
	if job.ID == uuid.Nil || job.Status != "queued" {
		t.Errorf("job = %+v", job)
	}
	if len(q.enqueued) != 1 || q.enqueued[0] != a.ID {
		t.Errorf("enqueued = %v", q.enqueued)
	}
	if _, err := repo.GetByID(context.Background(), a.ID, userID); err != nil {
		t.Errorf("analysis not persisted: %v", err)
	}
}

func TestCreate_EnqueueFailure(t *testing.T) {
	svc := NewService(newMockRepo(), &mockQueue{err: errors.New("redis down")})
	if _, _, err := svc.Create(context.Background(), uuid.New(), nil, &risk.LabPayload{}); err == nil {
		t.Error("enqueue failure must surface")
	}
}

func TestGetStatus_OwnerScoped(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockQueue{})

	owner := uuid.New()
	a, _, _ := svc.Create(context.Background(), owner, nil, &risk.LabPayload{})

	if _, err := svc.GetStatus(context.Background(), a.ID, owner); err != nil {
		t.Errorf("owner read: %v", err)
	}

	// Another user's read is indistinguishable from a missing analysis.
	if _, err := svc.GetStatus(context.Background(), a.ID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("stranger read: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.GetStatus(context.Background(), uuid.New(), owner); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing read: err = %v, want ErrNotFound", err)
	}
}

func TestGetResult_RequiresCompleted(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockQueue{})

	owner := uuid.New()
	a, _, _ := svc.Create(context.Background(), owner, nil, &risk.LabPayload{})

	if _, err := svc.GetResult(context.Background(), a.ID, owner); !errors.Is(err, ErrNotCompleted) {
		t.Errorf("queued: err = %v, want ErrNotCompleted", err)
	}

	stored := repo.analyses[a.ID]
	_ = stored.TransitionTo(StatusProcessing)
	if _, err := svc.GetResult(context.Background(), a.ID, owner); !errors.Is(err, ErrNotCompleted) {
		t.Errorf("processing: err = %v, want ErrNotCompleted", err)
	}

	_ = stored.Complete(&risk.Result{Status: "ok"})
	got, err := svc.GetResult(context.Background(), a.ID, owner)
	if err != nil {
		t.Fatal(err)
	}
	if got.Result == nil || got.Result.Status != "ok" {
		t.Errorf("result = %+v", got.Result)
	}
}

func TestGetResult_FailedReadsAsNotCompleted(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockQueue{})

	owner := uuid.New()
	a, _, _ := svc.Create(context.Background(), owner, nil, &risk.LabPayload{})
	_ = repo.analyses[a.ID].Fail(FailMissingPayload, "no payload")

	if _, err := svc.GetResult(context.Background(), a.ID, owner); !errors.Is(err, ErrNotCompleted) {
		t.Errorf("failed: err = %v, want ErrNotCompleted", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockQueue{})

	owner := uuid.New()
	first, _, _ := svc.Create(context.Background(), owner, nil, &risk.LabPayload{})
	second, _, _ := svc.Create(context.Background(), owner, nil, &risk.LabPayload{})
	svc.Create(context.Background(), uuid.New(), nil, &risk.LabPayload{})

	items, total, err := svc.List(context.Background(), owner, 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("total = %d, items = %d", total, len(items))
	}
	if items[0].ID != second.ID || items[1].ID != first.ID {
		t.Error("expected newest first")
	}
}
