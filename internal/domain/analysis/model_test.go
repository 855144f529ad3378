package analysis

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/verae/ironrisk/internal/risk"
)

func TestNew_StartsQueued(t *testing.T) {
	a := New(uuid.New(), nil, &risk.LabPayload{})
	if a.Status != StatusQueued {
		t.Errorf("status = %s", a.Status)
	}
	if a.ProgressStage != "queued" {
		t.Errorf("progress_stage = %s", a.ProgressStage)
	}
	if a.ID == uuid.Nil {
		t.Error("id must be assigned")
	}
}

func TestTransitionTo_LegalPaths(t *testing.T) {
	paths := [][]Status{
		{StatusProcessing, StatusCompleted},
		{StatusProcessing, StatusFailed},
		{StatusFailed},
	}
	for _, path := range paths {
		a := New(uuid.New(), nil, nil)
		for _, next := range path {
			if err := a.TransitionTo(next); err != nil {
				t.Errorf("path %v: transition to %s: %v", path, next, err)
			}
		}
	}
}

func TestTransitionTo_IllegalLeavesStateUnchanged(t *testing.T) {
	cases := []struct {
		from Status
		to   Status
	}{
		{StatusQueued, StatusCompleted},
		{StatusQueued, StatusQueued},
		{StatusProcessing, StatusQueued},
		{StatusCompleted, StatusProcessing},
		{StatusCompleted, StatusFailed},
		{StatusFailed, StatusQueued},
		{StatusFailed, StatusCompleted},
	}
	for _, c := range cases {
		a := &Analysis{Status: c.from, ProgressStage: progressStages[c.from]}
		err := a.TransitionTo(c.to)
		if !errors.Is(err, ErrIllegalTransition) {
			t.Errorf("%s -> %s: err = %v, want ErrIllegalTransition", c.from, c.to, err)
		}
		if a.Status != c.from {
			t.Errorf("%s -> %s: status mutated to %s", c.from, c.to, a.Status)
		}
		if a.ProgressStage != progressStages[c.from] {
			t.Errorf("%s -> %s: stage mutated to %s", c.from, c.to, a.ProgressStage)
		}
	}
}

func TestProgressStage_TracksStatus(t *testing.T) {
	a := New(uuid.New(), nil, nil)
	_ = a.TransitionTo(StatusProcessing)
	if a.ProgressStage != "scoring" {
		t.Errorf("stage = %s, want scoring", a.ProgressStage)
	}
	_ = a.TransitionTo(StatusCompleted)
	if a.ProgressStage != "completed" {
		t.Errorf("stage = %s, want completed", a.ProgressStage)
	}
}

func TestFail_RecordsCause(t *testing.T) {
	a := New(uuid.New(), nil, nil)
	if err := a.Fail(FailMissingPayload, "no payload"); err != nil {
		t.Fatal(err)
	}
	if a.Status != StatusFailed || *a.ErrorCode != FailMissingPayload || *a.ErrorMessage != "no payload" {
		t.Errorf("analysis = %+v", a)
	}

	// A second failure hits a terminal state.
	if err := a.Fail(FailInference, "x"); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("err = %v", err)
	}
}

func TestComplete_AttachesResult(t *testing.T) {
	a := New(uuid.New(), nil, nil)
	_ = a.TransitionTo(StatusProcessing)

	res := &risk.Result{Status: "ok"}
	if err := a.Complete(res); err != nil {
		t.Fatal(err)
	}
	if a.Result != res {
		t.Error("result not attached")
	}
	if !a.Status.Terminal() {
		t.Error("completed must be terminal")
	}
}

func TestStatus_Terminal(t *testing.T) {
	if StatusQueued.Terminal() || StatusProcessing.Terminal() {
		t.Error("queued and processing are not terminal")
	}
	if !StatusCompleted.Terminal() || !StatusFailed.Terminal() {
		t.Error("completed and failed are terminal")
	}
	if Status("bogus").Valid() {
		t.Error("unknown status must not validate")
	}
}
