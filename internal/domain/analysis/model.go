package analysis

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/verae/ironrisk/internal/risk"
)

// Status is the lifecycle state of an analysis.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ErrIllegalTransition is returned when a status change violates the
// lifecycle; the entity is left unchanged.
var ErrIllegalTransition = errors.New("analysis: illegal status transition")

// transitions is the complete lifecycle. Terminal states have no successors.
var transitions = map[Status]map[Status]bool{
	StatusQueued:     {StatusProcessing: true, StatusFailed: true},
	StatusProcessing: {StatusCompleted: true, StatusFailed: true},
	StatusCompleted:  {},
	StatusFailed:     {},
}

// progressStages maps each status to the coarse stage label shown to clients.
var progressStages = map[Status]string{
	StatusQueued:     "queued",
	StatusProcessing: "scoring",
	StatusCompleted:  "completed",
	StatusFailed:     "failed",
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Upload describes the client-side document the lab values were read from.
// It is recorded for provenance and never interpreted by the scorer.
type Upload struct {
	Filename       string  `json:"filename"`
	ContentType    string  `json:"content_type"`
	SizeBytes      int64   `json:"size_bytes"`
	ChecksumSHA256 *string `json:"checksum_sha256,omitempty"`
	Source         *string `json:"source,omitempty"`
}

// Analysis maps to the analyses table. Payload is stored verbatim at creation
// time; Result is written exactly once, when processing finishes.
type Analysis struct {
	ID            uuid.UUID        `db:"id" json:"analysis_id"`
	UserID        uuid.UUID        `db:"user_id" json:"user_id"`
	Status        Status           `db:"status" json:"status"`
	ProgressStage string           `db:"progress_stage" json:"progress_stage"`
	Upload        *Upload          `db:"upload" json:"-"`
	Payload       *risk.LabPayload `db:"payload" json:"-"`
	Result        *risk.Result     `db:"result" json:"result,omitempty"`
	ErrorCode     *string          `db:"error_code" json:"error_code,omitempty"`
	ErrorMessage  *string          `db:"error_message" json:"error_message,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// New returns a queued analysis for the given owner, upload provenance and
// payload.
func New(userID uuid.UUID, upload *Upload, payload *risk.LabPayload) *Analysis {
	return &Analysis{
		ID:            uuid.New(),
		UserID:        userID,
		Status:        StatusQueued,
		ProgressStage: progressStages[StatusQueued],
		Upload:        upload,
		Payload:       payload,
	}
}

// TransitionTo moves the analysis to next, keeping the progress stage in
// lockstep. On an illegal transition the entity is unchanged.
func (a *Analysis) TransitionTo(next Status) error {
	if !transitions[a.Status][next] {
		return ErrIllegalTransition
	}
	a.Status = next
	a.ProgressStage = progressStages[next]
	return nil
}

// Fail moves the analysis to failed and records the failure cause.
func (a *Analysis) Fail(code, message string) error {
	if err := a.TransitionTo(StatusFailed); err != nil {
		return err
	}
	a.ErrorCode = &code
	a.ErrorMessage = &message
	return nil
}

// Complete moves the analysis to completed, attaching the scoring result.
func (a *Analysis) Complete(result *risk.Result) error {
	if err := a.TransitionTo(StatusCompleted); err != nil {
		return err
	}
	a.Result = result
	return nil
}
