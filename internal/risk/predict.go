package risk

import "math"

// Tier is the discrete risk classification, ordered by descending clinical
// urgency. It is always derived from the iron index, never set independently.
type Tier string

const (
	TierHigh    Tier = "HIGH"
	TierWarning Tier = "WARNING"
	TierGray    Tier = "GRAY"
	TierLow     Tier = "LOW"
)

// ResolveTier maps an iron index to its risk tier. Band edges are inclusive on
// the upper side of each band except the first.
func ResolveTier(ironIndex float64) Tier {
	switch {
	case ironIndex < 0:
		return TierHigh
	case ironIndex <= 2:
		return TierWarning
	case ironIndex <= 5:
		return TierGray
	default:
		return TierLow
	}
}

var tierActions = map[Tier]string{
	TierHigh:    "Срочно: ферритин + терапевт.",
	TierWarning: "Рекомендовано: добор ферритина.",
	TierGray:    "Совет: мониторинг + питание.",
	TierLow:     "Спокойствие: доборы не нужны.",
}

// ResolveAction returns the clinical recommendation for a tier. Total over the
// four tiers; an unknown tier is a programmer error.
func ResolveAction(tier Tier) string {
	action, ok := tierActions[tier]
	if !ok {
		panic("risk: unknown tier " + string(tier))
	}
	return action
}

// DisplayRisk maps the iron index to a 0-100 display percentage via a logistic
// transform, rounded to one decimal. Monotonically decreasing: a higher index
// means lower displayed risk.
func DisplayRisk(ironIndex float64) float64 {
	risk := 1 / (1 + math.Exp(0.5*ironIndex))
	return math.Round(risk*1000) / 10
}

// Result statuses.
const (
	StatusOK         = "ok"
	StatusNeedsInput = "needs_input"
)

// Error codes for soft failures surfaced in a Result.
const (
	ErrCodeInvalidPayload = "invalid_payload"
	ErrCodeNeedsInput     = "needs_input"
)

// Result is the outcome of one prediction: either a complete RiskAssessment
// (Status "ok") or a needs_input outcome describing what is wrong with the
// payload. Soft failures are values, never errors.
type Result struct {
	Status     string `json:"status"`
	Confidence string `json:"confidence"`
	ModelName  string `json:"model_name"`

	ErrorCode             string         `json:"error_code,omitempty"`
	Message               string         `json:"message,omitempty"`
	InvalidFields         []InvalidField `json:"invalid_fields"`
	MissingRequiredFields []string       `json:"missing_required_fields"`

	IronIndex      *float64      `json:"iron_index"`
	RiskPercent    *float64      `json:"risk_percent"`
	RiskTier       *Tier         `json:"risk_tier"`
	ClinicalAction *string       `json:"clinical_action"`
	Explanations   []Explanation `json:"explanations"`
}

// OK reports whether the result carries a complete assessment.
func (r *Result) OK() bool { return r.Status == StatusOK }

func (e *Engine) needsInput(confidence, errorCode, message string, missing []string, invalid []InvalidField) *Result {
	if missing == nil {
		missing = []string{}
	}
	if invalid == nil {
		invalid = []InvalidField{}
	}
	return &Result{
		Status:                StatusNeedsInput,
		Confidence:            confidence,
		ModelName:             e.modelName,
		ErrorCode:             errorCode,
		Message:               message,
		InvalidFields:         invalid,
		MissingRequiredFields: missing,
		Explanations:          []Explanation{},
	}
}

// Predict validates, normalizes and scores a payload. Invalid numeric values
// short-circuit before the completeness check. The error return is reserved
// for model execution failures; payload problems come back as a needs_input
// Result.
func (e *Engine) Predict(p *LabPayload) (*Result, error) {
	fields := p.Sparse()

	if invalid := ValidateValues(fields); len(invalid) > 0 {
		return e.needsInput("low", ErrCodeInvalidPayload,
			"Payload contains invalid numeric values", nil, invalid), nil
	}

	missing := ResolveMissingRequired(fields)
	confidence := ResolveConfidence(fields, missing)
	if len(missing) > 0 {
		return e.needsInput(confidence, ErrCodeNeedsInput,
			"Required fields are missing", missing, nil), nil
	}

	ironIndex := e.PredictIronIndex(p)
	tier := ResolveTier(ironIndex)
	action := ResolveAction(tier)
	percent := DisplayRisk(ironIndex)
	rounded := round2(ironIndex)

	return &Result{
		Status:                StatusOK,
		Confidence:            confidence,
		ModelName:             e.modelName,
		InvalidFields:         []InvalidField{},
		MissingRequiredFields: []string{},
		IronIndex:             &rounded,
		RiskPercent:           &percent,
		RiskTier:              &tier,
		ClinicalAction:        &action,
		Explanations:          e.Explanations(p, DefaultTopN),
	}, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
