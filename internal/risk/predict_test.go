package risk

import (
	"math"
	"strings"
	"testing"
)

func TestResolveTier_Boundaries(t *testing.T) {
	cases := []struct {
		index float64
		want  Tier
	}{
		{-3.1, TierHigh},
		{-0.0001, TierHigh},
		{0, TierWarning},
		{2, TierWarning},
		{2.0001, TierGray},
		{5, TierGray},
		{5.0001, TierLow},
		{8.2, TierLow},
	}
	for _, c := range cases {
		if got := ResolveTier(c.index); got != c.want {
			t.Errorf("ResolveTier(%v) = %s, want %s", c.index, got, c.want)
		}
	}
}

func TestResolveAction_TotalOverTiers(t *testing.T) {
	for _, tier := range []Tier{TierHigh, TierWarning, TierGray, TierLow} {
		if ResolveAction(tier) == "" {
			t.Errorf("empty action for %s", tier)
		}
	}
}

func TestDisplayRisk_MonotonicallyDecreasing(t *testing.T) {
	prev := math.Inf(1)
	for x := -10.0; x <= 10.0; x += 0.5 {
		got := DisplayRisk(x)
		if got > prev {
			t.Fatalf("DisplayRisk(%v) = %v, rose above %v", x, got, prev)
		}
		prev = got
	}

	if got := DisplayRisk(0); got != 50 {
		t.Errorf("DisplayRisk(0) = %v, want 50", got)
	}
}

func TestPredict_DeficientProfile(t *testing.T) {
	e := NewEngine("fallback-v1", "", "")
	res, err := e.Predict(deficientPayload())
	if err != nil {
		t.Fatal(err)
	}

	if !res.OK() {
		t.Fatalf("status = %s, want ok (%+v)", res.Status, res)
	}
	if res.IronIndex == nil || math.Abs(*res.IronIndex-(-2.52)) > 1e-9 {
		t.Errorf("iron_index = %v, want -2.52", res.IronIndex)
	}
	if res.RiskTier == nil || *res.RiskTier != TierHigh {
		t.Errorf("risk_tier = %v, want HIGH", res.RiskTier)
	}
	if res.ClinicalAction == nil || !strings.HasPrefix(*res.ClinicalAction, "Срочно") {
		t.Errorf("clinical_action = %v", res.ClinicalAction)
	}
	if res.RiskPercent == nil || *res.RiskPercent <= 50 {
		t.Errorf("risk_percent = %v, want above 50 for a negative index", res.RiskPercent)
	}
	if res.ModelName != "fallback-v1" {
		t.Errorf("model_name = %s", res.ModelName)
	}
	if res.Confidence != "medium" {
		t.Errorf("confidence = %s, want medium", res.Confidence)
	}
	if len(res.Explanations) == 0 {
		t.Error("expected explanations")
	}
}

func TestPredict_MissingRequired(t *testing.T) {
	e := NewEngine("fallback-v1", "", "")
	p := deficientPayload()
	p.LBXRDW = nil
	p.LBXHCT = nil

	res, err := e.Predict(p)
	if err != nil {
		t.Fatal(err)
	}

	if res.Status != StatusNeedsInput || res.ErrorCode != ErrCodeNeedsInput {
		t.Fatalf("status=%s error_code=%s", res.Status, res.ErrorCode)
	}
	want := []string{"LBXRDW", "LBXHCT"}
	if len(res.MissingRequiredFields) != 2 {
		t.Fatalf("missing = %v, want %v", res.MissingRequiredFields, want)
	}
	for i, f := range want {
		if res.MissingRequiredFields[i] != f {
			t.Errorf("missing[%d] = %s, want %s", i, res.MissingRequiredFields[i], f)
		}
	}
	if res.IronIndex != nil || res.RiskTier != nil {
		t.Error("needs_input result must not carry assessment fields")
	}
	if res.InvalidFields == nil || res.Explanations == nil {
		t.Error("slices must be non-nil so the JSON encodes [] not null")
	}
}

func TestPredict_InvalidValueShortCircuits(t *testing.T) {
	e := NewEngine("fallback-v1", "", "")
	// Negative age plus a missing required field: validation wins.
	p := &LabPayload{RIDAGEYR: ptr(-1)}

	res, err := e.Predict(p)
	if err != nil {
		t.Fatal(err)
	}

	if res.Status != StatusNeedsInput || res.ErrorCode != ErrCodeInvalidPayload {
		t.Fatalf("status=%s error_code=%s, want needs_input/invalid_payload", res.Status, res.ErrorCode)
	}
	if len(res.InvalidFields) != 1 || res.InvalidFields[0].Field != "RIDAGEYR" ||
		res.InvalidFields[0].Reason != ReasonMustBeNonNegative {
		t.Errorf("invalid_fields = %v", res.InvalidFields)
	}
	if res.Confidence != "low" {
		t.Errorf("confidence = %s, want low", res.Confidence)
	}
	if len(res.MissingRequiredFields) != 0 {
		t.Errorf("missing must be empty on the invalid-payload path, got %v", res.MissingRequiredFields)
	}
}

func TestPredict_TierFromUnroundedIndex(t *testing.T) {
	// Raw index 2.004 sits in the GRAY band; the reported index rounds to
	// 2.0, which naively reads as WARNING.
	path := writeArtifact(t, `{
		"bias": 2.004,
		"weights": {"LBXHGB": 1.0},
		"baselines": {"LBXHGB": 12.0}
	}`)
	e := NewEngine("m", path, "")

	res, err := e.Predict(deficientPayload())
	if err != nil {
		t.Fatal(err)
	}
	if *res.IronIndex != 2.0 {
		t.Errorf("reported iron_index = %v, want 2.0", *res.IronIndex)
	}
	if *res.RiskTier != TierGray {
		t.Errorf("risk_tier = %s, want GRAY from the unrounded index", *res.RiskTier)
	}
}

func TestExplanations_FallbackReducedSet(t *testing.T) {
	e := NewEngine("fallback-v1", "", "")
	exps := e.Explanations(deficientPayload(), DefaultTopN)

	if len(exps) != 3 {
		t.Fatalf("fallback explanations = %d, want 3", len(exps))
	}
	// Ascending by impact: the RDW term is the only negative one.
	if exps[0].Feature != "LBXRDW" || exps[0].Direction != "negative" {
		t.Errorf("first explanation = %+v, want negative LBXRDW", exps[0])
	}
	for i := 1; i < len(exps); i++ {
		if exps[i].Impact < exps[i-1].Impact {
			t.Errorf("explanations not ascending at %d: %v < %v", i, exps[i].Impact, exps[i-1].Impact)
		}
	}
	if exps[0].Label != "Ширина распределения эритроцитов (RDW)" {
		t.Errorf("label = %s", exps[0].Label)
	}
}

func TestExplanations_NoiseFloorAndCap(t *testing.T) {
	path := writeArtifact(t, `{
		"bias": 0,
		"weights": {
			"LBXHGB": 1.0, "LBXRDW": -1.0, "LBXMCVSI": 1.0, "LBXMCHSI": -1.0,
			"LBXRBCSI": 1.0, "LBXHCT": -1.0, "RIDAGEYR": 1.0, "BMXBMI": -1.0,
			"LBXPLTSI": 1.0, "LBXWBCSI": -1.0, "LBXMPSI": 0.0001
		},
		"baselines": {}
	}`)
	e := NewEngine("m", path, "")

	p := deficientPayload()
	p.LBXPLTSI = ptr(250)
	p.LBXWBCSI = ptr(6.1)
	p.LBXMPSI = ptr(9)

	exps := e.Explanations(p, DefaultTopN)
	if len(exps) > DefaultTopN {
		t.Fatalf("explanations = %d, want at most %d", len(exps), DefaultTopN)
	}
	for _, x := range exps {
		if x.Feature == "LBXMPSI" {
			t.Error("sub-noise-floor attribution must be dropped")
		}
		if math.Abs(x.Impact) < attributionNoiseFloor {
			t.Errorf("kept attribution below noise floor: %+v", x)
		}
	}
	// Negative contributions come first, ascending.
	seenPositive := false
	for _, x := range exps {
		if x.Direction == "positive" {
			seenPositive = true
		} else if seenPositive {
			t.Fatal("negative explanation after a positive one")
		}
	}
}

func TestExplanations_GenericNarrativeFallback(t *testing.T) {
	path := writeArtifact(t, `{
		"bias": 0,
		"weights": {"BMXWAIST": -1.0, "BP_SYS": 1.0},
		"baselines": {}
	}`)
	e := NewEngine("m", path, "")

	p := &LabPayload{BMXWAIST: ptr(80), BPSys: ptr(115)}
	exps := e.Explanations(p, DefaultTopN)
	if len(exps) != 2 {
		t.Fatalf("explanations = %d, want 2", len(exps))
	}
	if exps[0].Text != genericNegativeNarrative {
		t.Errorf("text = %s", exps[0].Text)
	}
	if exps[1].Text != genericPositiveNarrative {
		t.Errorf("text = %s", exps[1].Text)
	}
}
