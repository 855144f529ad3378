package risk

import "math"

// Invalid-value reasons, part of the public error taxonomy.
const (
	ReasonMustBeNumber       = "must_be_number"
	ReasonMustBeFinite       = "must_be_finite_number"
	ReasonMustBeNonNegative  = "must_be_non_negative"
	ReasonMustBePositive     = "must_be_positive"
	MissingBMIOrHeightWeight = "BMXBMI_or_BMXHT_BMXWT"
)

// Features is the fixed-order feature vocabulary the trained model consumes.
var Features = []string{
	"LBXWBCSI", "LBXLYPCT", "LBXMOPCT", "LBXNEPCT", "LBXEOPCT", "LBXBAPCT",
	"LBXRBCSI", "LBXHGB", "LBXHCT", "LBXMCVSI", "LBXMC", "LBXMCHSI", "LBXRDW",
	"LBXPLTSI", "LBXMPSI", "RIAGENDR", "RIDAGEYR", "LBXSGL", "LBXSCH",
	"BMXBMI", "BMXHT", "BMXWT", "BMXWAIST", "BP_SYS", "BP_DIA",
}

// RequiredFields must all be present before the scorer runs.
var RequiredFields = []string{
	"LBXHGB",
	"LBXMCVSI",
	"LBXMCHSI",
	"LBXRDW",
	"LBXRBCSI",
	"LBXHCT",
	"RIDAGEYR",
}

// RecommendedFields raise prediction confidence when present.
var RecommendedFields = []string{
	"LBXPLTSI",
	"LBXWBCSI",
	"LBXMPSI",
	"BP_SYS",
	"BP_DIA",
	"BMXWAIST",
	"LBXSCH",
	"LBXSGL",
}

// positiveOnly fields must be strictly greater than zero.
var positiveOnly = map[string]bool{
	"BMXBMI":   true,
	"BMXHT":    true,
	"BMXWT":    true,
	"RIDAGEYR": true,
}

// InvalidField describes one rejected payload value.
type InvalidField struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidateValues flags present fields whose values are not physiologically
// representable. Fields outside the model vocabulary are ignored. The result
// order follows the fixed feature order so responses are deterministic.
func ValidateValues(fields Fields) []InvalidField {
	var invalid []InvalidField
	for _, name := range Features {
		v, ok := fields[name]
		if !ok {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			invalid = append(invalid, InvalidField{Field: name, Reason: ReasonMustBeFinite})
			continue
		}
		if v < 0 {
			invalid = append(invalid, InvalidField{Field: name, Reason: ReasonMustBeNonNegative})
			continue
		}
		if positiveOnly[name] && v <= 0 {
			invalid = append(invalid, InvalidField{Field: name, Reason: ReasonMustBePositive})
		}
	}
	return invalid
}

// ResolveMissingRequired lists required fields absent from the payload. BMI is
// satisfied either directly or by height plus weight; when neither is
// available a synthetic marker identifier is appended.
func ResolveMissingRequired(fields Fields) []string {
	var missing []string
	for _, name := range RequiredFields {
		if _, ok := fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	_, hasBMI := fields["BMXBMI"]
	_, hasHT := fields["BMXHT"]
	_, hasWT := fields["BMXWT"]
	if !hasBMI && !(hasHT && hasWT) {
		missing = append(missing, MissingBMIOrHeightWeight)
	}
	return missing
}

// ResolveConfidence grades how much the prediction can be trusted given the
// coverage of the payload: low when anything required is missing, high when at
// least half of the recommended set is present, medium otherwise.
func ResolveConfidence(fields Fields, missingRequired []string) string {
	if len(missingRequired) > 0 {
		return "low"
	}
	present := 0
	for _, name := range RecommendedFields {
		if _, ok := fields[name]; ok {
			present++
		}
	}
	if float64(present) >= float64(len(RecommendedFields))/2 {
		return "high"
	}
	return "medium"
}
