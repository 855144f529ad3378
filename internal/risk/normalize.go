package risk

// siDivisors converts SI-unit chemistry values to conventional units when the
// magnitude clearly exceeds the conventional range.
var siDivisors = map[string]float64{
	"LBXSCR": 88.4,  // µmol/L -> mg/dL
	"LBXSUA": 59.48, // µmol/L -> mg/dL
	"LBXSTB": 17.1,  // µmol/L -> mg/dL
}

// Normalize converts a sparse payload that may mix unit systems into the
// canonical units the model expects. Unit detection is heuristic: magnitudes
// outside the common clinical range for the canonical unit are assumed to be
// in the alternate unit. Values sitting exactly on a threshold are treated as
// already canonical. The input map is not modified; absent fields stay absent
// and implausible values pass through for the validator to catch.
func Normalize(fields Fields) Fields {
	out := make(Fields, len(fields))
	for name, v := range fields {
		out[name] = v
	}

	if hgb, ok := out["LBXHGB"]; ok && hgb > 50 {
		out["LBXHGB"] = hgb / 10 // g/L -> g/dL
	}
	if mchc, ok := out["LBXMCHSI"]; ok && mchc > 100 {
		out["LBXMCHSI"] = mchc / 10 // g/L -> g/dL
	}
	if glucose, ok := out["LBXSGL"]; ok && glucose < 25 {
		out["LBXSGL"] = glucose * 18.01 // mmol/L -> mg/dL
	}
	if chol, ok := out["LBXSCH"]; ok && chol < 25 {
		out["LBXSCH"] = chol * 38.67 // mmol/L -> mg/dL
	}
	for name, divisor := range siDivisors {
		if v, ok := out[name]; ok && v > 10 {
			out[name] = v / divisor
		}
	}

	return out
}
