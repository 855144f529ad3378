package risk

import (
	"encoding/json"
	"fmt"
	"io"
)

// LabPayload is the fixed vocabulary of lab and demographic measurements a
// client may submit for scoring. Every field is optional; absent means the
// measurement was not taken, never zero. Field names follow the NHANES
// variable codes the model was trained on.
type LabPayload struct {
	LBXWBCSI *float64 `json:"LBXWBCSI,omitempty"`
	LBXLYPCT *float64 `json:"LBXLYPCT,omitempty"`
	LBXMOPCT *float64 `json:"LBXMOPCT,omitempty"`
	LBXNEPCT *float64 `json:"LBXNEPCT,omitempty"`
	LBXEOPCT *float64 `json:"LBXEOPCT,omitempty"`
	LBXBAPCT *float64 `json:"LBXBAPCT,omitempty"`
	LBXRBCSI *float64 `json:"LBXRBCSI,omitempty"`
	LBXHGB   *float64 `json:"LBXHGB,omitempty"`
	LBXHCT   *float64 `json:"LBXHCT,omitempty"`
	LBXMCVSI *float64 `json:"LBXMCVSI,omitempty"`
	LBXMC    *float64 `json:"LBXMC,omitempty"`
	LBXMCHSI *float64 `json:"LBXMCHSI,omitempty"`
	LBXRDW   *float64 `json:"LBXRDW,omitempty"`
	LBXPLTSI *float64 `json:"LBXPLTSI,omitempty"`
	LBXMPSI  *float64 `json:"LBXMPSI,omitempty"`
	RIAGENDR *float64 `json:"RIAGENDR,omitempty"`
	RIDAGEYR *float64 `json:"RIDAGEYR,omitempty"`
	LBXSGL   *float64 `json:"LBXSGL,omitempty"`
	LBXSCH   *float64 `json:"LBXSCH,omitempty"`
	BMXBMI   *float64 `json:"BMXBMI,omitempty"`
	BMXHT    *float64 `json:"BMXHT,omitempty"`
	BMXWT    *float64 `json:"BMXWT,omitempty"`
	BMXWAIST *float64 `json:"BMXWAIST,omitempty"`
	BPSys    *float64 `json:"BP_SYS,omitempty"`
	BPDia    *float64 `json:"BP_DIA,omitempty"`

	// Accepted for unit normalization only; never part of the feature vector.
	LBXSCR *float64 `json:"LBXSCR,omitempty"`
	LBXSUA *float64 `json:"LBXSUA,omitempty"`
	LBXSTB *float64 `json:"LBXSTB,omitempty"`
}

// Fields is the sparse field-name to value view of a payload used by the
// normalizer, validator and scorer. Absence of a key means the field was unset.
type Fields map[string]float64

// Sparse returns the payload as a sparse field map. Only fields with a value
// appear in the result.
func (p *LabPayload) Sparse() Fields {
	f := make(Fields)
	set := func(name string, v *float64) {
		if v != nil {
			f[name] = *v
		}
	}
	set("LBXWBCSI", p.LBXWBCSI)
	set("LBXLYPCT", p.LBXLYPCT)
	set("LBXMOPCT", p.LBXMOPCT)
	set("LBXNEPCT", p.LBXNEPCT)
	set("LBXEOPCT", p.LBXEOPCT)
	set("LBXBAPCT", p.LBXBAPCT)
	set("LBXRBCSI", p.LBXRBCSI)
	set("LBXHGB", p.LBXHGB)
	set("LBXHCT", p.LBXHCT)
	set("LBXMCVSI", p.LBXMCVSI)
	set("LBXMC", p.LBXMC)
	set("LBXMCHSI", p.LBXMCHSI)
	set("LBXRDW", p.LBXRDW)
	set("LBXPLTSI", p.LBXPLTSI)
	set("LBXMPSI", p.LBXMPSI)
	set("RIAGENDR", p.RIAGENDR)
	set("RIDAGEYR", p.RIDAGEYR)
	set("LBXSGL", p.LBXSGL)
	set("LBXSCH", p.LBXSCH)
	set("BMXBMI", p.BMXBMI)
	set("BMXHT", p.BMXHT)
	set("BMXWT", p.BMXWT)
	set("BMXWAIST", p.BMXWAIST)
	set("BP_SYS", p.BPSys)
	set("BP_DIA", p.BPDia)
	set("LBXSCR", p.LBXSCR)
	set("LBXSUA", p.LBXSUA)
	set("LBXSTB", p.LBXSTB)
	return f
}

// IsEmpty reports whether no field at all is set.
func (p *LabPayload) IsEmpty() bool {
	return p == nil || len(p.Sparse()) == 0
}

// DecodeLabPayload parses a JSON lab payload, rejecting unrecognized keys so
// that typos in field names surface at the boundary instead of being silently
// ignored during validation.
func DecodeLabPayload(r io.Reader) (*LabPayload, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var p LabPayload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode lab payload: %w", err)
	}
	return &p, nil
}
