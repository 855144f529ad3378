package risk

import (
	"strings"
	"testing"
)

func TestDecodeLabPayload(t *testing.T) {
	p, err := DecodeLabPayload(strings.NewReader(`{"LBXHGB": 120, "BP_SYS": 115, "BP_DIA": 72}`))
	if err != nil {
		t.Fatal(err)
	}
	if p.LBXHGB == nil || *p.LBXHGB != 120 {
		t.Errorf("LBXHGB = %v", p.LBXHGB)
	}
	if p.BPSys == nil || *p.BPSys != 115 || p.BPDia == nil || *p.BPDia != 72 {
		t.Errorf("blood pressure = %v/%v", p.BPSys, p.BPDia)
	}
}

func TestDecodeLabPayload_RejectsUnknownField(t *testing.T) {
	if _, err := DecodeLabPayload(strings.NewReader(`{"LBXHBG": 12}`)); err == nil {
		t.Error("misspelled field name should be rejected at decode time")
	}
}

func TestDecodeLabPayload_RejectsNonNumeric(t *testing.T) {
	if _, err := DecodeLabPayload(strings.NewReader(`{"LBXHGB": "12"}`)); err == nil {
		t.Error("string value should be rejected")
	}
}

func TestSparse_OmitsUnsetFields(t *testing.T) {
	p := &LabPayload{LBXHGB: ptr(12)}
	f := p.Sparse()
	if len(f) != 1 || f["LBXHGB"] != 12 {
		t.Errorf("sparse = %v", f)
	}
	if !(&LabPayload{}).IsEmpty() {
		t.Error("empty payload should report IsEmpty")
	}
	if p.IsEmpty() {
		t.Error("non-empty payload should not report IsEmpty")
	}
}
