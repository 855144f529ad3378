package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestBodyLimit_WithinLimit(t *testing.T) {
	e := echo.New()
	body := strings.NewReader(`{"LBXHGB": 120}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/risk/predict", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := BodyLimit("1M")
	h := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("handler should run for a small body")
	}
}

func TestBodyLimit_ContentLengthExceeds(t *testing.T) {
	e := echo.New()
	big := bytes.Repeat([]byte("x"), 2048)
	req := httptest.NewRequest(http.MethodPost, "/v1/risk/predict", bytes.NewReader(big))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := BodyLimit("1K")
	h := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Error("handler should not run when the body exceeds the limit")
	}
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["error_code"] != "payload_too_large" {
		t.Errorf("error_code = %s", resp["error_code"])
	}
}

func TestBodyLimit_NoBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/analyses", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := BodyLimit("512")
	h := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestParseLimit(t *testing.T) {
	cases := map[string]int64{
		"1M":    1 << 20,
		"512K":  512 << 10,
		"2G":    2 << 30,
		"1024":  1024,
		"":      1 << 20,
		"bogus": 1 << 20,
	}
	for in, want := range cases {
		if got := parseLimit(in); got != want {
			t.Errorf("parseLimit(%q) = %d, want %d", in, got, want)
		}
	}
}
