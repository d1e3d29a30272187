package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/causeway/pkg/errors"
)

type request struct {
	Name string `json:"name" validate:"required"`
	Size int    `json:"size" validate:"min=0"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		body  string
		limit int64
		want  int
	}{
		{`{"name": "x", "size": 2}`, 0, 0},
		{``, 0, http.StatusBadRequest},
		{`{"name": "x"`, 0, http.StatusBadRequest},
		{`{"name": "x", "colour": 1}`, 0, http.StatusBadRequest},
		{`{"size": 1}`, 0, http.StatusBadRequest},
		{`{"name": "x", "size": -1}`, 0, http.StatusBadRequest},
		{`{"name": "x"} {"name": "y"}`, 0, http.StatusBadRequest},
		{`{"name": "` + strings.Repeat("x", 64) + `"}`, 16, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
		var v request
		err := DecodeJSON(httptest.NewRecorder(), r, &v, tt.limit)
		got := 0
		if err != nil {
			got = StatusFor(err)
		}
		if got != tt.want {
			t.Errorf("DecodeJSON(%q) status = %d, want %d (err %v)", tt.body, got, tt.want, err)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeFileNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeInvalidArgument, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeInvalidArc, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeInvalidModel, "x"), http.StatusBadRequest},
		{errors.NewHedge([]string{"x", "y"}, []string{"y"}), http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodeUnidentifiable, "x"), http.StatusUnprocessableEntity},
		{fmt.Errorf("wrapped: %w", errors.New(errors.ErrCodeNotFound, "x")), http.StatusNotFound},
		{errors.New(errors.ErrCodeNetwork, "x"), http.StatusInternalServerError},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	status := WriteError(w, errors.NewHedge([]string{"x", "y"}, []string{"y"}), "req-1")
	if status != http.StatusUnprocessableEntity || w.Code != status {
		t.Fatalf("WriteError() status = %d/%d, want 422", status, w.Code)
	}
	var body ErrorBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	want := ErrorDetail{Code: errors.ErrCodeHedge, Message: "hedge found: G={x, y}, G[S]={y}", RequestID: "req-1"}
	if body.Error != want {
		t.Errorf("WriteError() body = %+v, want %+v", body.Error, want)
	}

	w = httptest.NewRecorder()
	WriteError(w, fmt.Errorf("secret dsn"), "")
	if strings.Contains(w.Body.String(), "secret") {
		t.Errorf("internal error leaked its message: %s", w.Body.String())
	}
}
