package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewAndWrap(t *testing.T) {
	err := New(ErrCodeNotFound, "unknown variable %q", "smoking")
	if got, want := err.Error(), `NOT_FOUND: unknown variable "smoking"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	cause := errors.New("connection refused")
	wrapped := Wrap(ErrCodeNetwork, cause, "redis %s", "localhost:6379")
	if wrapped.Message != "redis localhost:6379" {
		t.Errorf("Message = %q", wrapped.Message)
	}
	if errors.Unwrap(wrapped) != cause || !errors.Is(wrapped, cause) {
		t.Error("a wrapped error should unwrap to its cause")
	}
}

func TestClassification(t *testing.T) {
	hedge := NewHedge([]string{"u", "x", "y"}, []string{"x", "y"})
	arc := New(ErrCodeInvalidArc, "arc y -> x closes a cycle")

	tests := []struct {
		name    string
		err     error
		code    Code
		message string
	}{
		{"structured", arc, ErrCodeInvalidArc, "arc y -> x closes a cycle"},
		{"outer code wins", Wrap(ErrCodeInvalidModel, arc, "model smoking"), ErrCodeInvalidModel, "model smoking"},
		{"fmt wrapped", fmt.Errorf("load: %w", arc), ErrCodeInvalidArc, "arc y -> x closes a cycle"},
		{"hedge", hedge, ErrCodeHedge, "hedge found: G={u, x, y}, G[S]={x, y}"},
		{"wrapped hedge", fmt.Errorf("identify: %w", hedge), ErrCodeHedge, "hedge found: G={u, x, y}, G[S]={x, y}"},
		{"plain", errors.New("disk full"), "", "disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(err, %q) = false", tt.code)
			}
			if Is(tt.err, ErrCodeTimeout) {
				t.Error("Is(err, TIMEOUT) = true")
			}
			if got := UserMessage(tt.err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
		})
	}

	if Is(nil, ErrCodeNotFound) || GetCode(nil) != "" {
		t.Error("a nil error has no code")
	}
}

func TestHedgeComponent(t *testing.T) {
	var h *HedgeError
	if !errors.As(fmt.Errorf("impact: %w", NewHedge([]string{"x", "y"}, []string{"y"})), &h) {
		t.Fatal("errors.As(*HedgeError) = false")
	}
	if len(h.Observables) != 2 || len(h.Component) != 1 || h.Component[0] != "y" {
		t.Errorf("hedge = %+v, want G={x, y}, G[S]={y}", h)
	}
}
