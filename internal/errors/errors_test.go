package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundf(t *testing.T) {
	err := NotFoundf("screen %q not found", "song")

	if err.Kind != ErrNotFound {
		t.Errorf("expected Kind to be ErrNotFound (%d), got %d", ErrNotFound, err.Kind)
	}
	if err.Message != `screen "song" not found` {
		t.Errorf("unexpected message '%s'", err.Message)
	}
	if err.Err != nil {
		t.Errorf("expected Err to be nil, got %v", err.Err)
	}
}

func TestInvalidInputf(t *testing.T) {
	err := InvalidInputf("unknown key %q", "banana")

	if err.Kind != ErrInvalidInput {
		t.Errorf("expected Kind to be ErrInvalidInput (%d), got %d", ErrInvalidInput, err.Kind)
	}
	if err.Error() != `unknown key "banana"` {
		t.Errorf("unexpected error string '%s'", err.Error())
	}
}

func TestUnavailable(t *testing.T) {
	underlying := fmt.Errorf("connection refused")
	err := Unavailable(underlying)

	if err.Kind != ErrUnavailable {
		t.Errorf("expected Kind to be ErrUnavailable (%d), got %d", ErrUnavailable, err.Kind)
	}
	if err.Error() != "dataset unavailable: connection refused" {
		t.Errorf("unexpected error string '%s'", err.Error())
	}
	if !errors.Is(err, underlying) {
		t.Error("expected errors.Is to find the underlying error")
	}
}

func TestInternal(t *testing.T) {
	underlying := fmt.Errorf("disk full")
	err := Internal(underlying)

	if err.Kind != ErrInternal {
		t.Errorf("expected Kind to be ErrInternal (%d), got %d", ErrInternal, err.Kind)
	}
	if err.Message != "internal error" {
		t.Errorf("expected Message to be 'internal error', got '%s'", err.Message)
	}
	if err.Err != underlying {
		t.Errorf("expected Err to be %v, got %v", underlying, err.Err)
	}
}

func TestInternalWithNilError(t *testing.T) {
	err := Internal(nil)
	if err.Error() != "internal error" {
		t.Errorf("expected 'internal error', got '%s'", err.Error())
	}
}

func TestWrap(t *testing.T) {
	underlying := fmt.Errorf("original error")
	err := Wrap(underlying, ErrNotFound, "wrapped context")

	if err.Kind != ErrNotFound {
		t.Errorf("expected Kind to be ErrNotFound (%d), got %d", ErrNotFound, err.Kind)
	}
	if errors.Unwrap(err) != underlying {
		t.Errorf("expected Unwrap to return %v", underlying)
	}
}

func TestIsKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
		want bool
	}{
		{"direct match", NotFound("x"), ErrNotFound, true},
		{"direct mismatch", NotFound("x"), ErrInvalidInput, false},
		{"wrapped by fmt", fmt.Errorf("load: %w", Unavailable(nil)), ErrUnavailable, true},
		{"plain error", fmt.Errorf("plain"), ErrInternal, false},
		{"nil", nil, ErrNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsKind(tt.err, tt.kind); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	tests := map[Kind]string{
		ErrInternal:     "internal",
		ErrNotFound:     "not found",
		ErrInvalidInput: "invalid input",
		ErrUnavailable:  "unavailable",
	}
	for k, want := range tests {
		if k.String() != want {
			t.Errorf("expected %q, got %q", want, k.String())
		}
	}
}
