package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Message(t *testing.T) {
	err := &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	want := "[CONFIG_INVALID] configuration invalid"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestError_WithCause(t *testing.T) {
	cause := fmt.Errorf("portfolio size 0 out of range")
	err := WrapError(ErrConfigInvalid, cause)

	if !errors.Is(err, ErrConfigInvalid) {
		t.Error("wrapped error should match its base via errors.Is")
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error should expose its cause via errors.Is")
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	if errors.Is(ErrInsufficientHistory, ErrInsufficientData) {
		t.Error("distinct codes must not match")
	}

	wrapped := WrapError(ErrRetriesExhausted, WrapError(ErrInsufficientHistory, nil))
	if !errors.Is(wrapped, ErrRetriesExhausted) {
		t.Error("outer code should match")
	}
	if !errors.Is(wrapped, ErrInsufficientHistory) {
		t.Error("inner code should match through the chain")
	}
}
