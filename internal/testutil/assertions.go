// Package testutil provides shared helpers for tests: assertions, an
// in-memory database, and domain fixtures.
package testutil

import (
	"errors"
	"math"
	"testing"

	apperrors "folioman/internal/errors"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error, msgAndArgs ...any) {
	t.Helper()
	if err != nil {
		if len(msgAndArgs) > 0 {
			t.Fatalf("unexpected error: %v (%v)", err, msgAndArgs)
		}
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertAppError fails the test unless err wraps the expected AppError
// sentinel (matched by code).
func AssertAppError(t *testing.T, err error, want *apperrors.AppError) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", want.Code)
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError with code %s, got %T: %v", want.Code, err, err)
	}
	if appErr.Code != want.Code {
		t.Fatalf("expected error code %s, got %s (%v)", want.Code, appErr.Code, appErr)
	}
}

// AssertInDelta fails the test when got is not within delta of want.
func AssertInDelta(t *testing.T, want, got, delta float64, msgAndArgs ...any) {
	t.Helper()
	if math.Abs(want-got) > delta {
		if len(msgAndArgs) > 0 {
			t.Fatalf("expected %v within %v, got %v (%v)", want, delta, got, msgAndArgs)
		}
		t.Fatalf("expected %v ± %v, got %v", want, delta, got)
	}
}
