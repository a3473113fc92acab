package application

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"time": "invalid", "date": "invalid"}}
	if got := withFields.Error(); got != "validation failed: date, time" {
		t.Fatalf("expected sorted field list for populated error, got %q", got)
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	if err := (&ValidationError{}).HasErrors(); err {
		t.Fatalf("expected HasErrors to report false for empty error")
	}

	if err := (&ValidationError{FieldErrors: map[string]string{"field": "bad"}}).HasErrors(); !err {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
}

func TestValidationError_AddAndMerge(t *testing.T) {
	t.Parallel()

	base := &ValidationError{}
	base.add("first", "value")
	if got := base.FieldErrors["first"]; got != "value" {
		t.Fatalf("expected add to populate map, got %q", got)
	}

	other := &ValidationError{FieldErrors: map[string]string{"second": "another"}}
	base.merge(other)
	if got := base.FieldErrors["second"]; got != "another" {
		t.Fatalf("expected merge to copy field, got %q", got)
	}

	base.merge(nil)
	if len(base.FieldErrors) != 2 {
		t.Fatalf("expected merge with nil to leave fields unchanged")
	}
}

func TestTypedErrors_Unwrap(t *testing.T) {
	t.Parallel()

	conflict := &ConflictError{Resource: "username", Key: "'ana'"}
	if !errors.Is(conflict, ErrAlreadyExists) {
		t.Fatalf("expected ConflictError to match ErrAlreadyExists")
	}
	if got := conflict.Error(); got != "username 'ana' already exists" {
		t.Fatalf("unexpected conflict message %q", got)
	}

	missing := fmt.Errorf("cancel: %w", &NotFoundError{Resource: "appointment", ID: 7})
	if !errors.Is(missing, ErrNotFound) {
		t.Fatalf("expected wrapped NotFoundError to match ErrNotFound")
	}

	cause := errors.New("disk")
	wrapped := storageError("create", cause)
	if !errors.Is(wrapped, cause) {
		t.Fatalf("expected StorageError to unwrap to its cause")
	}
	if again := storageError("outer", wrapped); again != wrapped {
		t.Fatalf("expected existing StorageError to be returned unchanged")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	tests := map[string]error{
		"":                    nil,
		"validation":          newValidationError("date", "bad"),
		"storage":             storageError("op", errors.New("x")),
		"unauthorized":        ErrUnauthorized,
		"not_found":           &NotFoundError{Resource: "service", ID: 1},
		"already_exists":      &ConflictError{Resource: "service", Key: "Manicure"},
		"invalid_credentials": ErrInvalidCredentials,
		"unexpected":          errors.New("boom"),
	}
	for want, err := range tests {
		if got := ErrorKind(err); got != want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", err, got, want)
		}
	}
}
