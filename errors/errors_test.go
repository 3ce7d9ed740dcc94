/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("User", "123")

	// Test error message
	expected := `User with key "123" not found`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	// Test Is method
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}

	// Test helper function
	if !IsNotFound(err) {
		t.Error("IsNotFound should return true for NotFoundError")
	}
}

func TestAlreadyExistsError(t *testing.T) {
	err := NewAlreadyExistsError("Product", "ABC")

	// Test error message
	expected := `Product with key "ABC" already exists`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	// Test Is method
	if !errors.Is(err, ErrAlreadyExists) {
		t.Error("AlreadyExistsError should match ErrAlreadyExists")
	}

	// Test helper function
	if !IsAlreadyExists(err) {
		t.Error("IsAlreadyExists should return true for AlreadyExistsError")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "with field",
			field:    "email",
			message:  "invalid format",
			expected: `validation failed for field "email": invalid format`,
		},
		{
			name:     "without field",
			field:    "",
			message:  "missing required fields",
			expected: "validation failed: missing required fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)
		
			if err.Error() != tt.expected {
				t.Errorf("Expected error message %q, got %q", tt.expected, err.Error())
			}
		
			if !errors.Is(err, ErrInvalidInput) {
				t.Error("ValidationError should match ErrInvalidInput")
			}
		
			if !IsValidationError(err) {
				t.Error("IsValidationError should return true for ValidationError")
			}
		})
	}
}

func TestConditionFailedError(t *testing.T) {
	err := NewConditionFailedError("update", "version = :oldVersion")

	// Test error message
	expected := "condition check failed for update operation: version = :oldVersion"
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}

	// Test Is method
	if !errors.Is(err, ErrConditionFailed) {
		t.Error("ConditionFailedError should match ErrConditionFailed")
	}

	// Test helper function
	if !IsConditionFailed(err) {
		t.Error("IsConditionFailed should return true for ConditionFailedError")
	}
}

func TestErrorWrapping(t *testing.T) {
	// Test that wrapped errors still match
	original := NewNotFoundError("User", "123")
	wrapped := fmt.Errorf("database operation failed: %w", original)

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("Wrapped NotFoundError should still match ErrNotFound")
	}

	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should work with wrapped errors")
	}
}

func TestDescriptorError(t *testing.T) {
	err := NewDescriptorError("day:0000-01-01", "year out of range")

	expected := `invalid partition descriptor "day:0000-01-01": year out of range`
	if err.Error() != expected {
		t.Errorf("Expected error message %q, got %q", expected, err.Error())
	}
	if !IsInvalidDescriptor(err) {
		t.Error("IsInvalidDescriptor should return true for DescriptorError")
	}
	if !IsValidationFailure(err) {
		t.Error("DescriptorError should be a validation failure")
	}
}

func TestMappingError(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		expected string
	}{
		{name: "with field", field: "Title", expected: "invalid mapping for News.Title: duplicate column"},
		{name: "without field", field: "", expected: "invalid mapping for News: duplicate column"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewMappingError("News", tt.field, "duplicate column")
			if err.Error() != tt.expected {
				t.Errorf("Expected error message %q, got %q", tt.expected, err.Error())
			}
			if !IsInvalidMapping(err) {
				t.Error("IsInvalidMapping should return true for MappingError")
			}
		})
	}
}

func TestBuildFailureError(t *testing.T) {
	cause := errors.New("boom")
	err := NewBuildFailureError("News|day|20200327", cause)

	if !IsBuildFailure(err) {
		t.Error("IsBuildFailure should return true for BuildFailureError")
	}
	if !errors.Is(err, cause) {
		t.Error("BuildFailureError should unwrap to its cause")
	}
	if IsValidationFailure(err) {
		t.Error("BuildFailureError should not be a validation failure")
	}
}

func TestStorageUnavailableError(t *testing.T) {
	cause := errors.New("no such table: 20200327")
	err := fmt.Errorf("put: %w", NewStorageUnavailableError("20200327", cause))

	if !IsStorageUnavailable(err) {
		t.Error("IsStorageUnavailable should work with wrapped errors")
	}
	if !errors.Is(err, cause) {
		t.Error("StorageUnavailableError should unwrap to its cause")
	}

	var sue *StorageUnavailableError
	if !errors.As(err, &sue) || sue.Object != "20200327" {
		t.Errorf("Expected object 20200327, got %+v", sue)
	}

	bare := NewStorageUnavailableError("20200326", nil)
	if bare.Error() != `storage object "20200326" unavailable` {
		t.Errorf("Unexpected message %q", bare.Error())
	}
}

func TestSentinelErrors(t *testing.T) {
	// Ensure sentinel errors are distinct
	sentinels := []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrInvalidInput,
		ErrConditionFailed,
		ErrNoIndexMap,
		ErrInvalidDescriptor,
		ErrInvalidMapping,
		ErrBuildFailure,
		ErrStorageUnavailable,
		ErrSessionClosed,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v matches %v", err1, err2)
			}
		}
	}
}