/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when attempting to create an entity that already exists
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConditionFailed is returned when a conditional update fails
	ErrConditionFailed = errors.New("condition check failed")

	// ErrNoIndexMap is returned when an index map lacks the PK template its keys need
	ErrNoIndexMap = errors.New("no partition key template in index map")

	// ErrInvalidDescriptor is returned when a partition descriptor cannot be normalized or formatted
	ErrInvalidDescriptor = errors.New("invalid partition descriptor")

	// ErrInvalidMapping is returned when entity metadata is insufficient to build a schema
	ErrInvalidMapping = errors.New("invalid entity mapping")

	// ErrBuildFailure is returned when schema construction fails unexpectedly
	ErrBuildFailure = errors.New("schema build failed")

	// ErrStorageUnavailable is returned when the storage backend rejects a physical object
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrSessionClosed is returned when a closed session is used
	ErrSessionClosed = errors.New("session closed")
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when an entity already exists
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConditionFailedError represents a failed conditional operation
type ConditionFailedError struct {
	Operation string
	Condition string
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("condition check failed for %s operation: %s", e.Operation, e.Condition)
}

func (e *ConditionFailedError) Is(target error) bool {
	return target == ErrConditionFailed
}

// DescriptorError reports a partition descriptor that cannot be formatted
type DescriptorError struct {
	Descriptor string
	Reason     string
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("invalid partition descriptor %q: %s", e.Descriptor, e.Reason)
}

func (e *DescriptorError) Is(target error) bool {
	return target == ErrInvalidDescriptor
}

// MappingError reports incomplete or inconsistent entity metadata
type MappingError struct {
	Entity  string
	Field   string
	Message string
}

func (e *MappingError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid mapping for %s.%s: %s", e.Entity, e.Field, e.Message)
	}
	return fmt.Sprintf("invalid mapping for %s: %s", e.Entity, e.Message)
}

func (e *MappingError) Is(target error) bool {
	return target == ErrInvalidMapping
}

// BuildFailureError wraps an unexpected error raised while building a schema
type BuildFailureError struct {
	Key   string
	Cause error
}

func (e *BuildFailureError) Error() string {
	return fmt.Sprintf("schema build for %s failed: %v", e.Key, e.Cause)
}

func (e *BuildFailureError) Is(target error) bool {
	return target == ErrBuildFailure
}

func (e *BuildFailureError) Unwrap() error {
	return e.Cause
}

// StorageUnavailableError reports a physical object the backend could not serve
type StorageUnavailableError struct {
	Object string
	Cause  error
}

func (e *StorageUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage object %q unavailable: %v", e.Object, e.Cause)
	}
	return fmt.Sprintf("storage object %q unavailable", e.Object)
}

func (e *StorageUnavailableError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

func (e *StorageUnavailableError) Unwrap() error {
	return e.Cause
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(entityType, key string) error {
	return &AlreadyExistsError{Type: entityType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConditionFailedError creates a new ConditionFailedError
func NewConditionFailedError(operation, condition string) error {
	return &ConditionFailedError{Operation: operation, Condition: condition}
}

// NewDescriptorError creates a new DescriptorError
func NewDescriptorError(descriptor, reason string) error {
	return &DescriptorError{Descriptor: descriptor, Reason: reason}
}

// NewMappingError creates a new MappingError
func NewMappingError(entity, field, message string) error {
	return &MappingError{Entity: entity, Field: field, Message: message}
}

// NewBuildFailureError creates a new BuildFailureError
func NewBuildFailureError(key string, cause error) error {
	return &BuildFailureError{Key: key, Cause: cause}
}

// NewStorageUnavailableError creates a new StorageUnavailableError
func NewStorageUnavailableError(object string, cause error) error {
	return &StorageUnavailableError{Object: object, Cause: cause}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConditionFailed checks if an error is a condition failed error
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}

// IsInvalidDescriptor checks if an error is a partition descriptor error
func IsInvalidDescriptor(err error) bool {
	return errors.Is(err, ErrInvalidDescriptor)
}

// IsInvalidMapping checks if an error is an entity mapping error
func IsInvalidMapping(err error) bool {
	return errors.Is(err, ErrInvalidMapping)
}

// IsBuildFailure checks if an error is an unexpected schema build failure
func IsBuildFailure(err error) bool {
	return errors.Is(err, ErrBuildFailure)
}

// IsStorageUnavailable checks if an error is a storage availability error
func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

// IsValidationFailure reports whether err is a local validation failure
// (descriptor or mapping) that is never cached and never retried by the cache.
func IsValidationFailure(err error) bool {
	return IsInvalidDescriptor(err) || IsInvalidMapping(err)
}
