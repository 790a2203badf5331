// Package errors provides the error taxonomy for sheetsync.
//
// Errors fall into two classes. Fatal errors (source acquisition, invalid
// configuration, incomplete output writes) abort a run before or instead of
// producing output. Soft errors (corrupt manifest, unavailable store) are
// absorbed by the component that hit them, logged, and replaced with an empty
// default so the import still completes.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
var New = errors.New

// Is, As and Join mirror the standard library so callers need one import.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Sentinel errors.
var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSourceMissing indicates the source workbook is absent or unreadable.
	ErrSourceMissing = errors.New("source workbook missing")

	// ErrSheetMissing indicates a required sheet is absent from the workbook.
	ErrSheetMissing = errors.New("required sheet missing")

	// ErrManifestCorrupt indicates the previous manifest could not be parsed.
	ErrManifestCorrupt = errors.New("manifest corrupt")

	// ErrStoreUnavailable indicates the record store could not be opened or queried.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrWriteIncomplete indicates the action batch and manifest were not both written.
	ErrWriteIncomplete = errors.New("output write incomplete")
)

// SourceError is a fatal failure to acquire the source workbook or one of its sheets.
type SourceError struct {
	Path  string
	Sheet string
	Err   error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("source %s: sheet %q: %v", e.Path, e.Sheet, e.Err)
	}
	return fmt.Sprintf("source %s: %v", e.Path, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *SourceError) Is(target error) bool {
	if e.Sheet != "" {
		return target == ErrSheetMissing
	}
	return target == ErrSourceMissing
}

// NewSourceError creates a SourceError for the workbook at path.
func NewSourceError(path string, err error) *SourceError {
	return &SourceError{Path: path, Err: err}
}

// NewSheetError creates a SourceError for a missing sheet.
func NewSheetError(path, sheet string, err error) *SourceError {
	if err == nil {
		err = ErrNotFound
	}
	return &SourceError{Path: path, Sheet: sheet, Err: err}
}

// ManifestError is a soft failure to read or decode the previous manifest.
type ManifestError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest %s: %v", e.Path, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *ManifestError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *ManifestError) Is(target error) bool {
	return target == ErrManifestCorrupt
}

// NewManifestError creates a new ManifestError.
func NewManifestError(path string, err error) *ManifestError {
	return &ManifestError{Path: path, Err: err}
}

// StoreError is a soft failure talking to the record store.
type StoreError struct {
	Driver string
	Op     string // "open", "ping", "query", "scan"
	Err    error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s store %s: %v", e.Driver, e.Op, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// NewStoreError creates a new StoreError.
func NewStoreError(driver, op string, err error) *StoreError {
	return &StoreError{Driver: driver, Op: op, Err: err}
}

// WriteError reports which outputs of a run could not be persisted.
type WriteError struct {
	Paths []string
	Err   error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("write %v: %v", e.Paths, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *WriteError) Is(target error) bool {
	return target == ErrWriteIncomplete
}

// NewWriteError creates a new WriteError.
func NewWriteError(err error, paths ...string) *WriteError {
	return &WriteError{Paths: paths, Err: err}
}

// ValidationError represents a validation failure.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats.
type ParseError struct {
	Format  string // "json", "yaml", "xlsx"
	File    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError.
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations.
type IOError struct {
	Operation string // "read", "write", "create", "rename", "open"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError.
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsSourceMissing checks if an error means the workbook or a required sheet is missing.
func IsSourceMissing(err error) bool {
	return errors.Is(err, ErrSourceMissing) || errors.Is(err, ErrSheetMissing)
}

// IsSoft reports whether err is one of the conditions a run degrades around.
func IsSoft(err error) bool {
	return errors.Is(err, ErrManifestCorrupt) || errors.Is(err, ErrStoreUnavailable)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError.
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
