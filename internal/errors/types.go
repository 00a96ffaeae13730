// Package errors defines the structured error type shared by every resrepo
// package.
//
// Each failure carries an ErrorKind that callers branch on with errors.Is
// against the exported sentinels (ErrNotFound, ErrInvalidPath, ...) or with
// the Is* predicates. Codes are stable strings suitable for CLI output.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind represents the category of a repository failure.
type ErrorKind string

const (
	KindInvalidPath       ErrorKind = "invalid_path"
	KindNotFound          ErrorKind = "resource_not_found"
	KindNotADirectory     ErrorKind = "not_a_directory"
	KindRemovalNotAllowed ErrorKind = "removal_not_allowed"
	KindOutOfRange        ErrorKind = "out_of_range"
	KindUnsupported       ErrorKind = "unsupported_resource"
	KindReadOnly          ErrorKind = "read_only_violation"
	KindConfig            ErrorKind = "config"
	KindIO                ErrorKind = "io"
)

// Common error codes.
const (
	ErrCodeInvalidPath       = "ERR_INVALID_PATH"
	ErrCodeInvalidPattern    = "ERR_INVALID_PATTERN"
	ErrCodeResourceNotFound  = "ERR_RESOURCE_NOT_FOUND"
	ErrCodeSourceNotFound    = "ERR_SOURCE_NOT_FOUND"
	ErrCodeLocationNotFound  = "ERR_LOCATION_NOT_FOUND"
	ErrCodeNotADirectory     = "ERR_NOT_A_DIRECTORY"
	ErrCodeRootProtected     = "ERR_ROOT_PROTECTED"
	ErrCodeVersionOutOfRange = "ERR_VERSION_OUT_OF_RANGE"
	ErrCodeNoHistory         = "ERR_NO_HISTORY"
	ErrCodeUnsupportedKind   = "ERR_UNSUPPORTED_KIND"
	ErrCodeReadOnly          = "ERR_READ_ONLY"
	ErrCodeConfigInvalid     = "ERR_CONFIG_INVALID"
	ErrCodeIO                = "ERR_IO"
)

// Sentinels for errors.Is. They match any RepoError of the same kind.
var (
	ErrInvalidPath       = &RepoError{Kind: KindInvalidPath}
	ErrNotFound          = &RepoError{Kind: KindNotFound}
	ErrNotADirectory     = &RepoError{Kind: KindNotADirectory}
	ErrRemovalNotAllowed = &RepoError{Kind: KindRemovalNotAllowed}
	ErrOutOfRange        = &RepoError{Kind: KindOutOfRange}
	ErrUnsupported       = &RepoError{Kind: KindUnsupported}
	ErrReadOnly          = &RepoError{Kind: KindReadOnly}
)

// RepoError is a structured error with kind, code and optional context.
type RepoError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Path    string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *RepoError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Path != "" {
		parts = append(parts, e.Path+":")
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else {
		parts = append(parts, strings.ReplaceAll(string(e.Kind), "_", " "))
	}

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *RepoError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a RepoError of the same kind. A target with a
// code only matches errors carrying that code.
func (e *RepoError) Is(target error) bool {
	var t *RepoError
	if !errors.As(target, &t) {
		return false
	}

	if e.Kind != t.Kind {
		return false
	}

	return t.Code == "" || t.Code == e.Code
}

// WithContext adds context information to the error.
func (e *RepoError) WithContext(key string, value interface{}) *RepoError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithCause attaches the underlying cause.
func (e *RepoError) WithCause(cause error) *RepoError {
	e.Cause = cause

	return e
}

// Error creation functions

// NewInvalidPath reports malformed or empty path input.
func NewInvalidPath(path, message string) *RepoError {
	return &RepoError{
		Kind:    KindInvalidPath,
		Code:    ErrCodeInvalidPath,
		Message: message,
		Path:    path,
	}
}

// NewInvalidPattern reports a malformed selector.
func NewInvalidPattern(pattern, message string, cause error) *RepoError {
	return &RepoError{
		Kind:    KindInvalidPath,
		Code:    ErrCodeInvalidPattern,
		Message: message,
		Path:    pattern,
		Cause:   cause,
	}
}

// NewNotFound reports an exact lookup that found nothing.
func NewNotFound(path string) *RepoError {
	return &RepoError{
		Kind:    KindNotFound,
		Code:    ErrCodeResourceNotFound,
		Message: "resource not found",
		Path:    path,
	}
}

// NewSourceNotFound reports a physical source that does not exist.
func NewSourceNotFound(source string, cause error) *RepoError {
	return &RepoError{
		Kind:    KindNotFound,
		Code:    ErrCodeSourceNotFound,
		Message: "physical source not found",
		Path:    source,
		Cause:   cause,
	}
}

// NewLocationNotFound reports a backing location that is not attached to a
// node.
func NewLocationNotFound(path, location string) *RepoError {
	return (&RepoError{
		Kind:    KindNotFound,
		Code:    ErrCodeLocationNotFound,
		Message: "backing location not attached",
		Path:    path,
	}).WithContext("location", location)
}

// NewNotADirectory reports a directory-only operation on another kind.
func NewNotADirectory(path string) *RepoError {
	return &RepoError{
		Kind:    KindNotADirectory,
		Code:    ErrCodeNotADirectory,
		Message: "not a directory",
		Path:    path,
	}
}

// NewRemovalNotAllowed reports an attempt to remove a protected node.
func NewRemovalNotAllowed(path string) *RepoError {
	return &RepoError{
		Kind:    KindRemovalNotAllowed,
		Code:    ErrCodeRootProtected,
		Message: "the repository root cannot be removed",
		Path:    path,
	}
}

// NewOutOfRange reports access to a version that does not exist.
func NewOutOfRange(path string, version, first, current int) *RepoError {
	return (&RepoError{
		Kind:    KindOutOfRange,
		Code:    ErrCodeVersionOutOfRange,
		Message: fmt.Sprintf("version %d does not exist (available %d..%d)", version, first, current),
		Path:    path,
	}).WithContext("version", version)
}

// NewNoHistory reports a path that was never recorded.
func NewNoHistory(path string) *RepoError {
	return &RepoError{
		Kind:    KindNotFound,
		Code:    ErrCodeNoHistory,
		Message: "no versions recorded",
		Path:    path,
	}
}

// NewUnsupported reports a resource kind without a registered handler.
func NewUnsupported(path, kind string) *RepoError {
	return (&RepoError{
		Kind:    KindUnsupported,
		Code:    ErrCodeUnsupportedKind,
		Message: fmt.Sprintf("no normalizer for resource kind %q", kind),
		Path:    path,
	}).WithContext("kind", kind)
}

// NewReadOnly reports a mutation attempted on a read-only structure.
func NewReadOnly(operation string) *RepoError {
	return (&RepoError{
		Kind:    KindReadOnly,
		Code:    ErrCodeReadOnly,
		Message: fmt.Sprintf("%s is not allowed on a read-only repository", operation),
	}).WithContext("operation", operation)
}

// NewConfigError creates a configuration error.
func NewConfigError(message string, cause error) *RepoError {
	return &RepoError{
		Kind:    KindConfig,
		Code:    ErrCodeConfigInvalid,
		Message: message,
		Cause:   cause,
	}
}

// NewIOError creates an I/O error for adapter failures.
func NewIOError(path, message string, cause error) *RepoError {
	return &RepoError{
		Kind:    KindIO,
		Code:    ErrCodeIO,
		Message: message,
		Path:    path,
		Cause:   cause,
	}
}

// KindOf returns the kind of the first RepoError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var re *RepoError
	if errors.As(err, &re) {
		return re.Kind
	}

	return ""
}

// IsNotFound checks if an error is a ResourceNotFound failure.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsInvalidPath checks if an error is an InvalidPath failure.
func IsInvalidPath(err error) bool {
	return KindOf(err) == KindInvalidPath
}

// IsNotADirectory checks if an error is a NotADirectory failure.
func IsNotADirectory(err error) bool {
	return KindOf(err) == KindNotADirectory
}

// IsOutOfRange checks if an error is an OutOfRange failure.
func IsOutOfRange(err error) bool {
	return KindOf(err) == KindOutOfRange
}

// IsReadOnly checks if an error is a ReadOnlyViolation failure.
func IsReadOnly(err error) bool {
	return KindOf(err) == KindReadOnly
}
