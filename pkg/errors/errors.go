// Unified error handling for machine-control
//
// Copyright (C) 2026  machine-control authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package errors

import "fmt"

// ErrorCode represents the category of error
type ErrorCode string

const (
	// Command-line errors
	ErrUsage         ErrorCode = "USAGE"
	ErrUsageConflict ErrorCode = "USAGE_CONFLICT"

	// Profile errors
	ErrProfileParse      ErrorCode = "PROFILE_PARSE"
	ErrProfileOption     ErrorCode = "PROFILE_OPTION"
	ErrProfileValidation ErrorCode = "PROFILE_VALIDATION"

	// Resource errors
	ErrResourceFile   ErrorCode = "RESOURCE_FILE"
	ErrResourceSocket ErrorCode = "RESOURCE_SOCKET"

	// Engine errors
	ErrEngineInit    ErrorCode = "ENGINE_INIT"
	ErrEngineFailure ErrorCode = "ENGINE_FAILURE"
)

// ControlError is the unified error type for the machine-control host
type ControlError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the file the error refers to (if applicable)
	Path string

	// Line is the line number in that file (if applicable)
	Line int

	// Section is the profile section (if applicable)
	Section string

	// Option is the flag or profile option name (if applicable)
	Option string

	// Err wraps the underlying error
	Err error
}

// Error implements the error interface
func (e *ControlError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ControlError) Unwrap() error {
	return e.Err
}

// SetPath sets the file path
func (e *ControlError) SetPath(path string) *ControlError {
	e.Path = path
	return e
}

// SetLine sets the line number
func (e *ControlError) SetLine(line int) *ControlError {
	e.Line = line
	return e
}

// SetSection sets the profile section
func (e *ControlError) SetSection(section string) *ControlError {
	e.Section = section
	return e
}

// SetOption sets the flag or profile option
func (e *ControlError) SetOption(option string) *ControlError {
	e.Option = option
	return e
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code ErrorCode, message string) *ControlError {
	return &ControlError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// New creates a new ControlError
func New(code ErrorCode, message string) *ControlError {
	return &ControlError{
		Code:    code,
		Message: message,
	}
}

// Command-line errors

// UsageError creates an error for an invalid command line
func UsageError(format string, args ...interface{}) *ControlError {
	return New(ErrUsage, fmt.Sprintf(format, args...))
}

// UsageConflictError creates an error for mutually exclusive options
func UsageConflictError(a, b string) *ControlError {
	return New(ErrUsageConflict, fmt.Sprintf("options '%s' and '%s' are mutually exclusive", a, b)).
		SetOption(a)
}

// OptionValueError creates an error for a malformed option value
func OptionValueError(option, value string, reason string) *ControlError {
	return New(ErrUsage, fmt.Sprintf("option '%s': invalid value '%s' (%s)", option, value, reason)).
		SetOption(option)
}

// Profile errors

// ProfileParseError creates an error for a malformed profile file
func ProfileParseError(path string, line int, reason string) *ControlError {
	return New(ErrProfileParse, fmt.Sprintf("%s:%d: %s", path, line, reason)).
		SetPath(path).
		SetLine(line)
}

// ProfileSectionError creates an error for an unknown profile section
func ProfileSectionError(section string) *ControlError {
	return New(ErrProfileParse, fmt.Sprintf("unknown section '%s'", section)).
		SetSection(section)
}

// ProfileOptionError creates an error for an unknown or misplaced profile option
func ProfileOptionError(section, option string) *ControlError {
	return New(ErrProfileOption, fmt.Sprintf("option '%s' not valid in section '%s'", option, section)).
		SetSection(section).
		SetOption(option)
}

// ProfileValidationError creates an error for a profile value that fails validation
func ProfileValidationError(section, option string, reason string) *ControlError {
	return New(ErrProfileValidation, fmt.Sprintf("option '%s' in section '%s': %s", option, section, reason)).
		SetSection(section).
		SetOption(option)
}

// Resource errors

// FileError creates an error for a file operation failure
func FileError(op, path string, err error) *ControlError {
	return Wrap(err, ErrResourceFile, fmt.Sprintf("cannot %s '%s'", op, path)).
		SetPath(path)
}

// SocketError creates an error for a socket operation failure
func SocketError(op string, err error) *ControlError {
	return Wrap(err, ErrResourceSocket, fmt.Sprintf("socket %s failed", op))
}

// PortRangeError creates an error for a TCP port outside the valid range
func PortRangeError(port int) *ControlError {
	return New(ErrResourceSocket, fmt.Sprintf("invalid port %d (valid range: 0..65535)", port))
}

// Engine errors

// EngineInitError creates an error for engine initialization failure
func EngineInitError(reason string) *ControlError {
	return New(ErrEngineInit, reason)
}

// EngineFailureError creates an error for a stream that ended with a
// non-zero engine status
func EngineFailureError(status int, description string) *ControlError {
	return New(ErrEngineFailure, fmt.Sprintf("stream processing ended with status %d (%s)", status, description))
}

// Is checks if error matches given error code
func Is(err error, code ErrorCode) bool {
	if ctrlErr, ok := err.(*ControlError); ok {
		return ctrlErr.Code == code
	}
	return false
}

// IsUsage checks if error is a command-line error
func IsUsage(err error) bool {
	return Is(err, ErrUsage) || Is(err, ErrUsageConflict)
}

// IsProfile checks if error is a profile error
func IsProfile(err error) bool {
	return Is(err, ErrProfileParse) ||
		Is(err, ErrProfileOption) ||
		Is(err, ErrProfileValidation)
}

// IsResource checks if error is a resource error
func IsResource(err error) bool {
	return Is(err, ErrResourceFile) || Is(err, ErrResourceSocket)
}

// IsEngine checks if error is an engine error
func IsEngine(err error) bool {
	return Is(err, ErrEngineInit) || Is(err, ErrEngineFailure)
}
