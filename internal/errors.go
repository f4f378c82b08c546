package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidUsage is returned when a counter update carries negative token counts
	ErrInvalidUsage = errors.New("invalid usage")
	// ErrInvalidSnapshot is returned when a loaded document cannot be used as a snapshot
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	// ErrMissingCredential is returned when no credential provider yields a value
	ErrMissingCredential = errors.New("missing API credential")
	// ErrNotFound is returned by catalog lookups for unknown keys
	ErrNotFound = errors.New("not found")
	// ErrEmptyInput is returned when a submission is blank after trimming
	ErrEmptyInput = errors.New("empty input")
	// ErrTurnInFlight is returned when a turn is submitted while another is running
	ErrTurnInFlight = errors.New("a turn is already in progress")
)

// UsageError represents a rejected usage counter update
type UsageError struct {
	Prompt     int64
	Completion int64
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("invalid usage: prompt=%d completion=%d (counts must be non-negative)", e.Prompt, e.Completion)
}

func (e *UsageError) Unwrap() error {
	return ErrInvalidUsage
}

// SnapshotError represents a snapshot document that could not be loaded
type SnapshotError struct {
	Source string // file path or "stdin"
	Reason string
	Err    error
}

func (e *SnapshotError) Error() string {
	msg := fmt.Sprintf("snapshot error [%s]: %s", e.Source, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SnapshotError) Unwrap() error {
	return e.Err
}

// Is reports every SnapshotError as ErrInvalidSnapshot
func (e *SnapshotError) Is(target error) bool {
	return target == ErrInvalidSnapshot
}

// GatewayErrorKind classifies completion gateway failures
type GatewayErrorKind int

const (
	// GatewayUnavailable means the client or provider is not usable at all
	GatewayUnavailable GatewayErrorKind = iota
	// GatewayAuthError means the provider rejected the credential
	GatewayAuthError
	// GatewayNetworkError covers transport failures and timeouts
	GatewayNetworkError
	// GatewayUpstreamError covers any other provider-side failure
	GatewayUpstreamError
)

func (k GatewayErrorKind) String() string {
	switch k {
	case GatewayUnavailable:
		return "unavailable"
	case GatewayAuthError:
		return "auth"
	case GatewayNetworkError:
		return "network"
	case GatewayUpstreamError:
		return "upstream"
	default:
		return "unknown"
	}
}

// GatewayError represents a failed completion call
type GatewayError struct {
	Kind  GatewayErrorKind
	Model string
	Err   error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error [%s] %s: %v", e.Kind, e.Model, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// FileError represents errors reading or writing snapshot files
type FileError struct {
	Path string
	Op   string // "open", "read", "write"
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
