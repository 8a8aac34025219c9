package domain

import (
	"errors"
	"fmt"
)

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// RemoteError represents a failure talking to the marketplace API: network
// error, timeout, non-2xx status or malformed payload. Retriable during
// steady-state polling; fatal during cache warm-up.
type RemoteError struct {
	Op  string // Operation that failed (e.g., "catalog", "orders/secura_dual_cestra")
	Err error  // Underlying error
}

func (e *RemoteError) Error() string {
	return "remote unavailable [" + e.Op + "]: " + e.Err.Error()
}

func (e *RemoteError) IsRetriable() bool {
	return true
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// NewRemoteError wraps err as a remote-endpoint failure.
func NewRemoteError(op string, err error) *RemoteError {
	return &RemoteError{Op: op, Err: err}
}

// UnknownItemError is returned when an identifier is absent from a fully
// loaded catalog. It indicates a typo in the watch-list, so it is never
// retriable and fails startup.
type UnknownItemError struct {
	ID string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("unknown item %q: not in the loaded catalog", e.ID)
}

func (e *UnknownItemError) IsRetriable() bool {
	return false
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// CacheError represents a persisted cache that failed to load or parse.
// The corrupt store is discarded and rebuilt from the remote catalog.
type CacheError struct {
	Store string // "catalog" or "stats"
	Err   error
}

func (e *CacheError) Error() string {
	return "cache corrupt [" + e.Store + "]: " + e.Err.Error()
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

var (
	// ErrCatalogEmpty is returned when the remote catalog endpoint yields zero items
	ErrCatalogEmpty = errors.New("catalog is empty")

	// ErrCatalogNotLoaded is returned when Resolve is called before EnsureLoaded
	ErrCatalogNotLoaded = errors.New("catalog not loaded")

	// ErrStatsNotLoaded is returned when stats are requested for an unwarmed identifier
	ErrStatsNotLoaded = errors.New("statistics not loaded")
)
