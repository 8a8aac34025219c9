package domain

import (
	"errors"
	"testing"
)

func TestRemoteError(t *testing.T) {
	baseErr := errors.New("connection refused")

	t.Run("retriable", func(t *testing.T) {
		err := NewRemoteError("orders/secura_dual_cestra", baseErr)

		if !err.IsRetriable() {
			t.Error("Expected remote error to be retriable")
		}

		want := "remote unavailable [orders/secura_dual_cestra]: connection refused"
		if err.Error() != want {
			t.Errorf("Error message = %q, want %q", err.Error(), want)
		}

		if !errors.Is(err, baseErr) {
			t.Error("Expected error to wrap baseErr")
		}
	})

	t.Run("IsRetriable helper", func(t *testing.T) {
		remote := NewRemoteError("catalog", baseErr)
		unknown := &UnknownItemError{ID: "secura_dual_cestr"}
		plain := errors.New("plain error")

		if !IsRetriable(remote) {
			t.Error("IsRetriable should return true for remote error")
		}

		if IsRetriable(unknown) {
			t.Error("IsRetriable should return false for unknown item")
		}

		if IsRetriable(plain) {
			t.Error("IsRetriable should return false for plain error")
		}
	})
}

func TestUnknownItemError(t *testing.T) {
	err := &UnknownItemError{ID: "sekura_dual_cestra"}

	if err.IsRetriable() {
		t.Error("UnknownItemError should never be retriable")
	}

	expected := `unknown item "sekura_dual_cestra": not in the loaded catalog`
	if err.Error() != expected {
		t.Errorf("Error message = %q, want %q", err.Error(), expected)
	}
}

func TestConfigError(t *testing.T) {
	baseErr := errors.New("missing value")
	err := &ConfigError{Field: "watch.items[0].id", Err: baseErr}

	if err.IsRetriable() {
		t.Error("ConfigError should never be retriable")
	}

	expected := "config error [watch.items[0].id]: missing value"
	if err.Error() != expected {
		t.Errorf("Error message = %q, want %q", err.Error(), expected)
	}
}

func TestCacheError(t *testing.T) {
	baseErr := errors.New("unexpected end of JSON input")
	err := &CacheError{Store: "stats", Err: baseErr}

	if !errors.Is(err, baseErr) {
		t.Error("Expected error to wrap baseErr")
	}

	expected := "cache corrupt [stats]: unexpected end of JSON input"
	if err.Error() != expected {
		t.Errorf("Error message = %q, want %q", err.Error(), expected)
	}
}
