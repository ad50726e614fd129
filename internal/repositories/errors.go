package repositories

import (
	"errors"
	"fmt"
	"strings"
)

// Store-level sentinel errors. Services and handlers match these with
// errors.Is; the wrapped message carries the human-readable detail.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientStock is returned when a reservation would drive a
	// phone's stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrTransientStore is returned for lock timeouts, deadlocks and
	// serialization failures. It is the only store error a caller should
	// retry automatically.
	ErrTransientStore = errors.New("transient store failure")
)

// transientHints are substrings of driver errors that indicate a retryable
// contention failure rather than a permanent one. Covers sqlite busy/locked
// and postgres deadlock/serialization messages.
var transientHints = []string{
	"database is locked",
	"database table is locked",
	"deadlock detected",
	"lock timeout",
	"could not serialize access",
	"database is busy",
}

// ClassifyStoreError wraps retryable driver errors with ErrTransientStore
// and passes every other error through unchanged.
func ClassifyStoreError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range transientHints {
		if strings.Contains(msg, hint) {
			return fmt.Errorf("%v: %w", err, ErrTransientStore)
		}
	}
	return err
}
