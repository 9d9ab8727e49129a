// Package common defines shared constants and sentinel errors used across
// the trip-logging client. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Store-level errors.
	ErrNotFound = errors.New("not found")

	// Orchestrator gate errors.
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrOffline        = errors.New("device offline")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")

	// Remote store errors.
	ErrConflict = errors.New("remote version conflict")
	ErrRejected = errors.New("rejected by remote store")
)
