// Package identity exposes the authenticated subject to the reconciliation
// engine: who owns new records, whether the caller has an elevated role, and
// a credential-refresh call used by the orchestrator's auth gate.
package identity

import "context"

// Provider is the identity surface consumed by the engine.
type Provider interface {
	// SubjectID returns the authenticated subject's id, or "" when signed out.
	SubjectID() string

	// Elevated reports whether the subject may pull records of the whole
	// organizational scope instead of only its own.
	Elevated() bool

	// Authenticated reports whether a usable credential is currently held.
	Authenticated() bool

	// Refresh exchanges the refresh token for a fresh credential pair.
	// Returns common.ErrUnauthorized when the session is no longer valid.
	Refresh(ctx context.Context) error

	// Token returns a currently valid access token, refreshing it first if
	// it is about to expire.
	Token(ctx context.Context) (string, error)
}
