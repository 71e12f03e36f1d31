package application

import "errors"

var (
	// ErrInvalidCredentials masks every login failure: unknown email and
	// wrong password are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated means the presented session token is missing,
	// unknown, or expired.
	ErrUnauthenticated = errors.New("unauthenticated")

	ErrCompanyNotFound = errors.New("company not found")
	ErrEntryNotFound   = errors.New("journal entry not found")
	ErrFindingNotFound = errors.New("finding not found")
	// ErrNotConnected means the company has no provider connection yet.
	ErrNotConnected = errors.New("company is not connected to the accounting provider")
	// ErrInvalidState means the OAuth callback state failed verification.
	ErrInvalidState = errors.New("invalid or expired oauth state")
)
