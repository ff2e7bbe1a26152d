package models

import "errors"

// Domain errors. Handlers map these to HTTP statuses; the message text is
// what the frontend shows, so keep it human-readable.
var (
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidRepository    = errors.New("invalid repository URL")
	ErrInsufficientCredits  = errors.New("insufficient credits")
	ErrNoToken              = errors.New("no GitHub token provided or configured")
	ErrAuthenticationFailed = errors.New("GitHub authentication failed")
	ErrForbidden            = errors.New("insufficient permissions or rate limit exceeded")
	ErrRateLimited          = errors.New("GitHub API rate limit exceeded")
	ErrBranchNotFound       = errors.New("branch not found")
	ErrCommitFailed         = errors.New("commit failed due to invalid data or network error")
	ErrUpstream             = errors.New("upstream GitHub error")
)
