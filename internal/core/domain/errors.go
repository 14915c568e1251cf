package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller does not own the session
	ErrForbidden = errors.New("forbidden")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrInvalidAccessKey indicates a wrong access key was presented
	ErrInvalidAccessKey = errors.New("invalid access key")

	// ErrSessionNotFound indicates the configuration session does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionFinalized indicates the session was already handed off
	ErrSessionFinalized = errors.New("session already finalized")

	// ErrGroupNotFound indicates the retrieval group does not exist
	ErrGroupNotFound = errors.New("group not found")

	// ErrUnknownTopic indicates a topic id outside the current semantic space
	ErrUnknownTopic = errors.New("unknown topic")

	// ErrUnknownSource indicates a source outside the known enumeration
	ErrUnknownSource = errors.New("unknown source")

	// ErrSourceUnsupported indicates no query tester exists for the source
	ErrSourceUnsupported = errors.New("source not supported for query testing")

	// ErrOperationInFlight indicates a duplicate submission for a key whose
	// previous call has not completed
	ErrOperationInFlight = errors.New("operation already in flight")

	// ErrStaleResponse indicates a collaborator response arrived after its
	// request token was superseded and was discarded
	ErrStaleResponse = errors.New("stale response discarded")

	// ErrNotReady indicates finalize was attempted while ready_to_activate is false
	ErrNotReady = errors.New("configuration not ready to activate")

	// ErrPhaseIncomplete indicates forward navigation from an unsatisfied phase
	ErrPhaseIncomplete = errors.New("phase predicate not satisfied")

	// ErrServiceUnavailable indicates a collaborator service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)
