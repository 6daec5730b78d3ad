package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRunInProgress indicates a reconciliation pass is already running
	ErrRunInProgress = errors.New("reconciliation already in progress")

	// ErrChannelDisabled indicates the channel is not enabled for processing
	ErrChannelDisabled = errors.New("channel disabled")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrInvalidCredentials indicates a wrong operator secret
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrServiceUnavailable indicates a required collaborator could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)
