package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
)

// Errors for configuration validation.
var (
	ErrConfigRequired   = errors.New("config is required")
	ErrInvalidEndpoint  = errors.New("endpoint must be an absolute http or https URL")
	ErrClientIDRequired = errors.New("client id is required")
)

// Errors for input validation.
var (
	ErrNoFiles        = errors.New("no file names provided")
	ErrEmptyPath      = errors.New("path is required")
	ErrEmptyFileName  = errors.New("file name is required")
	ErrMissingURL     = errors.New("server returned no url")
	ErrInvalidTTL     = errors.New("ttl must be a whole number of seconds between 1s and 168h")
	ErrInvalidMethod  = errors.New("method must be GET or PUT")
	ErrUnexpectedBody = errors.New("unexpected response body")
)
