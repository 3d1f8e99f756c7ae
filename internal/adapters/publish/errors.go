package publish

import "errors"

// Sentinel kinds for publish failures. Publish only logs them.
var (
	ErrMissingCredential = errors.New("publish credential not configured")
	ErrPublish           = errors.New("publish failed")
)
