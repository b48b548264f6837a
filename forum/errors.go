package forum

import "errors"

// Business-rule violations. These are expected conditions surfaced to the
// caller as values, never panics; storage failures are wrapped separately.
var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrTopicNotFound      = errors.New("topic not found")
	ErrMessageNotFound    = errors.New("message not found")
)
