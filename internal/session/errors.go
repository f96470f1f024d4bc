package session

import "errors"

var (
	ErrBackendRequired     = errors.New("session: auth backend is required")
	ErrCredentialsRequired = errors.New("session: email and password are required")
	ErrNoSession           = errors.New("session: backend returned no valid session")
)

// AuthError reports a failed sign-in. Message is the backend's human readable
// reason and is safe to show to the person signing in.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
