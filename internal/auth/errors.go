package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrCredentialsMissing = errors.New("email and password are required")
	ErrDatabaseRequired   = errors.New("auth: bun backend requires a database")
	ErrSecretRequired     = errors.New("auth: jwt secret is required")
	ErrTokenInvalid       = errors.New("auth: session token is invalid")
)
