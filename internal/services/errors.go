package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when an entity does not exist or is not owned
// by the acting user. The two cases are deliberately indistinguishable
// so that task IDs belonging to other users cannot be enumerated.
var ErrNotFound = errors.New("not found or access denied")

// ErrUsernameTaken is returned by registration when the username is
// already in use.
var ErrUsernameTaken = errors.New("username already taken")

// ErrInvalidCredentials is returned on a failed login. Unknown user and
// wrong password produce the same error.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrPrincipalNotFound indicates that an authenticated principal has no
// matching user row. Authentication already vouched for the principal,
// so this is a broken invariant between the token and the store, not a
// client error.
var ErrPrincipalNotFound = errors.New("authenticated principal not found in store")

// ValidationError reports a rejected request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Code returns the field-scoped error code, e.g. INVALID_TITLE.
func (e *ValidationError) Code() string {
	return "INVALID_" + strings.ToUpper(e.Field)
}
