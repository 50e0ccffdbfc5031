package sim

import (
	"errors"
	"fmt"
	"net/http"
)

// RemoteError is returned when the simulation server answers with a
// non-success status. The gateway never retries; callers decide.
type RemoteError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: remote returned status %d", e.Operation, e.StatusCode)
}

// Unauthorized reports whether the remote rejected the bearer token. Callers
// flag this for operator attention; no automatic refresh is attempted.
func (e *RemoteError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsUnauthorized reports whether err is a RemoteError carrying a 401.
func IsUnauthorized(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Unauthorized()
}
