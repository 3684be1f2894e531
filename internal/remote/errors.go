package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a classified failure from the remote service.
//
// StatusCode is the HTTP status, or zero for transport-level failures
// (connection refused, timeout). Reason is the short server-supplied
// explanation when one was present in the response body.
type Error struct {
	Op         string
	StatusCode int
	Reason     string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Reason != "":
		return fmt.Sprintf("remote %s: %d %s", e.Op, e.StatusCode, e.Reason)
	case e.StatusCode != 0:
		return fmt.Sprintf("remote %s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	case e.Err != nil:
		return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("remote %s failed", e.Op)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports whether err is a remote error for a missing resource.
func NotFound(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.StatusCode == http.StatusNotFound
}
