package twitch

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError reports a failed HTTP exchange with the Helix API: a request
// that could not be sent, a response that could not be read, or a non-2xx
// status. Status is 0 when no HTTP response was received.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("twitch api request failed with status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("twitch api request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a 2xx response whose body did not decode into the
// expected schema. Body holds a truncated excerpt for logging.
type ParseError struct {
	Err  error
	Body string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("twitch api response undecodable: %v (body: %s)", e.Err, e.Body)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err is a transport failure with HTTP 401,
// the platform's signal for an expired or invalid token.
func IsUnauthorized(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Status == http.StatusUnauthorized
}
