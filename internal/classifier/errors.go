package classifier

import (
	"errors"
	"fmt"
)

// User-facing messages. The transport message is fixed; the cause is only
// logged.
const (
	MessageRemoteFallback     = "An error occurred"
	MessageNetwork            = "Network error: Unable to connect to the API"
	MessageUnexpectedResponse = "Unexpected response from the API"
)

// ErrMalformedResponse is the cause of a TransportError when the service
// body is not JSON.
var ErrMalformedResponse = errors.New("response body is not valid JSON")

// ErrNullErrorBody is the cause of a TransportError when a non-2xx
// response body is JSON null.
var ErrNullErrorBody = errors.New("error response body is null")

// RemoteError is returned when the service answers with a non-2xx status.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("classification service error (%d): %s", e.StatusCode, e.Message)
}

// TransportError is returned when the HTTP exchange could not be completed
// or its body could not be decoded.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("calling %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AsRemote returns the RemoteError in err's chain, if any.
func AsRemote(err error) (*RemoteError, bool) {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr, true
	}
	return nil, false
}

// IsTransport reports whether err (or any error in its chain) is a
// TransportError.
func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
