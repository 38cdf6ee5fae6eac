package common

import (
	"errors"
	"fmt"
)

// Error kinds. Package level errors wrap one of these with %w so callers can
// classify failures without knowing every sentinel.
var (
	ErrPrecondition    = errors.New("precondition failed")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrMisconfigured   = errors.New("upstream credential not configured")
	ErrDataShape       = errors.New("malformed data")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
)

// UpstreamError is a non-success answer from an external service (LLM
// provider, payment gateway). Status is the upstream HTTP status when known.
type UpstreamError struct {
	Service string
	Status  int
	Body    string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s error: %s", e.Service, e.Body)
	}
	return fmt.Sprintf("%s error: status %d: %s", e.Service, e.Status, e.Body)
}

func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
