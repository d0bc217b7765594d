package crawl

import (
	"errors"
	"fmt"
	"time"
)

// FetchError is the only error kind that escapes a crawl run.
type FetchError struct {
	Address string
	// Status is 0 when no response was received at all.
	Status int
	Err    error
}

func NewFetchError(address string, status int, err error) *FetchError {
	return &FetchError{Address: address, Status: status, Err: err}
}

func (e *FetchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("fetch %s: %v", e.Address, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Address, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.Address, e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

var (
	// ErrExtractionGap marks a page that lacks the structure an extractor
	// needs. It is absorbed by the driver and walker.
	ErrExtractionGap = errors.New("expected element is missing")
	// ErrRenderTimeout is matched by every *RenderTimeoutError.
	ErrRenderTimeout = errors.New("timed out waiting for element to render")
	// ErrPageLimit is returned when a run hits its page cap before the
	// navigator signals completion.
	ErrPageLimit = errors.New("page limit reached")
)

type RenderTimeoutError struct {
	Address  string
	Selector string
	Timeout  time.Duration
}

func (e *RenderTimeoutError) Error() string {
	return fmt.Sprintf(
		"render %s: %q did not appear within %s",
		e.Address, e.Selector, e.Timeout,
	)
}

func (e *RenderTimeoutError) Is(target error) bool {
	return target == ErrRenderTimeout
}
