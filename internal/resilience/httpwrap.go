package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNoClient is returned when HTTPClient has no underlying client.
var ErrNoClient = errors.New("resilience: http client not configured")

// StatusError reports a 5xx answer from the downstream service.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("resilience: upstream returned %s", e.Status)
}

// HTTPClient sends single-shot requests through a circuit breaker with a
// per-call timeout. Requests are never retried.
type HTTPClient struct {
	Client  *http.Client
	Breaker *Breaker
	Timeout time.Duration
}

// Do sends req. Transport errors and 5xx answers are reported to the breaker
// as failures; for a 5xx the body is drained and a *StatusError returned.
// The caller closes the body of a successful response.
func (cl HTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if cl.Client == nil {
		return nil, ErrNoClient
	}
	if cl.Breaker != nil && !cl.Breaker.Allow(ctx) {
		return nil, ErrOpenCircuit
	}

	timeout := cl.Timeout
	if timeout <= 0 {
		timeout = cl.Client.Timeout
	}
	callCtx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, timeout)
	}

	resp, err := cl.Client.Do(req.WithContext(callCtx))
	if err == nil && resp.StatusCode >= http.StatusInternalServerError {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		err = &StatusError{Code: resp.StatusCode, Status: resp.Status}
		resp = nil
	}
	if cl.Breaker != nil {
		cl.Breaker.Report(ctx, err == nil)
	}
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
