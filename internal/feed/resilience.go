package feed

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"codeberg.org/mutker/envstation/internal/errors"
)

type backoffConfig struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
}

// doRequestWithResilience executes the request with retries, exponential
// backoff and a circuit breaker. Responses outside 2xx are mapped to feed
// error codes and retried until the budget runs out; an open circuit
// propagates immediately.
func doRequestWithResilience(
	ctx context.Context,
	client *http.Client,
	backoff backoffConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ErrRequestFailed, ctx.Err())
		}

		req, err := buildRequest()
		if err != nil {
			return nil, errors.Wrap(ErrRequestFailed, err)
		}

		// Ensure the request obeys context cancellation.
		req = req.WithContext(ctx)

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := client.Do(req)
			if execErr != nil {
				return nil, errors.Wrap(ErrRequestFailed, execErr)
			}

			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				resp.Body.Close()
				return nil, errors.New(ErrRateLimited)
			case resp.StatusCode >= 500:
				resp.Body.Close()
				return nil, errors.WithData(ErrServerError, resp.Status)
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				resp.Body.Close()
				return nil, errors.WithData(ErrRequestFailed, resp.Status)
			}

			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, errors.New(errors.ErrInternal)
			}
			return resp, nil
		}

		// An open circuit fails fast until its timeout elapses.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.Wrap(ErrUnavailable, err)
		}

		lastErr = err
		if attempt >= backoff.maxRetries {
			return nil, lastErr
		}

		delay := backoff.initialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if backoff.maxInterval > 0 && delay > backoff.maxInterval {
			delay = backoff.maxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, errors.Wrap(ErrRequestFailed, ctx.Err())
		case <-timer.C:
		}

		attempt++
	}
}
