// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the Notion client and the
// image fetcher.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 1 * time.Second

// MaxRetryAfter caps how long a Retry-After header may make us wait.
var MaxRetryAfter = 60 * time.Second

const defaultMaxRetries = 5

// Retrier executes requests and retries them on HTTP 429 (Too Many Requests).
type Retrier struct {
	Client     *http.Client
	MaxRetries int
	Logger     *zap.Logger
}

// Do executes req and retries on HTTP 429. The wait is taken from the
// Retry-After header when the server sends one (Notion does), otherwise it
// starts at RetryBaseDelay and doubles each attempt.
//
// Request bodies are replayed through req.GetBody, so requests built with
// http.NewRequestWithContext over a bytes or strings reader can be retried.
// When MaxRetries is 0 the default (5) is used. If the context is cancelled
// during a backoff wait Do returns ctx.Err(). After exhausting retries the
// last 429 response is returned so the caller can inspect it.
func (r *Retrier) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	maxRetries := r.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
			attemptReq.Body = body
		}

		resp, err := client.Do(attemptReq)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Exhausted retries: return the 429 response as-is.
		if attempt >= maxRetries {
			return resp, nil
		}

		backoff := retryDelay(resp.Header.Get("Retry-After"), attempt)

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		logger.Debug("rate limited, retrying",
			zap.String("url", req.URL.Redacted()),
			zap.Duration("backoff", backoff),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// retryDelay honours a Retry-After value in seconds, falling back to
// exponential backoff.
func retryDelay(retryAfter string, attempt int) time.Duration {
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		d := time.Duration(secs) * time.Second
		if d > MaxRetryAfter {
			d = MaxRetryAfter
		}
		return d
	}
	return time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
}
