// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP retry policy shared by the session layer.
package httputil

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

// DefaultMaxRetries is the retry budget applied when a session config
// leaves it unset.
const DefaultMaxRetries = 5

// RetryOn429 is a retry condition that retries only rate-limited
// responses. Transport errors and other HTTP statuses pass through to the
// caller unchanged, where they are converted into empty result sets.
func RetryOn429(resp *resty.Response, err error) bool {
	return err == nil && resp != nil && resp.StatusCode() == http.StatusTooManyRequests
}

// Backoff returns the wait before retry attempt n (1-based). The delay
// starts at RetryBaseDelay and doubles each attempt: 10 s, 20 s, 40 s, ...
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(1<<(attempt-1)) * RetryBaseDelay
}
