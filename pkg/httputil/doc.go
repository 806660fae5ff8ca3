// Package httputil provides HTTP helpers for fetching remote tree sources.
//
// [Retry] re-runs an operation with exponential backoff as long as it
// returns errors wrapped in [RetryableError]. [Get] builds on it: network
// errors, 429 and 5xx responses are retried; other non-2xx responses fail
// immediately with a [StatusError].
//
//	body, err := httputil.Get(ctx, http.DefaultClient, url, httputil.DefaultAttempts, time.Second)
package httputil
