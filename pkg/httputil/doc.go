// Package httputil holds the retry policy shared by the snapshot fetcher.
//
// Transient failures (connection errors, 5xx and 429 responses) are marked
// with [Retryable] or [RetryAfter]; [Retry] re-runs an operation only for
// those, doubling the wait between attempts unless the server asked for a
// specific delay:
//
//	err := httputil.Retry(ctx, 3, 500*time.Millisecond, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    if resp.StatusCode == http.StatusTooManyRequests {
//	        return httputil.RetryAfter(errBusy, httputil.ParseRetryAfter(resp.Header.Get("Retry-After")))
//	    }
//	    ...
//	})
package httputil
