package dispatch

// RetryPolicy encapsulates the retry-exhaustion rule the scanner consults
// after a failed delivery attempt. Backoff is implicit in the scan cadence:
// the scanner polls on a fixed interval and a still-pending reminder is
// simply retried on the next pass, so the policy carries no delay formula.
// LastRetryAt on the reminder exists for diagnostics only and never gates
// re-attempt timing.
type RetryPolicy struct {
	// MaxAttempts is the number of failed attempts after which a reminder
	// transitions to the terminal failed state.
	MaxAttempts int
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3}
}

// Exhausted reports whether a reminder that has already failed retryCount
// attempts is out of retries.
func (p RetryPolicy) Exhausted(retryCount int) bool {
	return retryCount >= p.MaxAttempts
}
