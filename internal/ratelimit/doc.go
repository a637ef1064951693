// Package ratelimit wraps calls to a rate-limited service.
//
// A [Caller] paces attempts so that two of them never start less than
// MinInterval apart, and retries an attempt that fails with a rate-limit
// signal after waiting BaseBackoff * 2^attempt. Any other failure is returned
// at once. After MaxRetries retries the call gives up with an error wrapping
// [ErrRetriesExhausted].
//
// An error counts as a rate-limit signal when some error in its chain has a
// RateLimited() bool method that returns true; see [IsRateLimited].
//
// Waiting is delegated to an injectable sleeper and clock so tests can verify
// the schedule without real delays. One Caller should be shared by every call
// against the same service during a run.
package ratelimit
