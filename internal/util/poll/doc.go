// Package poll waits for asynchronous remote resources to reach a terminal state.
//
// [Until] calls a check function on a fixed, optionally jittered interval
// until it reports Ready or Failed, or until a ceiling elapses. Every wait
// is bounded: a resource that never leaves its pending state yields a
// [*TimeoutError] instead of blocking forever, and a Failed status yields a
// [*FailedError]. Callers tell the two apart with errors.Is against
// [ErrTimeout] and [ErrFailed].
package poll
