package provisioning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/imamik/kbstack/internal/platform/awserr"
	"github.com/imamik/kbstack/internal/util/poll"
)

var (
	// ErrMissingInput is matched by errors for phases run before their inputs exist.
	ErrMissingInput = errors.New("missing input")
	// ErrMissingOutput is matched by errors for phases that did not write a declared output.
	ErrMissingOutput = errors.New("missing output")
	// ErrConflict is matched by errors for resources that already exist and cannot be reused.
	ErrConflict = awserr.ErrConflict
	// ErrValidation is matched by pre-flight validation failures.
	ErrValidation = errors.New("validation failed")
)

// MissingInputError names every required key absent from State.
type MissingInputError struct {
	Phase string
	Keys  []Key
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s requires %s", e.Phase, joinKeys(e.Keys))
}

func (e *MissingInputError) Unwrap() error { return ErrMissingInput }

// MissingOutputError names every declared output a phase left unset.
type MissingOutputError struct {
	Phase string
	Keys  []Key
}

func (e *MissingOutputError) Error() string {
	return fmt.Sprintf("%s did not provide %s", e.Phase, joinKeys(e.Keys))
}

func (e *MissingOutputError) Unwrap() error { return ErrMissingOutput }

func joinKeys(keys []Key) string {
	s := make([]string, len(keys))
	for i, k := range keys {
		s[i] = string(k)
	}
	return strings.Join(s, ", ")
}

// ErrorKind is the category of a provisioning failure.
type ErrorKind string

// Error kinds, used in reports and metrics.
const (
	KindConflict     ErrorKind = "conflict"
	KindFailed       ErrorKind = "failed"
	KindTimeout      ErrorKind = "timeout"
	KindMissingInput ErrorKind = "missing_input"
	KindValidation   ErrorKind = "validation"
	KindCanceled     ErrorKind = "canceled"
	KindRequest      ErrorKind = "request"
)

// Classify maps an error onto its kind. Anything unrecognized is a request error.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, poll.ErrTimeout):
		return KindTimeout
	case errors.Is(err, poll.ErrFailed):
		return KindFailed
	case errors.Is(err, ErrMissingInput), errors.Is(err, ErrMissingOutput):
		return KindMissingInput
	case errors.Is(err, ErrValidation):
		return KindValidation
	case awserr.IsConflict(err):
		return KindConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindRequest
	}
}
