package custom_errors

import (
	"errors"
	"fmt"
)

// ErrInvalidResponse is reported when a response could not be obtained or decoded.
var ErrInvalidResponse = errors.New("invalid response from server")

// ApplicationError is a decoded response whose success flag is false.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	return e.Message
}

// JobError is a Minion job that reached the failed state.
type JobError struct {
	JobID  string
	Detail string
}

func (e *JobError) Error() string {
	return e.Detail
}

// ContinuationError wraps an error returned or a panic raised by a success continuation.
type ContinuationError struct {
	Err error
}

func (e *ContinuationError) Error() string {
	return e.Err.Error()
}

func (e *ContinuationError) Unwrap() error {
	return e.Err
}

// FromPanic converts a recovered value into a ContinuationError.
func FromPanic(r any) *ContinuationError {
	if err, ok := r.(error); ok {
		return &ContinuationError{Err: err}
	}
	return &ContinuationError{Err: fmt.Errorf("%v", r)}
}
