package tracer

import (
	"errors"
	"fmt"
)

// ErrSampleRequired is returned when a type's custom Validate rejects a
// synthesized witness and the samples store had no entry to replay
// instead.
var ErrSampleRequired = errors.New("tracer: sample required")

// SampleRequiredError names the container that needs a sample recorded for it.
type SampleRequiredError struct {
	Container string
	Cause     error
}

func (e *SampleRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("tracer: %s rejected synthesized witness (%v); call samples.Record with a valid value and retry", e.Container, e.Cause)
	}
	return fmt.Sprintf("tracer: %s requires a recorded sample", e.Container)
}

func (e *SampleRequiredError) Unwrap() error { return ErrSampleRequired }

// NotImplementedError reports a feature the codec/tracer deliberately
// refuses to support.
type NotImplementedError struct {
	Feature string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("tracer: not implemented: %s", e.Feature)
}
