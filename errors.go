package tasklet

import (
	"errors"
	"fmt"
)

// Namespace prefixes every sentinel error so callers can recognize which
// package raised it even after wrapping.
const Namespace = "tasklet"

var (
	// ErrUnexpectedSnapshotID is raised when an observed barrier's snapshot
	// id does not match the id currently expected. It is fatal for the
	// owning tasklet and must be surfaced to the job coordinator.
	ErrUnexpectedSnapshotID = errors.New(Namespace + ": unexpected snapshot id")

	// ErrProcessorInitFailure wraps a failure raised by Processor.Init.
	ErrProcessorInitFailure = errors.New(Namespace + ": processor init failed")

	// ErrProcessorExecutionFailure wraps a failure raised by TryProcess,
	// Process, Complete, or either snapshot method.
	ErrProcessorExecutionFailure = errors.New(Namespace + ": processor execution failed")

	// ErrInvalidConfig is returned by configuration validation when a
	// required field is missing or empty. Conflicting guarantee options panic
	// instead.
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")
)

// ProcessorError exposes correlation metadata for a processor failure: the
// vertex name and state the tasklet was in when the user's processor code
// raised it. It unwraps to the underlying sentinel plus whatever the
// processor itself returned.
type ProcessorError interface {
	error
	Unwrap() error
	VertexName() string
	State() State
}

type processorTaggedError struct {
	err        error
	vertexName string
	state      State
}

func newProcessorError(sentinel, cause error, vertexName string, state State) error {
	if cause == nil {
		return nil
	}
	return &processorTaggedError{
		err:        fmt.Errorf("%w: %s: %w", sentinel, vertexName, cause),
		vertexName: vertexName,
		state:      state,
	}
}

func (e *processorTaggedError) Error() string      { return e.err.Error() }
func (e *processorTaggedError) Unwrap() error      { return e.err }
func (e *processorTaggedError) VertexName() string { return e.vertexName }
func (e *processorTaggedError) State() State       { return e.state }

// AsProcessorError extracts correlation metadata from err if present.
func AsProcessorError(err error) (ProcessorError, bool) {
	var pe ProcessorError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

type unexpectedSnapshotIDError struct {
	expected int64
	observed int64
	ordinal  int
}

func newUnexpectedSnapshotIDError(expected, observed int64, ordinal int) error {
	return &unexpectedSnapshotIDError{expected: expected, observed: observed, ordinal: ordinal}
}

func (e *unexpectedSnapshotIDError) Error() string {
	return fmt.Sprintf(
		"%s: ordinal %d delivered barrier %d, expected %d",
		ErrUnexpectedSnapshotID, e.ordinal, e.observed, e.expected,
	)
}

func (e *unexpectedSnapshotIDError) Unwrap() error { return ErrUnexpectedSnapshotID }

// Ordinal reports which inbound edge delivered the mismatched barrier.
func (e *unexpectedSnapshotIDError) Ordinal() int { return e.ordinal }

// Expected reports the snapshot id the tasklet expected.
func (e *unexpectedSnapshotIDError) Expected() int64 { return e.expected }

// Observed reports the snapshot id actually carried by the barrier.
func (e *unexpectedSnapshotIDError) Observed() int64 { return e.observed }

// HarnessAssertionFailure is raised by the processor test driver when a
// progress or output-equality invariant fails. It is never produced outside
// the harness package.
type HarnessAssertionFailure struct {
	Message string
}

func (e *HarnessAssertionFailure) Error() string { return e.Message }
