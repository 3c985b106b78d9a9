package engine

import "errors"

var (
	// ErrDeviceInitFailed is returned by New when the compute device or its
	// pipelines could not be created.
	ErrDeviceInitFailed = errors.New("device init failed")

	// ErrDeviceFailure is returned by Step when a device operation
	// (upload, dispatch, or readback) fails mid-step. Fatal to the engine;
	// the caller should not call Step again.
	ErrDeviceFailure = errors.New("device failure")

	// ErrUninitializedNeighbours is returned by Step when geometry is
	// non-empty but CalculateNeighbours was never called.
	ErrUninitializedNeighbours = errors.New("neighbours not initialized")

	// ErrWrongState is returned when an operation is invoked from a state
	// that does not allow it: Step outside Ready/Running, or AddSource
	// after stepping has begun.
	ErrWrongState = errors.New("wrong engine state")
)
