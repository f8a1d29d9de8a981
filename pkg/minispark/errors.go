package minispark

import "errors"

// Construction-time errors: bad arguments to graph-building calls.
var (
	ErrInvalidPartitionCount = errors.New("minispark: partition count must be positive")
	ErrNoDependencies        = errors.New("minispark: transform requires at least one dependency")
	ErrNilFunction           = errors.New("minispark: transform function must not be nil")
)

// Resource-exhaustion errors: the engine could not allocate what it needed.
var (
	ErrQueueFull = errors.New("minispark: task queue rejected submission")
)

// Contract-violation errors: the caller used the engine incorrectly.
var (
	ErrEngineNotStarted = errors.New("minispark: engine not started")
	ErrEngineStopped    = errors.New("minispark: engine already stopped")
)

// Invariant-violation errors: the engine detected its own internal state
// was inconsistent. These should never occur; they exist so a corrupted
// run fails loudly instead of silently returning wrong data.
var (
	ErrMissingTaskResult = errors.New("minispark: task completed without a result")
)
