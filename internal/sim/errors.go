package sim

import "errors"

// Errors that abort a run. The engine runs the post-integrate phase before
// returning one of these, so observers can flush what they have.
var (
	// ErrNaN indicates a NaN in a velocity, force or acceleration.
	ErrNaN = errors.New("sim: nan value detected")

	// ErrPrecisionLoss indicates dt became so small that adding it no
	// longer advances the total time.
	ErrPrecisionLoss = errors.New("sim: loss of numerical precision")

	// ErrOutOfBounds indicates a particle outside the extended bounds
	// after boundary application.
	ErrOutOfBounds = errors.New("sim: particle outside extended bounds")

	// ErrBadConfig indicates an illegal run parameter.
	ErrBadConfig = errors.New("sim: bad configuration")

	// ErrCanceled indicates the run was interrupted by its context.
	ErrCanceled = errors.New("sim: run canceled")
)
