package numicro

import (
	"github.com/juju/errors"
)

// Error kinds reported by the driver. Callers match them with
// errors.Cause(err) == numicro.ErrX; annotations added along the way carry
// the protocol context.
var (
	// ErrNotHalted is returned when an operation requires a halted core.
	ErrNotHalted = errors.New("target not halted")

	// ErrTimeout is returned when the flash controller does not complete an
	// operation within the bounded poll.
	ErrTimeout = errors.New("timed out waiting for flash controller")

	// ErrResourceUnavailable is returned by the block writer when no target
	// working area can be allocated. The write orchestrator treats it as a
	// signal to fall back to single-word programming.
	ErrResourceUnavailable = errors.New("target working area not available")

	// ErrAlignment is returned before any hardware access when a destination
	// offset or length breaks the required alignment.
	ErrAlignment = errors.New("destination breaks required alignment")

	// ErrOperationFailed is returned when the controller or the downloaded
	// programming routine reports failure.
	ErrOperationFailed = errors.New("flash operation failed")

	// ErrUnknownPart is returned when the device ID is not in the part catalog.
	ErrUnknownPart = errors.New("unknown part id")

	// ErrUnknownGeometry is returned when no catalog region matches the
	// configured bank base.
	ErrUnknownGeometry = errors.New("no flash region matches bank base")
)
