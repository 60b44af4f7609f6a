package sweep

import "errors"

// Error taxonomy. Invalid input makes a generation return an absent
// result (nil mesh) and is logged at warning level so the caller can skip
// the element; nothing here is fatal to the overall pipeline.
var (
	// ErrInvalidDirection reports a primary direction with near-zero
	// length. Near-parallel primary/secondary pairs are NOT an error:
	// they are recovered via the fallback axis chain.
	ErrInvalidDirection = errors.New("sweep: invalid direction (near-zero length)")

	// ErrInvalidInput reports malformed domain input: a path with no
	// segments, a profile with fewer than three vertices, or an arc with
	// a non-positive radius.
	ErrInvalidInput = errors.New("sweep: invalid input")
)
