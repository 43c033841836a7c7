package particle

import "errors"

// Domain errors for layout operations.
var (
	// ErrNotFound indicates a node id with no associated body.
	ErrNotFound = errors.New("particle: body not found")

	// ErrDimensionMismatch indicates a vector of the wrong length.
	ErrDimensionMismatch = errors.New("particle: dimension mismatch")

	// ErrInvalidSettings indicates a layout setting outside its valid range.
	ErrInvalidSettings = errors.New("particle: invalid settings")

	// ErrUnknownNode indicates a link whose endpoint was never enumerated.
	ErrUnknownNode = errors.New("particle: link references unknown node")

	// ErrDuplicateNode indicates a node id enumerated more than once.
	ErrDuplicateNode = errors.New("particle: duplicate node id")
)
