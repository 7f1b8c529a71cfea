package geom

import "errors"

var (
	// ErrInvalidGeometry marks structurally unusable polygon input: fewer
	// than 3 distinct vertices, non-finite coordinates, or a degenerate
	// zero-area ring.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrInvalidArgument marks an out-of-domain operation argument, such
	// as a negative buffer distance.
	ErrInvalidArgument = errors.New("invalid argument")
)
