package linalg

import "errors"

var (
	// ErrSingular is returned when a matrix that must be inverted has a
	// determinant within eps of zero.
	ErrSingular = errors.New("linalg: singular matrix")

	// ErrDegenerateBasis is returned when plane directions are zero or
	// parallel.
	ErrDegenerateBasis = errors.New("linalg: degenerate plane basis")
)
