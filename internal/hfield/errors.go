package hfield

import "errors"

var (
	// ErrSize is returned for non-positive or mismatched dimensions.
	ErrSize = errors.New("incompatible raster size")
	// ErrComplex is returned when an operation needs a real raster.
	ErrComplex = errors.New("raster is complex")
	// ErrNotComplex is returned when an operation needs a complex raster.
	ErrNotComplex = errors.New("raster is not complex")
	// ErrBounds is returned for offsets or rectangles outside the raster.
	ErrBounds = errors.New("out of bounds")
	// ErrConstant is returned when a degenerate constant raster cannot be processed.
	ErrConstant = errors.New("raster is constant")
	// ErrDivZero is returned for a division by a zero factor.
	ErrDivZero = errors.New("division by zero")
	// ErrParam is returned for a parameter outside its valid range.
	ErrParam = errors.New("invalid parameter")
)
