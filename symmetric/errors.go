package symmetric

import (
	"errors"
	"fmt"

	"github.com/hupe1980/symmgo/symmetry"
)

var (
	// ErrEmptyChargemap is returned by BlockIndex.Check when the index
	// has no charges at all.
	ErrEmptyChargemap = errors.New("block index has an empty chargemap")

	// ErrNotFused is returned by Unfuse when the axis carries no fuse
	// metadata to invert.
	ErrNotFused = errors.New("axis is not a fused index")

	// ErrSymmetryMismatch is returned when two arrays with different
	// symmetry groups are combined.
	ErrSymmetryMismatch = errors.New("operands have different symmetries")
)

// ErrChargeNotFound indicates a chargemap lookup for an absent charge.
type ErrChargeNotFound struct {
	Charge symmetry.Charge
}

func (e *ErrChargeNotFound) Error() string {
	return fmt.Sprintf("charge %d not present in chargemap", e.Charge)
}

// ErrInvalidDimension indicates a non-positive block dimension.
type ErrInvalidDimension struct {
	Charge    symmetry.Charge
	Dimension int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension %d for charge %d", e.Dimension, e.Charge)
}

// ErrAxisOutOfRange indicates an axis argument outside [0, ndim).
type ErrAxisOutOfRange struct {
	Axis int
	NDim int
}

func (e *ErrAxisOutOfRange) Error() string {
	return fmt.Sprintf("axis %d out of range for rank-%d array", e.Axis, e.NDim)
}

// ErrAxesLengthMismatch indicates contracted axis lists of unequal length.
type ErrAxesLengthMismatch struct {
	LenA int
	LenB int
}

func (e *ErrAxesLengthMismatch) Error() string {
	return fmt.Sprintf("contracted axis lists have unequal lengths %d and %d", e.LenA, e.LenB)
}

// ErrIndexMismatch indicates a contraction pairing of incompatible
// indices (chargemaps differ or flows are not opposite).
type ErrIndexMismatch struct {
	AxisA int
	AxisB int
}

func (e *ErrIndexMismatch) Error() string {
	return fmt.Sprintf("axis %d is not contractible with axis %d: chargemaps must match and flows must be opposite", e.AxisA, e.AxisB)
}

// ErrSectorRank indicates a sector whose length disagrees with the
// array rank.
type ErrSectorRank struct {
	Sector Sector
	NDim   int
}

func (e *ErrSectorRank) Error() string {
	return fmt.Sprintf("sector %v has %d charges, want %d", e.Sector, len(e.Sector), e.NDim)
}

// ErrChargeViolation indicates a stored sector that does not combine to
// the array's total charge.
type ErrChargeViolation struct {
	Sector Sector
	Want   symmetry.Charge
	Got    symmetry.Charge
}

func (e *ErrChargeViolation) Error() string {
	return fmt.Sprintf("sector %v combines to charge %d, want total %d", e.Sector, e.Got, e.Want)
}

// ErrBlockShape indicates a stored block whose shape disagrees with the
// per-axis dimensions of its sector.
type ErrBlockShape struct {
	Sector Sector
	Want   []int
	Got    []int
}

func (e *ErrBlockShape) Error() string {
	return fmt.Sprintf("block for sector %v has shape %v, want %v", e.Sector, e.Got, e.Want)
}
