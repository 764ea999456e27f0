package deconv

import "errors"

var (
	// ErrInvalidChargeRange means a charge range is zero or not a pair
	ErrInvalidChargeRange = errors.New("deconv: invalid charge range")
	// ErrChargeOutOfRange means QuickCharge was asked for charges it cannot track
	ErrChargeOutOfRange = errors.New("deconv: charge out of range")
	// ErrDuplicatePeakMz means two peaks share the same m/z
	ErrDuplicatePeakMz = errors.New("deconv: duplicate peak m/z")
	// ErrPeakIndex means a peak index is outside the peak set
	ErrPeakIndex = errors.New("deconv: invalid peak index")
)
