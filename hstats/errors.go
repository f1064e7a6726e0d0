package hstats

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRange    = errors.New("hstats: invalid range")
	ErrInvalidBinCount = errors.New("hstats: invalid bin count")

	ErrStartMismatch    = errors.New("hstats: starts must be equal")
	ErrEndMismatch      = errors.New("hstats: ends must be equal")
	ErrBinCountMismatch = errors.New("hstats: bin counts must be equal")
)

// RangeError is returned by New when start is not less than end, or when the
// range or its bin width is not finite. Reason is empty in the first case.
type RangeError struct {
	Start, End float64
	Reason     string
}

func (e *RangeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("hstats: range [%v, %v) %s", e.Start, e.End, e.Reason)
	}
	return fmt.Sprintf("hstats: start (%v) must be less than end (%v)", e.Start, e.End)
}

func (e *RangeError) Unwrap() error { return ErrInvalidRange }

// BinCountError is returned by New when the bin count is not positive.
type BinCountError struct {
	BinCount int
}

func (e *BinCountError) Error() string {
	return fmt.Sprintf("hstats: bin count (%d) must be greater than 0", e.BinCount)
}

func (e *BinCountError) Unwrap() error { return ErrInvalidBinCount }

// MismatchError is returned by Merge when the two histograms were not built
// with identical bounds and bin count. Field is one of "start", "end" or
// "bin_count".
type MismatchError struct {
	Field       string
	Left, Right float64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s %v != %v", e.Unwrap(), e.Field, e.Left, e.Right)
}

func (e *MismatchError) Unwrap() error {
	switch e.Field {
	case "start":
		return ErrStartMismatch
	case "end":
		return ErrEndMismatch
	}
	return ErrBinCountMismatch
}
