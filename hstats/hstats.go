// Package hstats implements a fixed-width streaming histogram that also keeps
// running summary statistics of every sample it sees.
//
// A Histogram is not safe for concurrent use. To ingest in parallel, build one
// Histogram per partition of the input and combine them with Merge.
package hstats

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

const (
	DefaultBarChar   = "░"
	DefaultPrecision = 2
)

// Bin is a half-open range [Lower, Upper) and the number of samples in it.
type Bin[T constraints.Float] struct {
	Lower T
	Upper T
	Count uint64
}

// Histogram bins samples into binCount equal ranges over [start, end).
// Samples below start are counted as underflow, samples at or above end as
// overflow and NaN samples as invalid.
type Histogram[T constraints.Float] struct {
	start    T
	end      T
	binCount int
	binWidth T

	bins      []uint64
	underflow uint64
	overflow  uint64
	invalid   uint64
	stats     RunningStats[T]

	precision int
	barChar   string
}

// New returns an empty histogram over [start, end) with binCount bins.
func New[T constraints.Float](start, end T, binCount int) (*Histogram[T], error) {
	if !(start < end) {
		return nil, &RangeError{Start: float64(start), End: float64(end)}
	}
	if math.IsInf(float64(start), 0) || math.IsInf(float64(end), 0) {
		return nil, &RangeError{Start: float64(start), End: float64(end), Reason: "must be finite"}
	}
	if binCount < 1 {
		return nil, &BinCountError{BinCount: binCount}
	}
	// The span can overflow T, and a tiny span can underflow to a zero width.
	binWidth := (end - start) / T(binCount)
	if math.IsInf(float64(binWidth), 0) || binWidth <= 0 {
		return nil, &RangeError{
			Start:  float64(start),
			End:    float64(end),
			Reason: fmt.Sprintf("over %d bins has no finite positive bin width", binCount),
		}
	}
	return &Histogram[T]{
		start:     start,
		end:       end,
		binCount:  binCount,
		binWidth:  binWidth,
		bins:      make([]uint64, binCount),
		precision: DefaultPrecision,
		barChar:   DefaultBarChar,
	}, nil
}

// MustNew is like New but panics if the arguments are invalid.
func MustNew[T constraints.Float](start, end T, binCount int) *Histogram[T] {
	h, err := New(start, end, binCount)
	if err != nil {
		panic(err)
	}
	return h
}

// Add records value.
func (h *Histogram[T]) Add(value T) {
	if math.IsNaN(float64(value)) {
		h.invalid++
		return
	}
	h.stats.Add(value)

	switch {
	case value < h.start:
		h.underflow++
	case value >= h.end:
		h.overflow++
	default:
		h.bins[h.index(value)]++
	}
}

// index returns the bin for a value in [start, end). Rounding can push the
// quotient of values just below end up to binCount, so it is clamped.
func (h *Histogram[T]) index(value T) int {
	i := int(math.Floor(float64((value - h.start) / h.binWidth)))
	if i < 0 {
		return 0
	}
	if i >= h.binCount {
		return h.binCount - 1
	}
	return i
}

// Merge returns a new histogram holding the samples of both h and other. The
// two must have been created with identical start, end and bin count. The
// result keeps the display settings of h.
func (h *Histogram[T]) Merge(other *Histogram[T]) (*Histogram[T], error) {
	if h.start != other.start {
		return nil, &MismatchError{Field: "start", Left: float64(h.start), Right: float64(other.start)}
	}
	if h.end != other.end {
		return nil, &MismatchError{Field: "end", Left: float64(h.end), Right: float64(other.end)}
	}
	if h.binCount != other.binCount {
		return nil, &MismatchError{Field: "bin_count", Left: float64(h.binCount), Right: float64(other.binCount)}
	}

	merged := &Histogram[T]{
		start:     h.start,
		end:       h.end,
		binCount:  h.binCount,
		binWidth:  h.binWidth,
		bins:      make([]uint64, h.binCount),
		underflow: h.underflow + other.underflow,
		overflow:  h.overflow + other.overflow,
		invalid:   h.invalid + other.invalid,
		stats:     h.stats.Merge(other.stats),
		precision: h.precision,
		barChar:   h.barChar,
	}
	for i := range merged.bins {
		merged.bins[i] = h.bins[i] + other.bins[i]
	}
	return merged, nil
}

// MustMerge is like Merge but panics if the histograms are incompatible.
func (h *Histogram[T]) MustMerge(other *Histogram[T]) *Histogram[T] {
	merged, err := h.Merge(other)
	if err != nil {
		panic(err)
	}
	return merged
}

func (h *Histogram[T]) Start() T      { return h.start }
func (h *Histogram[T]) End() T        { return h.end }
func (h *Histogram[T]) BinCount() int { return h.binCount }

// BinWidth returns (end - start) / binCount.
func (h *Histogram[T]) BinWidth() T { return h.binWidth }

func (h *Histogram[T]) Underflow() uint64 { return h.underflow }
func (h *Histogram[T]) Overflow() uint64  { return h.overflow }

// Invalid returns the number of NaN samples. They are not part of Count and
// do not affect the statistics.
func (h *Histogram[T]) Invalid() uint64 { return h.invalid }

// Bins returns the underflow range, every interior bin and the overflow
// range, in that order.
func (h *Histogram[T]) Bins() []Bin[T] {
	bins := make([]Bin[T], 0, h.binCount+2)
	bins = append(bins, Bin[T]{T(math.Inf(-1)), h.start, h.underflow})

	lower := h.start
	for i, count := range h.bins {
		upper := h.end
		if i < h.binCount-1 {
			upper = h.start + T(i+1)*h.binWidth
		}
		bins = append(bins, Bin[T]{lower, upper, count})
		lower = upper
	}

	return append(bins, Bin[T]{h.end, T(math.Inf(1)), h.overflow})
}

// Count returns the number of non-NaN samples added, including underflow and
// overflow.
func (h *Histogram[T]) Count() uint64 { return h.stats.Count() }

// The statistics below are zero when Count is zero.

func (h *Histogram[T]) Min() T      { return h.stats.Min() }
func (h *Histogram[T]) Max() T      { return h.stats.Max() }
func (h *Histogram[T]) Mean() T     { return h.stats.Mean() }
func (h *Histogram[T]) Variance() T { return h.stats.Variance() }
func (h *Histogram[T]) StdDev() T   { return h.stats.StdDev() }

// WithPrecision sets the number of decimals used when rendering.
func (h *Histogram[T]) WithPrecision(precision int) *Histogram[T] {
	if precision < 0 {
		precision = 0
	}
	h.precision = precision
	return h
}

// WithBarChar sets the string repeated to draw the bars when rendering.
func (h *Histogram[T]) WithBarChar(barChar string) *Histogram[T] {
	h.barChar = barChar
	return h
}

func (h *Histogram[T]) Precision() int  { return h.precision }
func (h *Histogram[T]) BarChar() string { return h.barChar }
