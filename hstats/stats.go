package hstats

import (
	"math"

	"golang.org/x/exp/constraints"
)

// RunningStats tracks count, min, max, mean and variance of a stream of
// values without retaining them. The zero value is ready to use.
//
// Mean and variance use Welford's update; two RunningStats are combined with
// the pooled (parallel) variance formula so partial results from disjoint
// partitions can be merged in any order.
type RunningStats[T constraints.Float] struct {
	count uint64
	min   T
	max   T
	mean  T
	m2    T // Sum of squared distances from the mean
}

// Add incorporates x into the running statistics.
func (s *RunningStats[T]) Add(x T) {
	if s.count == 0 || x < s.min {
		s.min = x
	}
	if s.count == 0 || x > s.max {
		s.max = x
	}
	s.count++
	delta := x - s.mean
	s.mean += delta / T(s.count)
	s.m2 += delta * (x - s.mean)
}

// Merge returns the statistics of the union of the samples seen by s and
// other. Neither input is modified.
func (s RunningStats[T]) Merge(other RunningStats[T]) RunningStats[T] {
	if other.count == 0 {
		return s
	}
	if s.count == 0 {
		return other
	}

	n := s.count + other.count
	na, nb, nt := T(s.count), T(other.count), T(n)
	delta := other.mean - s.mean

	merged := RunningStats[T]{
		count: n,
		min:   s.min,
		max:   s.max,
		mean:  s.mean + delta*nb/nt,
		m2:    s.m2 + other.m2 + delta*delta*na*nb/nt,
	}
	if other.min < merged.min {
		merged.min = other.min
	}
	if other.max > merged.max {
		merged.max = other.max
	}
	return merged
}

func (s *RunningStats[T]) Count() uint64 {
	return s.count
}

// Min returns the smallest value seen, or zero if nothing was added.
func (s *RunningStats[T]) Min() T {
	return s.min
}

// Max returns the largest value seen, or zero if nothing was added.
func (s *RunningStats[T]) Max() T {
	return s.max
}

// Mean returns the running mean, or zero if nothing was added.
func (s *RunningStats[T]) Mean() T {
	return s.mean
}

// Variance returns the sample variance (M2/(n-1)). Returns 0 if fewer than 2
// values were added.
func (s *RunningStats[T]) Variance() T {
	if s.count < 2 {
		return 0
	}
	return s.m2 / T(s.count-1)
}

// StdDev returns the sample standard deviation.
func (s *RunningStats[T]) StdDev() T {
	return T(math.Sqrt(float64(s.Variance())))
}
