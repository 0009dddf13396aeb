package grid

import "sort"

// Direction is the sort order of a coordinate axis.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

// Locate returns the insertion index of target into a sorted axis.
//
// For an ascending axis the result i satisfies axis[i-1] <= target < axis[i],
// for a descending axis axis[i-1] >= target > axis[i]. Targets outside the
// axis clamp to 0 or len(axis).
func Locate(axis []float64, target float64, dir Direction) int {
	if dir == Descending {
		return sort.Search(len(axis), func(i int) bool { return axis[i] < target })
	}
	return sort.Search(len(axis), func(i int) bool { return axis[i] > target })
}

// Nearest returns the index of the axis entry closest to target, always
// within [0, len(axis)-1]. It returns -1 for an empty axis.
func Nearest(axis []float64, target float64, dir Direction) int {
	n := len(axis)
	if n == 0 {
		return -1
	}
	i := Locate(axis, target, dir)
	switch {
	case i <= 0:
		return 0
	case i >= n:
		return n - 1
	}
	// axis[i-1] and axis[i] bracket target
	if abs(target-axis[i-1]) <= abs(axis[i]-target) {
		return i - 1
	}
	return i
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
