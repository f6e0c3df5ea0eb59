package math

// AbsDiff returns the absolute difference between a and b, used by
// ReaderWriterState.GapCount as a cheap highest-minus-received health
// signal without branching on which side is larger at the call site.
func AbsDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}
