package conversation

// Boundary is the split of a session's turn history into a committable,
// cacheable prefix and a volatile fresh suffix.
type Boundary struct {
	// Prefix holds turns old enough to mark for provider-side caching.
	Prefix []Turn
	// Suffix holds the most recent turns, always re-sent fresh.
	Suffix []Turn
	// Point is the partition index: history[:Point] is the prefix.
	Point int
}

// SplitHistory partitions a turn history with freshness window k: the last k
// turns stay fresh, everything before them is committable. The point is
// max(0, len-k), so it only grows as turns accumulate and the serialized
// prefix for a session is always a prefix of every later one. That
// monotonicity is what keeps the provider-side cache valid across turns:
// once a turn leaves the freshness window it is never re-serialized
// differently.
//
// Histories shorter than k produce an empty prefix, which is valid: nothing
// is marked for caching yet.
func SplitHistory(history []Turn, k int) Boundary {
	if k < 0 {
		k = 0
	}
	point := len(history) - k
	if point < 0 {
		point = 0
	}
	return Boundary{
		Prefix: history[:point],
		Suffix: history[point:],
		Point:  point,
	}
}
