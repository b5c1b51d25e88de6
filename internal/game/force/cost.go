package force

// Cost folds modifier deltas into a base Force cost. The result is never negative.
func Cost(base int, deltas ...int) int {
	total := base
	for _, delta := range deltas {
		total += delta
	}
	if total < 0 {
		return 0
	}
	return total
}
