package matching

// SelectMatch ranks scored candidates and applies the acceptance threshold.
// Ranking is stable: on equal scores the first candidate retrieved wins.
// Returns false when no candidate clears the threshold.
func SelectMatch(results []Result, threshold int) (*Result, bool) {
	var best *Result
	for i := range results {
		if best == nil || results[i].Score > best.Score {
			best = &results[i]
		}
	}
	if best == nil || best.Score < threshold {
		return nil, false
	}
	return best, true
}
