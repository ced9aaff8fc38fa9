package stats

// FindPeaks locates local maxima in a curve that exceed minHeight and
// are at least minDistance samples apart. When two peaks fall inside
// the same exclusion window the higher one wins.
func FindPeaks(data []float64, minHeight float64, minDistance int) []int {
	if len(data) < 3 {
		return []int{}
	}

	candidates := make([]int, 0)
	for i := 1; i < len(data)-1; i++ {
		if data[i] > data[i-1] && data[i] >= data[i+1] && data[i] >= minHeight {
			candidates = append(candidates, i)
		}
	}

	if minDistance <= 1 || len(candidates) < 2 {
		return candidates
	}

	// Greedy selection by height, then restore time order.
	byHeight := make([]int, len(candidates))
	copy(byHeight, candidates)
	for i := range byHeight {
		for j := i + 1; j < len(byHeight); j++ {
			if data[byHeight[j]] > data[byHeight[i]] {
				byHeight[i], byHeight[j] = byHeight[j], byHeight[i]
			}
		}
	}

	selected := make([]int, 0, len(byHeight))
	for _, candidate := range byHeight {
		ok := true
		for _, kept := range selected {
			if abs(candidate-kept) < minDistance {
				ok = false
				break
			}
		}
		if ok {
			selected = append(selected, candidate)
		}
	}

	for i := range selected {
		for j := i + 1; j < len(selected); j++ {
			if selected[j] < selected[i] {
				selected[i], selected[j] = selected[j], selected[i]
			}
		}
	}

	return selected
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
