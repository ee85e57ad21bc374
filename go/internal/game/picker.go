package game

import "math/rand"

// AvailableFloors returns the floors of layout that are not in used, in layout order.
func AvailableFloors(layout Layout, used map[int]struct{}) []int {
	available := make([]int, 0, len(layout))
	for _, f := range layout {
		if _, taken := used[f]; taken {
			continue
		}
		available = append(available, f)
	}
	return available
}

// PickFloor selects one candidate uniformly at random.
// It returns false when there is nothing to pick from.
func PickFloor(candidates []int, rng *rand.Rand) (int, bool) {
	if len(candidates) == 0 {
		return 0, false
	}
	return candidates[rng.Intn(len(candidates))], true
}
