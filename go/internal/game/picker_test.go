package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailableFloors(t *testing.T) {
	l := GenerateLayouts()[0]

	assert.Equal(t, []int(l), AvailableFloors(l, nil))

	used := map[int]struct{}{7: {}, 12: {}}
	assert.Equal(t, []int{1, 2, 8, 3, 9, 4, 10, 5, 11, 6}, AvailableFloors(l, used))
}

func TestAvailableFloors_AllUsed(t *testing.T) {
	l := GenerateLayouts()[1]
	used := make(map[int]struct{})
	for _, f := range l {
		used[f] = struct{}{}
	}
	assert.Empty(t, AvailableFloors(l, used))
}

func TestPickFloor(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, ok := PickFloor(nil, rng)
	assert.False(t, ok)

	f, ok := PickFloor([]int{5}, rng)
	assert.True(t, ok)
	assert.Equal(t, 5, f)
}

func TestPickFloor_CoversCandidates(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	candidates := []int{3, 9, 4}
	seen := make(map[int]int)

	for i := 0; i < 300; i++ {
		f, ok := PickFloor(candidates, rng)
		assert.True(t, ok)
		seen[f]++
	}

	assert.Len(t, seen, len(candidates))
	for _, c := range candidates {
		assert.Greater(t, seen[c], 50, "floor %d picked too rarely", c)
	}
}
