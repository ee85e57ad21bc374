package game

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLayouts(t *testing.T) {
	want := []Layout{
		{1, 7, 2, 8, 3, 9, 4, 10, 5, 11, 6, 12},
		{6, 12, 5, 11, 4, 10, 3, 9, 2, 8, 1, 7},
		{1, 12, 2, 11, 3, 10, 4, 9, 5, 8, 6, 7},
		{6, 7, 5, 8, 4, 9, 3, 10, 2, 11, 1, 12},
	}

	got := GenerateLayouts()
	require.Len(t, got, LayoutCount)
	for i := range want {
		assert.Equal(t, want[i], got[i], "layout %d", i)
	}
}

func TestGenerateLayouts_EachIsPermutation(t *testing.T) {
	for i, l := range GenerateLayouts() {
		floors := append([]int(nil), l...)
		sort.Ints(floors)
		assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, floors, "layout %d", i)
	}
}

func TestGenerateLayouts_Idempotent(t *testing.T) {
	first := GenerateLayouts()
	first[0][0] = 99

	second := GenerateLayouts()
	third := GenerateLayouts()
	assert.Equal(t, second, third)
	assert.Equal(t, 1, second[0][0], "callers must get their own copy")
}

func TestLayout_Contains(t *testing.T) {
	l := GenerateLayouts()[2]
	assert.True(t, l.Contains(1))
	assert.True(t, l.Contains(12))
	assert.False(t, l.Contains(0))
	assert.False(t, l.Contains(13))
}

func TestLayout_Columns(t *testing.T) {
	left, right := GenerateLayouts()[3].Columns()
	assert.Equal(t, []int{6, 5, 4, 3, 2, 1}, left)
	assert.Equal(t, []int{7, 8, 9, 10, 11, 12}, right)
}
