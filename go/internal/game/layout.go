package game

const (
	// LayoutCount is the number of button layouts played per game.
	LayoutCount = 4
	// FloorsPerLayout is the number of floor buttons in each layout.
	FloorsPerLayout = 12

	columnHeight = FloorsPerLayout / 2
)

// Layout is the ordered sequence of floor buttons shown for one round.
// Buttons are stored as interleaved pairs: left column, right column, left, right...
type Layout []int

// GenerateLayouts builds the four fixed button layouts.
// Every call returns freshly allocated slices with identical contents.
func GenerateLayouts() []Layout {
	return []Layout{
		interleave(func(i int) (int, int) { return i + 1, i + 7 }),
		interleave(func(i int) (int, int) { return 6 - i, 12 - i }),
		interleave(func(i int) (int, int) { return i + 1, 12 - i }),
		interleave(func(i int) (int, int) { return 6 - i, i + 7 }),
	}
}

func interleave(pair func(i int) (int, int)) Layout {
	l := make(Layout, 0, FloorsPerLayout)
	for i := 0; i < columnHeight; i++ {
		left, right := pair(i)
		l = append(l, left, right)
	}
	return l
}

// Contains reports whether floor has a button in the layout.
func (l Layout) Contains(floor int) bool {
	for _, f := range l {
		if f == floor {
			return true
		}
	}
	return false
}

// Columns splits the layout back into its left and right columns.
func (l Layout) Columns() (left, right []int) {
	left = make([]int, 0, len(l)/2)
	right = make([]int, 0, len(l)/2)
	for i, f := range l {
		if i%2 == 0 {
			left = append(left, f)
		} else {
			right = append(right, f)
		}
	}
	return left, right
}
