package game

import (
	"sort"
	"strconv"
	"time"
)

// State is the phase a game session is in.
type State string

const (
	StateIdle         State = "idle"
	StateTargetShown  State = "target_shown"
	StateActive       State = "active"
	StateRoundCleared State = "round_cleared"
	StateFinished     State = "finished"
)

// Session is the mutable state of one game. It is owned by a Controller and
// never shared; readers get a Snapshot instead.
type Session struct {
	LayoutIndex  int
	UsedFloors   map[int]struct{}
	TargetFloor  *int
	StartedAt    *time.Time
	ElapsedTimes []float64
	Finished     bool
}

func newSession() Session {
	return Session{
		UsedFloors:   make(map[int]struct{}),
		ElapsedTimes: []float64{},
	}
}

// clearRound drops the per-layout bookkeeping before a new layout is played.
func (s *Session) clearRound() {
	s.UsedFloors = make(map[int]struct{})
	s.TargetFloor = nil
	s.StartedAt = nil
}

func (s *Session) usedList() []int {
	used := make([]int, 0, len(s.UsedFloors))
	for f := range s.UsedFloors {
		used = append(used, f)
	}
	sort.Ints(used)
	return used
}

// Snapshot is a read-only copy of a session, shaped for rendering.
type Snapshot struct {
	SessionID    string     `json:"session_id"`
	// Version increases with every state change; clients drop snapshots
	// older than the one they already show.
	Version      uint64     `json:"version"`
	State        State      `json:"state"`
	LayoutIndex  int        `json:"layout_index"`
	Layout       []int      `json:"layout,omitempty"`
	TargetFloor  *int       `json:"target_floor,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	UsedFloors   []int      `json:"used_floors"`
	ElapsedTimes []float64  `json:"elapsed_times"`
	Results      []string   `json:"results"`
	Finished     bool       `json:"finished"`
}

// FormatElapsed renders an elapsed time in seconds with millisecond precision.
func FormatElapsed(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
