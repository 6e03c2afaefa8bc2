package elevconsts

import "time"

const (
	DEFAULT_NUM_CARS     = 2
	DEFAULT_CAPACITY     = 10
	DEFAULT_TICK_PERIOD  = time.Second
	DEFAULT_SOFT_PENALTY = 5
	DEFAULT_HARD_PENALTY = 20
	DEFAULT_EVENT_BUFFER = 64
)

type Direction int

func (d Direction) String() string {
	switch d {
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Idle:
		return "Idle"
	default:
		return "Undefined"
	}
}

const (
	Down Direction = -1
	Idle Direction = 0
	Up   Direction = 1
)

// DirectionOfTrip is Up when dest lies above src and Down otherwise, including src == dest.
func DirectionOfTrip(src, dest int) Direction {
	if dest > src {
		return Up
	}
	return Down
}
