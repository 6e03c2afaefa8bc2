package dispatch

import (
	"github.com/dinamadelen/heisdispatch/internal/elevcar"
	"github.com/dinamadelen/heisdispatch/internal/elevconsts"
)

// Weights are the fixed penalties added when a car's current sweep does not
// fit the requested trip.
type Weights struct {
	// SoftPenalty applies to a car heading down towards an upward request.
	SoftPenalty int
	// HardPenalty applies to a car that must finish its sweep before it can turn back.
	HardPenalty int
}

func DefaultWeights() Weights {
	return Weights{
		SoftPenalty: elevconsts.DEFAULT_SOFT_PENALTY,
		HardPenalty: elevconsts.DEFAULT_HARD_PENALTY,
	}
}

// Score estimates the cost for the car in snapshot to serve a trip from src to
// dest. Lower is better.
func Score(snapshot elevcar.Snapshot, src, dest int, weights Weights) int {
	floor := snapshot.Floor

	switch {
	case snapshot.Dirn == elevconsts.Idle:
		return abs(dest - src)
	case snapshot.Dirn == elevconsts.Up && src >= floor:
		return src - floor
	case snapshot.Dirn == elevconsts.Down && src <= floor:
		if elevconsts.DirectionOfTrip(src, dest) == elevconsts.Down {
			return floor - src
		}
		return floor - src + weights.SoftPenalty
	default:
		return abs(floor-src) + weights.HardPenalty
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
