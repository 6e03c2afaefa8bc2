package elevevent

import (
	"github.com/dinamadelen/heisdispatch/internal/elevconsts"
)

type CarEvent struct {
	//Golang doesnt support union types,
	//so we have to pass any of the below
	//structs
	Value any
}

type DoorOpenEvent struct {
	CarID int
	Floor int
}

func (doe DoorOpenEvent) Wrap() CarEvent {
	return CarEvent{Value: doe}
}

type FloorChangeEvent struct {
	CarID int
	From  int
	To    int
}

func (fce FloorChangeEvent) Wrap() CarEvent {
	return CarEvent{Value: fce}
}

type DirectionChangeEvent struct {
	CarID int
	From  elevconsts.Direction
	To    elevconsts.Direction
}

func (dce DirectionChangeEvent) Wrap() CarEvent {
	return CarEvent{Value: dce}
}

type TripAssignedEvent struct {
	TripID string
	CarID  int
	Src    int
	Dest   int
	Score  int
}

func (tae TripAssignedEvent) Wrap() CarEvent {
	return CarEvent{Value: tae}
}

func (e *CarEvent) EventType() string {
	switch e.Value.(type) {
	case DoorOpenEvent:
		return "DoorOpenEvent"
	case FloorChangeEvent:
		return "FloorChangeEvent"
	case DirectionChangeEvent:
		return "DirectionChangeEvent"
	case TripAssignedEvent:
		return "TripAssignedEvent"
	default:
		return "UnknownEvent"
	}
}
