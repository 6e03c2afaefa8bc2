package elevevent

import (
	"context"

	"github.com/dinamadelen/heisdispatch/internal/logger"
)

var Log = logger.GetLogger()

// Notifier receives car and dispatch events. Cars notify while holding their
// lock, so implementations must return promptly.
type Notifier interface {
	Notify(event CarEvent)
}

type LogNotifier struct{}

func (LogNotifier) Notify(event CarEvent) {
	switch evnt := event.Value.(type) {
	case DoorOpenEvent:
		Log.Info().Int("car", evnt.CarID).Int("floor", evnt.Floor).Msg("Door opened")
	case FloorChangeEvent:
		Log.Info().Int("car", evnt.CarID).Int("from", evnt.From).Int("to", evnt.To).Msg("Floor changed")
	case DirectionChangeEvent:
		Log.Debug().Int("car", evnt.CarID).Stringer("from", evnt.From).Stringer("to", evnt.To).Msg("Direction changed")
	case TripAssignedEvent:
		Log.Info().Str("trip", evnt.TripID).Int("car", evnt.CarID).Int("src", evnt.Src).Int("dest", evnt.Dest).Int("score", evnt.Score).Msg("Trip assigned")
	default:
		Log.Warn().Msgf("Unknown event %v", event.Value)
	}
}

// ChannelNotifier forwards events to a buffered channel. Events are dropped
// with a warning when the buffer is full.
type ChannelNotifier struct {
	Events chan CarEvent
}

func NewChannelNotifier(bufferSize int) *ChannelNotifier {
	return &ChannelNotifier{Events: make(chan CarEvent, bufferSize)}
}

func (cn *ChannelNotifier) Notify(event CarEvent) {
	select {
	case cn.Events <- event:
	default:
		Log.Warn().Msgf("Event channel full, dropping %v", event.EventType())
	}
}

// MultiNotifier fans an event out to every notifier in order.
type MultiNotifier []Notifier

func (mn MultiNotifier) Notify(event CarEvent) {
	for _, notifier := range mn {
		notifier.Notify(event)
	}
}

// Forward passes buffered events on to sink until ctx is cancelled.
func (cn *ChannelNotifier) Forward(ctx context.Context, sink Notifier) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-cn.Events:
			sink.Notify(event)
		}
	}
}
