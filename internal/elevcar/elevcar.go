package elevcar

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/tiendc/go-deepcopy"

	"github.com/dinamadelen/heisdispatch/internal/elevconsts"
	"github.com/dinamadelen/heisdispatch/internal/elevevent"
	"github.com/dinamadelen/heisdispatch/internal/logger"
)

var Log = logger.GetLogger()

// Car is one elevator unit. The car owns its floor, direction and stop set;
// other callers may only add stops.
type Car struct {
	id       int
	capacity int //tracked, never enforced

	mu    sync.Mutex
	floor int
	dirn  elevconsts.Direction
	stops map[int]struct{}

	tickPeriod time.Duration
	notifier   elevevent.Notifier
	running    bool
}

// Snapshot is the part of a car's state the dispatcher scores against.
type Snapshot struct {
	ID    int
	Floor int
	Dirn  elevconsts.Direction
}

type State struct {
	ID       int                  `json:"id"`
	Capacity int                  `json:"capacity"`
	Floor    int                  `json:"floor"`
	Dirn     elevconsts.Direction `json:"direction"`
	Stops    []int                `json:"stops"`
}

func NewCar(id int, capacity int, tickPeriod time.Duration, notifier elevevent.Notifier) *Car {
	if notifier == nil {
		notifier = elevevent.LogNotifier{}
	}
	if tickPeriod <= 0 {
		tickPeriod = elevconsts.DEFAULT_TICK_PERIOD
	}
	return &Car{
		id:         id,
		capacity:   capacity,
		floor:      0,
		dirn:       elevconsts.Idle,
		stops:      make(map[int]struct{}),
		tickPeriod: tickPeriod,
		notifier:   notifier,
	}
}

func (c *Car) ID() int {
	return c.id
}

func (c *Car) Capacity() int {
	return c.capacity
}

// AddStop inserts floor into the stop set. An idle car turns towards the new
// stop, or stays idle when it is already there and opens on the next tick.
func (c *Car) AddStop(floor int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stops[floor] = struct{}{}

	if c.dirn == elevconsts.Idle {
		switch {
		case floor > c.floor:
			c.setDirection(elevconsts.Up)
		case floor < c.floor:
			c.setDirection(elevconsts.Down)
		}
	}
}

func (c *Car) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{ID: c.id, Floor: c.floor, Dirn: c.dirn}
}

func (c *Car) State() State {
	var stops map[int]struct{}

	c.mu.Lock()
	state := State{ID: c.id, Capacity: c.capacity, Floor: c.floor, Dirn: c.dirn}
	err := deepcopy.Copy(&stops, c.stops)
	c.mu.Unlock()

	if err != nil {
		Log.Error().Msgf("Car %d: error copying stops: %v", c.id, err)
	}

	state.Stops = make([]int, 0, len(stops))
	for floor := range stops {
		state.Stops = append(state.Stops, floor)
	}
	slices.Sort(state.Stops)
	return state
}

// Start launches the movement loop. The loop runs one step per tick until ctx
// is cancelled; the tick in progress always completes.
func (c *Car) Start(ctx context.Context, waitGroup *sync.WaitGroup) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("car is already running")
	}
	c.running = true
	c.mu.Unlock()

	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		timeTicker := time.NewTicker(c.tickPeriod)
		defer timeTicker.Stop()

		Log.Debug().Msgf("Car %d movement loop started, tick %v", c.id, c.tickPeriod)
		for {
			select {
			case <-ctx.Done():
				Log.Debug().Msgf("Car %d movement loop has been signaled to stop", c.id)
				c.mu.Lock()
				c.running = false
				c.mu.Unlock()
				return
			case <-timeTicker.C:
				c.step()
			}
		}
	}()
	return nil
}

func (c *Car) step() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.stops[c.floor]; ok {
		c.notifier.Notify(elevevent.DoorOpenEvent{CarID: c.id, Floor: c.floor}.Wrap())
		delete(c.stops, c.floor)
	}

	if len(c.stops) == 0 {
		c.setDirection(elevconsts.Idle)
		return
	}

	c.moveNextStep()
}

// moveNextStep looks one step ahead: keep going while any stop lies ahead,
// otherwise reverse without moving this tick.
func (c *Car) moveNextStep() {
	switch c.dirn {
	case elevconsts.Up:
		if c.hasStopAbove() {
			c.moveTo(c.floor + 1)
		} else {
			c.setDirection(elevconsts.Down)
		}
	case elevconsts.Down:
		if c.hasStopBelow() {
			c.moveTo(c.floor - 1)
		} else {
			c.setDirection(elevconsts.Up)
		}
	case elevconsts.Idle:
		// only reachable if stops were added without turning the car
		if c.hasStopAbove() {
			c.setDirection(elevconsts.Up)
		} else {
			c.setDirection(elevconsts.Down)
		}
	}
}

func (c *Car) hasStopAbove() bool {
	for floor := range c.stops {
		if floor > c.floor {
			return true
		}
	}
	return false
}

func (c *Car) hasStopBelow() bool {
	for floor := range c.stops {
		if floor < c.floor {
			return true
		}
	}
	return false
}

func (c *Car) moveTo(floor int) {
	previous := c.floor
	c.floor = floor
	c.notifier.Notify(elevevent.FloorChangeEvent{CarID: c.id, From: previous, To: floor}.Wrap())
}

func (c *Car) setDirection(dirn elevconsts.Direction) {
	if c.dirn == dirn {
		return
	}
	previous := c.dirn
	c.dirn = dirn
	c.notifier.Notify(elevevent.DirectionChangeEvent{CarID: c.id, From: previous, To: dirn}.Wrap())
}
