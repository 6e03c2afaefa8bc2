package elevcar

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dinamadelen/heisdispatch/internal/elevconsts"
	"github.com/dinamadelen/heisdispatch/internal/elevevent"
	"github.com/dinamadelen/heisdispatch/internal/logger"
)

const TEST_TICK = 5 * time.Millisecond

func newTestCar(t *testing.T) (*Car, *elevevent.ChannelNotifier) {
	_ = logger.GetLoggerConfigured(zerolog.Disabled)
	notifier := elevevent.NewChannelNotifier(1000)
	return NewCar(0, 10, TEST_TICK, notifier), notifier
}

func drainEvents(notifier *elevevent.ChannelNotifier) []elevevent.CarEvent {
	var events []elevevent.CarEvent
	for {
		select {
		case event := <-notifier.Events:
			events = append(events, event)
		default:
			return events
		}
	}
}

func checkIdleInvariant(t *testing.T, car *Car) {
	t.Helper()
	state := car.State()
	if (state.Dirn == elevconsts.Idle) != (len(state.Stops) == 0) {
		t.Errorf("Idle invariant broken: direction %v with stops %v", state.Dirn, state.Stops)
	}
}

func TestNewCar(t *testing.T) {
	car, _ := newTestCar(t)
	state := car.State()

	if state.Floor != 0 || state.Dirn != elevconsts.Idle || len(state.Stops) != 0 {
		t.Errorf("Expected car at floor 0, Idle, no stops, got %+v", state)
	}
	if car.Capacity() != 10 {
		t.Errorf("Expected capacity 10, got %d", car.Capacity())
	}
}

func TestAddStopSetsDirectionFromIdle(t *testing.T) {
	testCases := []struct {
		name     string
		floor    int
		expected elevconsts.Direction
	}{
		{"above", 4, elevconsts.Up},
		{"below", -2, elevconsts.Down},
		{"here", 0, elevconsts.Idle},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			car, _ := newTestCar(t)
			car.AddStop(tc.floor)
			if dirn := car.Snapshot().Dirn; dirn != tc.expected {
				t.Errorf("AddStop(%d) on idle car gave direction %v, expected %v", tc.floor, dirn, tc.expected)
			}
		})
	}
}

func TestAddStopKeepsDirectionWhenMoving(t *testing.T) {
	car, _ := newTestCar(t)
	car.AddStop(5)
	car.AddStop(-3)

	if dirn := car.Snapshot().Dirn; dirn != elevconsts.Up {
		t.Errorf("Expected moving car to keep direction Up, got %v", dirn)
	}
}

func TestAddStopIsIdempotent(t *testing.T) {
	car, _ := newTestCar(t)
	car.AddStop(3)
	car.AddStop(3)

	stops := car.State().Stops
	if len(stops) != 1 || stops[0] != 3 {
		t.Errorf("Expected stops [3], got %v", stops)
	}
}

func TestConcurrentAddStop(t *testing.T) {
	car, _ := newTestCar(t)
	numCallers := 50

	wg := &sync.WaitGroup{}
	for i := 1; i <= numCallers; i++ {
		wg.Add(1)
		go func(floor int) {
			defer wg.Done()
			car.AddStop(floor)
		}(i)
	}
	wg.Wait()

	stops := car.State().Stops
	if len(stops) != numCallers {
		t.Fatalf("Expected %d stops, got %d: %v", numCallers, len(stops), stops)
	}
	for i, floor := range stops {
		if floor != i+1 {
			t.Errorf("Expected stop %d at index %d, got %d", i+1, i, floor)
		}
	}
}

func TestTripFromGroundFloor(t *testing.T) {
	car, notifier := newTestCar(t)
	car.AddStop(0)
	car.AddStop(5)

	if dirn := car.Snapshot().Dirn; dirn != elevconsts.Up {
		t.Fatalf("Expected Up after AddStop(0), AddStop(5), got %v", dirn)
	}

	for tick := 1; tick <= 5; tick++ {
		car.step()
		if floor := car.Snapshot().Floor; floor != tick {
			t.Errorf("After tick %d expected floor %d, got %d", tick, tick, floor)
		}
	}

	state := car.State()
	if state.Dirn != elevconsts.Up || len(state.Stops) != 1 || state.Stops[0] != 5 {
		t.Errorf("Expected Up with stops [5] before arrival tick, got %+v", state)
	}

	car.step()
	state = car.State()
	if state.Floor != 5 || state.Dirn != elevconsts.Idle || len(state.Stops) != 0 {
		t.Errorf("Expected Idle at floor 5 with no stops, got %+v", state)
	}

	var doorFloors []int
	floorChanges := 0
	for _, event := range drainEvents(notifier) {
		switch evnt := event.Value.(type) {
		case elevevent.DoorOpenEvent:
			doorFloors = append(doorFloors, evnt.Floor)
		case elevevent.FloorChangeEvent:
			floorChanges++
			if evnt.To-evnt.From != 1 {
				t.Errorf("Expected single floor step, got %d -> %d", evnt.From, evnt.To)
			}
		}
	}
	if len(doorFloors) != 2 || doorFloors[0] != 0 || doorFloors[1] != 5 {
		t.Errorf("Expected doors to open at [0 5], got %v", doorFloors)
	}
	if floorChanges != 5 {
		t.Errorf("Expected 5 floor changes, got %d", floorChanges)
	}
}

func TestReversesWithoutMoving(t *testing.T) {
	car, _ := newTestCar(t)
	car.AddStop(2)
	car.step()
	car.step()
	car.AddStop(0)

	// Opens at 2, nothing above, flips to Down in place.
	car.step()
	snapshot := car.Snapshot()
	if snapshot.Floor != 2 || snapshot.Dirn != elevconsts.Down {
		t.Errorf("Expected Down at floor 2 after reversal tick, got %+v", snapshot)
	}

	car.step()
	car.step()
	car.step()
	state := car.State()
	if state.Floor != 0 || state.Dirn != elevconsts.Idle || len(state.Stops) != 0 {
		t.Errorf("Expected Idle at floor 0, got %+v", state)
	}
}

func TestMovingUpWithStopsAhead(t *testing.T) {
	car, _ := newTestCar(t)
	car.AddStop(3)
	car.AddStop(7)
	car.step()
	car.step()

	state := car.State()
	if state.Floor != 2 || state.Dirn != elevconsts.Up {
		t.Errorf("Expected car moving Up at floor 2, got %+v", state)
	}
	if len(state.Stops) != 2 || state.Stops[0] != 3 || state.Stops[1] != 7 {
		t.Errorf("Expected stops [3 7], got %v", state.Stops)
	}
}

func TestInvariantsHoldEveryTick(t *testing.T) {
	car, _ := newTestCar(t)
	random := rand.New(rand.NewSource(4145))

	for tick := 0; tick < 500; tick++ {
		if random.Intn(4) == 0 {
			car.AddStop(random.Intn(12))
		}
		before := car.Snapshot().Floor
		car.step()
		after := car.Snapshot().Floor

		if after-before > 1 || before-after > 1 {
			t.Fatalf("Tick %d moved from %d to %d", tick, before, after)
		}
		checkIdleInvariant(t, car)
	}
}

func TestStartAndStop(t *testing.T) {
	car, _ := newTestCar(t)
	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}

	if err := car.Start(ctx, wg); err != nil {
		t.Fatalf("Expected no error starting car, got %v", err)
	}
	if err := car.Start(ctx, wg); err == nil {
		t.Errorf("Expected error starting a running car, got nil")
	}

	car.AddStop(3)
	deadline := time.Now().Add(100 * TEST_TICK)
	for time.Now().Before(deadline) {
		state := car.State()
		if state.Floor == 3 && state.Dirn == elevconsts.Idle {
			break
		}
		time.Sleep(TEST_TICK)
	}

	cancel()
	wg.Wait()

	state := car.State()
	if state.Floor != 3 || state.Dirn != elevconsts.Idle || len(state.Stops) != 0 {
		t.Errorf("Expected car idle at floor 3 after running, got %+v", state)
	}
}
