package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dinamadelen/heisdispatch/internal/elevcar"
	"github.com/dinamadelen/heisdispatch/internal/elevevent"
	"github.com/dinamadelen/heisdispatch/internal/logger"
)

var Log = logger.GetLogger()

var ErrNoCars = errors.New("no car available for trip")

type Assignment struct {
	TripID uuid.UUID
	CarID  int
	Score  int
}

// Controller assigns trips to a fixed fleet of cars. Each car is scored under
// its own lock only, so concurrent trips may see a stale view of the fleet.
type Controller struct {
	cars     []*elevcar.Car
	weights  Weights
	notifier elevevent.Notifier

	mu      sync.Mutex
	running bool

	//used for graceful shutdown
	waitGroup *sync.WaitGroup
	cancel    context.CancelFunc
}

func NewController(cars []*elevcar.Car, weights Weights, notifier elevevent.Notifier) *Controller {
	if notifier == nil {
		notifier = elevevent.LogNotifier{}
	}
	fleet := make([]*elevcar.Car, len(cars))
	copy(fleet, cars)

	return &Controller{
		cars:      fleet,
		weights:   weights,
		notifier:  notifier,
		waitGroup: &sync.WaitGroup{},
	}
}

// RequestTrip assigns the trip and returns the chosen car's id.
func (dc *Controller) RequestTrip(src, dest int) (int, error) {
	assignment, err := dc.Submit(src, dest)
	if err != nil {
		return -1, err
	}
	return assignment.CarID, nil
}

// Submit scores every car, picks the first car with the lowest score and adds
// src then dest to its stops.
func (dc *Controller) Submit(src, dest int) (Assignment, error) {
	best, bestScore := dc.findOptimalCar(src, dest)
	if best == nil {
		Log.Error().Msgf("Trip %d -> %d rejected: fleet is empty", src, dest)
		return Assignment{}, ErrNoCars
	}

	best.AddStop(src)
	best.AddStop(dest)

	assignment := Assignment{
		TripID: uuid.New(),
		CarID:  best.ID(),
		Score:  bestScore,
	}
	dc.notifier.Notify(elevevent.TripAssignedEvent{
		TripID: assignment.TripID.String(),
		CarID:  assignment.CarID,
		Src:    src,
		Dest:   dest,
		Score:  assignment.Score,
	}.Wrap())
	return assignment, nil
}

func (dc *Controller) findOptimalCar(src, dest int) (*elevcar.Car, int) {
	var best *elevcar.Car
	bestScore := 0

	for _, car := range dc.cars {
		score := Score(car.Snapshot(), src, dest, dc.weights)
		Log.Trace().Msgf("Car %d scored %d for trip %d -> %d", car.ID(), score, src, dest)
		if best == nil || score < bestScore {
			best = car
			bestScore = score
		}
	}
	return best, bestScore
}

func (dc *Controller) Cars() []*elevcar.Car {
	cars := make([]*elevcar.Car, len(dc.cars))
	copy(cars, dc.cars)
	return cars
}

func (dc *Controller) States() []elevcar.State {
	states := make([]elevcar.State, 0, len(dc.cars))
	for _, car := range dc.cars {
		states = append(states, car.State())
	}
	return states
}

// Start launches every car's movement loop.
func (dc *Controller) Start() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.running {
		Log.Error().Msg("Controller already running")
		return errors.New("controller already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	for _, car := range dc.cars {
		if err := car.Start(ctx, dc.waitGroup); err != nil {
			cancel()
			dc.waitGroup.Wait()
			return err
		}
	}
	dc.cancel = cancel
	dc.running = true

	Log.Info().Msgf("Started %d cars", len(dc.cars))
	return nil
}

// Stop signals every car and waits for each loop to finish its current tick.
// Pending stops are left in place.
func (dc *Controller) Stop() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if !dc.running {
		Log.Error().Msg("Controller not running, so cannot stop cars")
		return errors.New("controller not running")
	}

	Log.Debug().Msg("Stopping cars")
	dc.cancel()
	dc.waitGroup.Wait()
	dc.running = false

	Log.Debug().Msg("Stopped cars")
	return nil
}

// NewFleet builds numCars idle cars on floor 0 with ids 0..numCars-1.
func NewFleet(numCars int, capacity int, tickPeriod time.Duration, notifier elevevent.Notifier) []*elevcar.Car {
	cars := make([]*elevcar.Car, 0, numCars)
	for id := 0; id < numCars; id++ {
		cars = append(cars, elevcar.NewCar(id, capacity, tickPeriod, notifier))
	}
	return cars
}
