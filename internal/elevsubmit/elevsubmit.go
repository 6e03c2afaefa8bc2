package elevsubmit

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dinamadelen/heisdispatch/internal/dispatch"
	"github.com/dinamadelen/heisdispatch/internal/logger"
)

var Log = logger.GetLogger()

var (
	ErrFloorOutOfRange = errors.New("floor out of range")
	ErrMalformedTrip   = errors.New("malformed trip")
)

// Dispatcher is implemented by dispatch.Controller.
type Dispatcher interface {
	Submit(src, dest int) (dispatch.Assignment, error)
}

// Submitter is the entry point for external trip requests.
type Submitter struct {
	dispatcher Dispatcher
	numFloors  int
}

// NewSubmitter checks floors against [0, numFloors) before dispatching.
// numFloors of 0 forwards every trip unchecked.
func NewSubmitter(dispatcher Dispatcher, numFloors int) *Submitter {
	return &Submitter{dispatcher: dispatcher, numFloors: numFloors}
}

func (s *Submitter) Submit(src, dest int) (dispatch.Assignment, error) {
	if err := s.checkFloor(src); err != nil {
		return dispatch.Assignment{}, err
	}
	if err := s.checkFloor(dest); err != nil {
		return dispatch.Assignment{}, err
	}
	return s.dispatcher.Submit(src, dest)
}

func (s *Submitter) checkFloor(floor int) error {
	if s.numFloors > 0 && (floor < 0 || floor >= s.numFloors) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrFloorOutOfRange, floor, s.numFloors)
	}
	return nil
}

// ParseTrip parses a "<src> <dest>" line.
func ParseTrip(line string) (int, int, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: expected \"<src> <dest>\", got %q", ErrMalformedTrip, line)
	}
	src, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: source floor %q: %v", ErrMalformedTrip, fields[0], err)
	}
	dest, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: destination floor %q: %v", ErrMalformedTrip, fields[1], err)
	}
	return src, dest, nil
}

// Run reads trip lines from r until EOF or ctx is cancelled and writes one
// result line per trip to w. Blank lines and lines starting with # are skipped.
func (s *Submitter) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			Log.Warn().Msgf("Trip reader has been signaled to stop")
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			s.handleLine(line, w)
		}
	}
}

func (s *Submitter) handleLine(line string, w io.Writer) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	src, dest, err := ParseTrip(line)
	if err != nil {
		Log.Warn().Msgf("Ignoring trip line: %v", err)
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}

	assignment, err := s.Submit(src, dest)
	if err != nil {
		Log.Error().Msgf("Trip %d -> %d failed: %v", src, dest, err)
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "trip %s: %d -> %d assigned to car %d\n", assignment.TripID, src, dest, assignment.CarID)
}
