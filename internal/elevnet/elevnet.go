package elevnet

import (
	"errors"

	"github.com/dinamadelen/heisdispatch/internal/dispatch"
	"github.com/dinamadelen/heisdispatch/internal/logger"
)

var Log = logger.GetLogger()

const (
	BUFFER_LENGTH = 1024 //max length of a single request or response line
)

var ErrTripRejected = errors.New("trip rejected by dispatcher")

// TripHandler is implemented by elevsubmit.Submitter and dispatch.Controller.
type TripHandler interface {
	Submit(src, dest int) (dispatch.Assignment, error)
}

type TripRequest struct {
	Src  int `json:"src"`
	Dest int `json:"dest"`
}

type TripResponse struct {
	TripID string `json:"trip_id,omitempty"`
	CarID  int    `json:"car_id"`
	Score  int    `json:"score"`
	Error  string `json:"error,omitempty"`
}
