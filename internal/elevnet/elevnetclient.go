package elevnet

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xtaci/kcp-go/v5"
)

// SubmitTrip sends one trip to a TripServer and waits for the assignment.
func SubmitTrip(address string, src, dest int, timeout time.Duration) (TripResponse, error) {
	conn, err := kcp.DialWithOptions(address, nil, 0, 0)
	if err != nil {
		return TripResponse{}, fmt.Errorf("error dialing %s: %w", address, err)
	}
	defer conn.Close()
	conn.SetStreamMode(true)
	conn.SetNoDelay(1, 10, 2, 1)
	conn.SetDeadline(time.Now().Add(timeout))

	jsonData, err := json.Marshal(TripRequest{Src: src, Dest: dest})
	if err != nil {
		return TripResponse{}, fmt.Errorf("error marshalling JSON: %w", err)
	}
	if _, err := conn.Write(append(jsonData, '\n')); err != nil {
		return TripResponse{}, fmt.Errorf("error writing to KCP session: %w", err)
	}

	line, err := bufio.NewReaderSize(conn, BUFFER_LENGTH).ReadBytes('\n')
	if err != nil {
		return TripResponse{}, fmt.Errorf("error reading trip response: %w", err)
	}

	var response TripResponse
	if err := json.Unmarshal(line, &response); err != nil {
		return TripResponse{}, fmt.Errorf("error deserialising trip response: %w", err)
	}
	if response.Error != "" {
		return response, fmt.Errorf("%w: %s", ErrTripRejected, response.Error)
	}
	return response, nil
}
