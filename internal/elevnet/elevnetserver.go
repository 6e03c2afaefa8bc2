package elevnet

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/xtaci/kcp-go/v5"
)

const IDLE_SESSION_TIMEOUT = 30 * time.Second

type TripServer struct {
	address  string        //internal variable
	handler  TripHandler   //internal variable
	listener *kcp.Listener //internal variable
}

func NewTripServer(address string, handler TripHandler) *TripServer {
	return &TripServer{
		address: address,
		handler: handler,
	}
}

// Start listens for trip requests until ctx is cancelled. Every session runs in
// its own goroutine registered on waitGroup.
func (ts *TripServer) Start(ctx context.Context, waitGroup *sync.WaitGroup) error {
	if ts.listener != nil {
		return errors.New("trip server is already listening")
	}
	if ts.handler == nil {
		return errors.New("trip handler is nil")
	}

	listener, err := kcp.ListenWithOptions(ts.address, nil, 0, 0)
	if err != nil {
		return fmt.Errorf("error creating KCP listener on %s: %w", ts.address, err)
	}
	ts.listener = listener

	waitGroup.Add(2)
	go func() {
		defer waitGroup.Done()
		<-ctx.Done()
		Log.Info().Msgf("Stopping trip server on %v...", listener.Addr())
		listener.Close()
	}()

	go func() {
		defer waitGroup.Done()
		for {
			conn, err := listener.AcceptKCP()
			if err != nil {
				if ctx.Err() == nil {
					Log.Error().Msgf("Error accepting KCP session: %v", err)
				}
				return
			}
			conn.SetStreamMode(true)
			conn.SetNoDelay(1, 10, 2, 1)

			waitGroup.Add(1)
			go func() {
				defer waitGroup.Done()
				ts.serve(ctx, conn)
			}()
		}
	}()

	Log.Info().Msgf("Trip server listening on %v", listener.Addr())
	return nil
}

func (ts *TripServer) Addr() string {
	if ts.listener == nil {
		return ts.address
	}
	return ts.listener.Addr().String()
}

func (ts *TripServer) serve(ctx context.Context, conn *kcp.UDPSession) {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	Log.Debug().Msgf("Trip session opened from %v", conn.RemoteAddr())
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, BUFFER_LENGTH), BUFFER_LENGTH)

	for {
		conn.SetReadDeadline(time.Now().Add(IDLE_SESSION_TIMEOUT))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil && ctx.Err() == nil {
				Log.Debug().Msgf("Trip session from %v closed: %v", conn.RemoteAddr(), err)
			}
			return
		}

		response := ts.handleRequest(scanner.Bytes())
		jsonData, err := json.Marshal(response)
		if err != nil {
			Log.Error().Msgf("Error marshalling JSON: %v", err)
			return
		}
		if _, err := conn.Write(append(jsonData, '\n')); err != nil {
			Log.Error().Msgf("Error writing to KCP session: %v", err)
			return
		}
	}
}

func (ts *TripServer) handleRequest(line []byte) TripResponse {
	var request TripRequest
	if err := json.Unmarshal(line, &request); err != nil {
		Log.Warn().Msgf("Error deserialising trip request: %v", err)
		return TripResponse{CarID: -1, Error: fmt.Sprintf("malformed request: %v", err)}
	}

	assignment, err := ts.handler.Submit(request.Src, request.Dest)
	if err != nil {
		return TripResponse{CarID: -1, Error: err.Error()}
	}
	return TripResponse{
		TripID: assignment.TripID.String(),
		CarID:  assignment.CarID,
		Score:  assignment.Score,
	}
}
