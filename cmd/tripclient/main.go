package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/dinamadelen/heisdispatch/internal/elevnet"
	"github.com/dinamadelen/heisdispatch/internal/logger"
)

var Logger = logger.GetLoggerConfigured(zerolog.InfoLevel)

func main() {
	address := flag.String("addr", "127.0.0.1:4145", "Address of the dispatcher trip server")
	src := flag.Int("src", 0, "Source floor")
	dest := flag.Int("dest", 0, "Destination floor")
	timeout := flag.Duration("timeout", 2*time.Second, "Time to wait for the assignment")
	flag.Parse()

	response, err := elevnet.SubmitTrip(*address, *src, *dest, *timeout)
	if err != nil {
		Logger.Error().Msgf("Trip %d -> %d failed: %v", *src, *dest, err)
		os.Exit(1)
	}

	fmt.Printf("trip %s: %d -> %d assigned to car %d (score %d)\n", response.TripID, *src, *dest, response.CarID, response.Score)
}
