package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/dinamadelen/heisdispatch/internal/dispatch"
	"github.com/dinamadelen/heisdispatch/internal/elevconfig"
	"github.com/dinamadelen/heisdispatch/internal/elevevent"
	"github.com/dinamadelen/heisdispatch/internal/elevmetadata"
	"github.com/dinamadelen/heisdispatch/internal/elevnet"
	"github.com/dinamadelen/heisdispatch/internal/elevsubmit"
	"github.com/dinamadelen/heisdispatch/internal/elevutils"
	"github.com/dinamadelen/heisdispatch/internal/logger"
)

var Logger = logger.GetLoggerConfigured(zerolog.InfoLevel)

func main() {
	args := elevutils.ProcessCmdArgs()

	config, err := elevconfig.Load(args.ConfigPath)
	if err != nil {
		Logger.Fatal().Msgf("Error loading config: %v", err)
	}
	if err := config.ApplyEnvFile(args.EnvPath); err != nil {
		Logger.Fatal().Msgf("Error applying env file: %v", err)
	}
	if args.ListenAddress != "" {
		config.ListenAddress = args.ListenAddress
	}
	if err := config.Validate(); err != nil {
		Logger.Fatal().Msgf("%v", err)
	}
	if err := logger.SetLevel(config.LogLevel); err != nil {
		Logger.Fatal().Msgf("%v", err)
	}

	// Starting Programme
	Logger.Info().Msg("Starting Dispatcher Programme")

	metaData := elevmetadata.NewFleetMetaData(elevutils.GetGitHash(), args.Identifier, config.NumCars, config.Capacity, config.ListenAddress)
	Logger.Info().Msgf("Fleet: %v", metaData.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	wg := &sync.WaitGroup{}

	// Cars notify under their lock, so logging happens off a buffered channel.
	var notifier elevevent.Notifier = elevevent.LogNotifier{}
	if config.EventBuffer > 0 {
		events := elevevent.NewChannelNotifier(config.EventBuffer)
		wg.Add(1)
		go func() {
			defer wg.Done()
			events.Forward(ctx, elevevent.LogNotifier{})
		}()
		notifier = events
	}

	cars := dispatch.NewFleet(config.NumCars, config.Capacity, config.TickPeriod, notifier)
	weights := dispatch.Weights{SoftPenalty: config.SoftPenalty, HardPenalty: config.HardPenalty}
	controller := dispatch.NewController(cars, weights, notifier)
	submitter := elevsubmit.NewSubmitter(controller, config.NumFloors)

	if err := controller.Start(); err != nil {
		Logger.Fatal().Msgf("Error starting cars: %v", err)
	}

	if config.ListenAddress != "" {
		server := elevnet.NewTripServer(config.ListenAddress, submitter)
		if err := server.Start(ctx, wg); err != nil {
			Logger.Fatal().Msgf("Error starting trip server: %v", err)
		}
	}

	if args.ReadStdin {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := submitter.Run(ctx, os.Stdin, os.Stdout); err != nil {
				Logger.Error().Msgf("Error reading trips from stdin: %v", err)
			}
			Logger.Info().Msg("Stopped reading trips from stdin")
		}()
	}

	<-ctx.Done()
	Logger.Info().Msg("Shutting down")
	stop()

	wg.Wait()
	if err := controller.Stop(); err != nil {
		Logger.Error().Msgf("Error stopping cars: %v", err)
	}
	for _, state := range controller.States() {
		if len(state.Stops) > 0 {
			Logger.Warn().Msgf("Car %d stopped at floor %d with pending stops %v", state.ID, state.Floor, state.Stops)
		}
	}
}
