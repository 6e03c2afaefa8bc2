package elevconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dinamadelen/heisdispatch/internal/elevconsts"
	"github.com/dinamadelen/heisdispatch/internal/logger"
)

var Log = logger.GetLogger()

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	NumCars       int           `yaml:"num_cars"`
	Capacity      int           `yaml:"capacity"`
	NumFloors     int           `yaml:"num_floors"` //0 disables floor checks at the submitter
	TickPeriod    time.Duration `yaml:"tick_period"`
	SoftPenalty   int           `yaml:"soft_penalty"`
	HardPenalty   int           `yaml:"hard_penalty"`
	ListenAddress string        `yaml:"listen_address"`
	EventBuffer   int           `yaml:"event_buffer"`
	LogLevel      string        `yaml:"log_level"`
}

func Default() Config {
	return Config{
		NumCars:     elevconsts.DEFAULT_NUM_CARS,
		Capacity:    elevconsts.DEFAULT_CAPACITY,
		NumFloors:   0,
		TickPeriod:  elevconsts.DEFAULT_TICK_PERIOD,
		SoftPenalty: elevconsts.DEFAULT_SOFT_PENALTY,
		HardPenalty: elevconsts.DEFAULT_HARD_PENALTY,
		EventBuffer: elevconsts.DEFAULT_EVENT_BUFFER,
		LogLevel:    "info",
	}
}

// Load reads a YAML file on top of the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return c, fmt.Errorf("error opening config file: %w", err)
	}
	defer file.Close()

	err = yaml.NewDecoder(file).Decode(&c)
	if err != nil {
		return c, fmt.Errorf("error decoding config file %s: %w", path, err)
	}
	Log.Debug().Msgf("Loaded config from %s", path)
	return c, nil
}

// ApplyEnvFile overrides fields from DISPATCH_* keys in a .env file. A missing
// file leaves the config untouched.
func (c *Config) ApplyEnvFile(path string) error {
	if path == "" {
		return nil
	}

	envFile, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		Log.Debug().Msgf("No env file at %s, skipping", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading env file %s: %w", path, err)
	}

	intFields := map[string]*int{
		"DISPATCH_NUM_CARS":     &c.NumCars,
		"DISPATCH_CAPACITY":     &c.Capacity,
		"DISPATCH_NUM_FLOORS":   &c.NumFloors,
		"DISPATCH_SOFT_PENALTY": &c.SoftPenalty,
		"DISPATCH_HARD_PENALTY": &c.HardPenalty,
		"DISPATCH_EVENT_BUFFER": &c.EventBuffer,
	}
	for key, field := range intFields {
		value, ok := envFile[key]
		if !ok {
			continue
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("error converting %s to int: %w", key, err)
		}
		*field = parsed
	}

	if value, ok := envFile["DISPATCH_TICK_PERIOD"]; ok {
		tickPeriod, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("error converting DISPATCH_TICK_PERIOD to duration: %w", err)
		}
		c.TickPeriod = tickPeriod
	}
	if value, ok := envFile["DISPATCH_LISTEN_ADDRESS"]; ok {
		c.ListenAddress = value
	}
	if value, ok := envFile["DISPATCH_LOG_LEVEL"]; ok {
		c.LogLevel = value
	}
	return nil
}

func (c Config) Validate() error {
	switch {
	case c.NumCars < 1:
		return fmt.Errorf("%w: num_cars must be at least 1, got %d", ErrInvalidConfig, c.NumCars)
	case c.Capacity < 1:
		return fmt.Errorf("%w: capacity must be at least 1, got %d", ErrInvalidConfig, c.Capacity)
	case c.NumFloors < 0:
		return fmt.Errorf("%w: num_floors must not be negative, got %d", ErrInvalidConfig, c.NumFloors)
	case c.TickPeriod <= 0:
		return fmt.Errorf("%w: tick_period must be positive, got %v", ErrInvalidConfig, c.TickPeriod)
	case c.SoftPenalty < 0 || c.HardPenalty < 0:
		return fmt.Errorf("%w: penalties must not be negative, got %d and %d", ErrInvalidConfig, c.SoftPenalty, c.HardPenalty)
	case c.EventBuffer < 0:
		return fmt.Errorf("%w: event_buffer must not be negative, got %d", ErrInvalidConfig, c.EventBuffer)
	}
	return nil
}
