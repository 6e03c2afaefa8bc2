package elevmetadata

import (
	"encoding/json"

	"github.com/xyproto/randomstring"

	"github.com/dinamadelen/heisdispatch/internal/logger"
)

var Log = logger.GetLogger()

const IDENTIFIER_DEFAULT_LEN = 10

type FleetMetaData struct {
	SoftwareVersion string `json:"software_version"`
	Identifier      string `json:"identifier"`
	NumCars         int    `json:"num_cars"`
	Capacity        int    `json:"capacity"`
	ListenAddress   string `json:"listen_address,omitempty"`
}

func NewFleetMetaData(softwareVersion string, identifier string, numCars int, capacity int, listenAddress string) *FleetMetaData {
	if identifier == "" {
		identifier = randomstring.EnglishFrequencyString(IDENTIFIER_DEFAULT_LEN) //this should be random enough
		Log.Warn().Msgf("No fleet identifier provided, generated random identifier \"%v\"", identifier)
	}
	return &FleetMetaData{
		SoftwareVersion: softwareVersion,
		Identifier:      identifier,
		NumCars:         numCars,
		Capacity:        capacity,
		ListenAddress:   listenAddress,
	}
}

func (fleetMetaData *FleetMetaData) String() string {
	jsonData, err := json.Marshal(fleetMetaData)

	if err != nil {
		Log.Error().Msg("Error Serialising FleetMetaData Object to JSON")
		return ""
	}
	return string(jsonData)
}
