package app

//
// discovery.go shapes the data a real Home Assistant MQTT discovery
// integration would publish: topic strings and a JSON-serializable config
// payload. It does not open a network connection or depend on an MQTT
// client library - see state.go's Publisher doc comment.
//

import (
	"fmt"

	"github.com/rinnai-gateway/signalcore"
)

// DeviceInfo identifies the physical water heater in a discovery payload,
// mirroring the "device" block Home Assistant expects alongside every
// entity config.
type DeviceInfo struct {
	Identifier   string
	Name         string
	Manufacturer string
	Model        string
}

// DiscoveryTopics holds the MQTT topics a real integration would use for
// one water heater: where state is published, where commands arrive, and
// where the discovery config payload itself is published.
type DiscoveryTopics struct {
	StateTopic              string
	PowerCommandTopic       string
	TemperatureCommandTopic string
	PriorityCommandTopic    string
	ConfigTopic             string
}

// Topics builds the topic set for a device with the given identifier.
// State and command topics live under "rinnai-gateway/<deviceID>/"; only
// the config topic follows Home Assistant's
// "homeassistant/<component>/<object_id>/config" discovery layout.
func Topics(deviceID string) DiscoveryTopics {
	base := fmt.Sprintf("rinnai-gateway/%s", deviceID)
	return DiscoveryTopics{
		StateTopic:              base + "/state",
		PowerCommandTopic:       base + "/power/set",
		TemperatureCommandTopic: base + "/temperature/set",
		PriorityCommandTopic:    base + "/priority/set",
		ConfigTopic:             fmt.Sprintf("homeassistant/water_heater/%s/config", deviceID),
	}
}

// WaterHeaterConfig is the JSON shape of a Home Assistant "water_heater"
// MQTT discovery config payload. Field names follow HA's documented
// schema, not Go naming convention, hence the explicit json tags.
type WaterHeaterConfig struct {
	Name                    string     `json:"name"`
	UniqueID                string     `json:"unique_id"`
	ModeStateTopic          string     `json:"mode_state_topic"`
	ModeCommandTopic        string     `json:"mode_command_topic"`
	TemperatureStateTopic   string     `json:"temperature_state_topic"`
	TemperatureCommandTopic string     `json:"temperature_command_topic"`
	MinTemp                 int        `json:"min_temp"`
	MaxTemp                 int        `json:"max_temp"`
	TemperatureUnit         string     `json:"temperature_unit"`
	Modes                   []string   `json:"modes"`
	Device                  DeviceInfo `json:"device"`
}

// NewWaterHeaterConfig builds the discovery payload for deviceID, wiring
// in the topics Topics would generate for the same identifier.
func NewWaterHeaterConfig(deviceID string, device DeviceInfo) WaterHeaterConfig {
	topics := Topics(deviceID)
	return WaterHeaterConfig{
		Name:                    device.Name,
		UniqueID:                deviceID,
		ModeStateTopic:          topics.StateTopic,
		ModeCommandTopic:        topics.PowerCommandTopic,
		TemperatureStateTopic:   topics.StateTopic,
		TemperatureCommandTopic: topics.TemperatureCommandTopic,
		MinTemp:                 signalcore.TempCMin,
		MaxTemp:                 signalcore.TempCMax,
		TemperatureUnit:         "C",
		Modes:                   []string{"off", "heat_cool"},
		Device:                  device,
	}
}
