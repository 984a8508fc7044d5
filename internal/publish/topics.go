package publish

import "fmt"

// DiscoveryPrefix is the root of the discovery topic hierarchy consumed
// by the downstream automation hub.
const DiscoveryPrefix = "homeassistant"

// Topics provides builders for the discovery topic hierarchy. Using
// these helpers keeps node and sensor naming consistent across the
// daemon, the configuration file, and the retained discovery documents.
//
//	topics := publish.Topics{}
//	state := topics.SensorState("greenA")
//	// Returns: "homeassistant/sensor/greenA/state"
type Topics struct{}

// SensorState returns the telemetry channel for a node.
//
// Example: homeassistant/sensor/greenA/state
func (Topics) SensorState(nodeID string) string {
	return fmt.Sprintf("%s/sensor/%s/state", DiscoveryPrefix, nodeID)
}

// SensorConfig returns the discovery-config channel for one sensor
// object on a node.
//
// Example: homeassistant/sensor/greenAtemp/config
func (Topics) SensorConfig(nodeID, objectID string) string {
	return fmt.Sprintf("%s/sensor/%s%s/config", DiscoveryPrefix, nodeID, objectID)
}
