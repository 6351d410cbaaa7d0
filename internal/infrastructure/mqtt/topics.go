package mqtt

import "strings"

// Topic prefixes for the sensor service.
const (
	// TopicPrefixSensor is the base for every sensor topic.
	TopicPrefixSensor = "graylogic/sensor"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "graylogic/system"

	// RegisterSegment is the reserved second level used for registrations.
	// It can never be a sensor ID.
	RegisterSegment = "register"
)

// Sensor topic leaf names.
const (
	LeafState      = "state"
	LeafConfig     = "config"
	LeafError      = "error"
	LeafNormalized = "normalized"
)

// Topics provides builders for sensor service MQTT topics:
//
//	graylogic/sensor/register             bridge -> service  create a sensor
//	graylogic/sensor/register/error       service -> bridge  registration rejected
//	graylogic/sensor/{id}/state           bridge -> service  state payload
//	graylogic/sensor/{id}/config          bridge -> service  config payload
//	graylogic/sensor/{id}/error           service -> bridge  validation diagnostics
//	graylogic/sensor/{id}/normalized      service -> all     accepted record (retained)
//	graylogic/system/status               service -> all     online/offline (retained, LWT)
type Topics struct{}

// SensorRegister returns the registration topic.
func (Topics) SensorRegister() string {
	return TopicPrefixSensor + "/" + RegisterSegment
}

// SensorRegisterError returns the topic for rejected registrations that carry no ID.
func (Topics) SensorRegisterError() string {
	return TopicPrefixSensor + "/" + RegisterSegment + "/" + LeafError
}

// SensorState returns the state topic for a sensor.
//
// Example: graylogic/sensor/4f1c.../state
func (Topics) SensorState(id string) string {
	return sensorTopic(id, LeafState)
}

// SensorConfig returns the config topic for a sensor.
func (Topics) SensorConfig(id string) string {
	return sensorTopic(id, LeafConfig)
}

// SensorError returns the diagnostics topic for a sensor.
func (Topics) SensorError(id string) string {
	return sensorTopic(id, LeafError)
}

// SensorNormalized returns the topic carrying the accepted record for a sensor.
func (Topics) SensorNormalized(id string) string {
	return sensorTopic(id, LeafNormalized)
}

// AllSensorStates matches every sensor state topic.
func (Topics) AllSensorStates() string {
	return sensorTopic("+", LeafState)
}

// AllSensorConfigs matches every sensor config topic.
func (Topics) AllSensorConfigs() string {
	return sensorTopic("+", LeafConfig)
}

// SystemStatus returns the retained service status topic.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

func sensorTopic(id, leaf string) string {
	return TopicPrefixSensor + "/" + id + "/" + leaf
}

// ParseSensorTopic splits graylogic/sensor/{id}/{leaf} into its ID and leaf.
// It reports false for the registration topics and anything outside the
// sensor hierarchy.
func ParseSensorTopic(topic string) (id, leaf string, ok bool) {
	rest, found := strings.CutPrefix(topic, TopicPrefixSensor+"/")
	if !found {
		return "", "", false
	}
	id, leaf, found = strings.Cut(rest, "/")
	if !found || id == "" || id == RegisterSegment || leaf == "" || strings.Contains(leaf, "/") {
		return "", "", false
	}
	return id, leaf, true
}
