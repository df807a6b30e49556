package mysensors

import (
	"fmt"
	"strconv"
)

// MessageType is the third telegram field. It selects how the subtype and
// payload are interpreted.
type MessageType uint8

// Message types.
const (
	// Presentation is sent by a node to announce an attached sensor.
	// The subtype carries a SensorType.
	Presentation MessageType = 0

	// Set carries a new value for a child. The subtype carries a ValueType.
	Set MessageType = 1

	// Req requests the current value of a child from the controller.
	Req MessageType = 2

	// Internal carries gateway and node housekeeping messages.
	// The subtype carries an InternalType.
	Internal MessageType = 3

	// Stream is used for OTA firmware updates.
	Stream MessageType = 4
)

var messageTypeNames = []string{"PRESENTATION", "SET", "REQ", "INTERNAL", "STREAM"}

// String returns the protocol name of the message type.
func (m MessageType) String() string {
	return tableName(messageTypeNames, int(m), "MESSAGE")
}

// Known reports whether the message type is defined by the protocol.
func (m MessageType) Known() bool {
	return int(m) < len(messageTypeNames)
}

// SensorType is the presentation subtype, describing the kind of sensor or
// actuator attached to a child.
type SensorType uint8

// Presentation sensor types.
const (
	SensorDoor            SensorType = 0
	SensorMotion          SensorType = 1
	SensorSmoke           SensorType = 2
	SensorLight           SensorType = 3
	SensorDimmer          SensorType = 4
	SensorCover           SensorType = 5
	SensorTemp            SensorType = 6
	SensorHum             SensorType = 7
	SensorBaro            SensorType = 8
	SensorWind            SensorType = 9
	SensorRain            SensorType = 10
	SensorUV              SensorType = 11
	SensorWeight          SensorType = 12
	SensorPower           SensorType = 13
	SensorHeater          SensorType = 14
	SensorDistance        SensorType = 15
	SensorLightLevel      SensorType = 16
	SensorArduinoNode     SensorType = 17
	SensorArduinoRelay    SensorType = 18
	SensorLock            SensorType = 19
	SensorIR              SensorType = 20
	SensorWater           SensorType = 21
	SensorAirQuality      SensorType = 22
	SensorCustom          SensorType = 23
	SensorDust            SensorType = 24
	SensorSceneController SensorType = 25
)

var sensorTypeNames = []string{
	"S_DOOR", "S_MOTION", "S_SMOKE", "S_LIGHT", "S_DIMMER", "S_COVER",
	"S_TEMP", "S_HUM", "S_BARO", "S_WIND", "S_RAIN", "S_UV", "S_WEIGHT",
	"S_POWER", "S_HEATER", "S_DISTANCE", "S_LIGHT_LEVEL", "S_ARDUINO_NODE",
	"S_ARDUINO_RELAY", "S_LOCK", "S_IR", "S_WATER", "S_AIR_QUALITY",
	"S_CUSTOM", "S_DUST", "S_SCENE_CONTROLLER",
}

// String returns the protocol name of the sensor type (e.g. "S_TEMP").
func (s SensorType) String() string {
	return tableName(sensorTypeNames, int(s), "S")
}

// Known reports whether the sensor type is defined by the protocol.
func (s SensorType) Known() bool {
	return int(s) < len(sensorTypeNames)
}

// ParseSensorType resolves a protocol name such as "S_TEMP".
func ParseSensorType(name string) (SensorType, error) {
	code, err := tableCode(sensorTypeNames, name)
	if err != nil {
		return 0, err
	}
	return SensorType(code), nil //nolint:gosec // bounded by table length
}

// MarshalText encodes the sensor type by name, as stored in the registry snapshot.
func (s SensorType) MarshalText() ([]byte, error) {
	if !s.Known() {
		return nil, fmt.Errorf("%w: sensor type %d", ErrUnknownName, s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a sensor type name.
func (s *SensorType) UnmarshalText(text []byte) error {
	v, err := ParseSensorType(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ValueType is the subtype of SET and REQ telegrams.
type ValueType uint8

// Value types used by the bridge. The full table is in valueTypeNames.
const (
	ValueTemp       ValueType = 0
	ValueHum        ValueType = 1
	ValueLight      ValueType = 2
	ValueDimmer     ValueType = 3
	ValuePressure   ValueType = 4
	ValueForecast   ValueType = 5
	ValueUV         ValueType = 11
	ValueTripped    ValueType = 16
	ValueWatt       ValueType = 17
	ValueKWh        ValueType = 18
	ValueLightLevel ValueType = 23
	ValueVar1       ValueType = 24
	ValueUp         ValueType = 29
	ValueDown       ValueType = 30
	ValueStop       ValueType = 31
	ValueLockStatus ValueType = 36
	ValueCurrent    ValueType = 39
)

var valueTypeNames = []string{
	"V_TEMP", "V_HUM", "V_LIGHT", "V_DIMMER", "V_PRESSURE", "V_FORECAST",
	"V_RAIN", "V_RAINRATE", "V_WIND", "V_GUST", "V_DIRECTION", "V_UV",
	"V_WEIGHT", "V_DISTANCE", "V_IMPEDANCE", "V_ARMED", "V_TRIPPED",
	"V_WATT", "V_KWH", "V_SCENE_ON", "V_SCENE_OFF", "V_HEATER",
	"V_HEATER_SW", "V_LIGHT_LEVEL", "V_VAR1", "V_VAR2", "V_VAR3", "V_VAR4",
	"V_VAR5", "V_UP", "V_DOWN", "V_STOP", "V_IR_SEND", "V_IR_RECEIVE",
	"V_FLOW", "V_VOLUME", "V_LOCK_STATUS", "V_DUST_LEVEL", "V_VOLTAGE",
	"V_CURRENT",
}

// String returns the protocol name of the value type (e.g. "V_TEMP").
func (v ValueType) String() string {
	return tableName(valueTypeNames, int(v), "V")
}

// Known reports whether the value type is defined by the protocol.
func (v ValueType) Known() bool {
	return int(v) < len(valueTypeNames)
}

// ParseValueType resolves a protocol name such as "V_DIMMER".
func ParseValueType(name string) (ValueType, error) {
	code, err := tableCode(valueTypeNames, name)
	if err != nil {
		return 0, err
	}
	return ValueType(code), nil //nolint:gosec // bounded by table length
}

// InternalType is the subtype of INTERNAL telegrams.
type InternalType uint8

// Internal message subtypes.
const (
	InternalBatteryLevel       InternalType = 0
	InternalTime               InternalType = 1
	InternalVersion            InternalType = 2
	InternalIDRequest          InternalType = 3
	InternalIDResponse         InternalType = 4
	InternalInclusionMode      InternalType = 5
	InternalConfig             InternalType = 6
	InternalFindParent         InternalType = 7
	InternalFindParentResponse InternalType = 8
	InternalLogMessage         InternalType = 9
	InternalChildren           InternalType = 10
	InternalSketchName         InternalType = 11
	InternalSketchVersion      InternalType = 12
	InternalReboot             InternalType = 13
	InternalGatewayReady       InternalType = 14
)

var internalTypeNames = []string{
	"I_BATTERY_LEVEL", "I_TIME", "I_VERSION", "I_ID_REQUEST", "I_ID_RESPONSE",
	"I_INCLUSION_MODE", "I_CONFIG", "I_FIND_PARENT", "I_FIND_PARENT_RESPONSE",
	"I_LOG_MESSAGE", "I_CHILDREN", "I_SKETCH_NAME", "I_SKETCH_VERSION",
	"I_REBOOT", "I_GATEWAY_READY",
}

// String returns the protocol name of the internal subtype (e.g. "I_TIME").
func (i InternalType) String() string {
	return tableName(internalTypeNames, int(i), "I")
}

// Known reports whether the internal subtype is defined by the protocol.
func (i InternalType) Known() bool {
	return int(i) < len(internalTypeNames)
}

func tableName(names []string, code int, prefix string) string {
	if code >= 0 && code < len(names) {
		return names[code]
	}
	return prefix + "_UNKNOWN(" + strconv.Itoa(code) + ")"
}

func tableCode(names []string, name string) (int, error) {
	for code, n := range names {
		if n == name {
			return code, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownName, name)
}
