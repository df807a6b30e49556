package domoticz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/nerrad567/gray-logic-mysensors/internal/mysensors"
)

// DeviceType is a Domoticz virtual sensor type. The numeric value is the
// "sensortype" code accepted by createvirtualsensor.
//
// DeviceNone marks a channel that has no Domoticz counterpart.
type DeviceType int

// Domoticz virtual sensor types.
const (
	DeviceNone        DeviceType = 0
	DevicePressure    DeviceType = 1
	DevicePercentage  DeviceType = 2
	DeviceSwitch      DeviceType = 17
	DeviceTemp        DeviceType = 80
	DeviceHum         DeviceType = 81
	DeviceTempHum     DeviceType = 82
	DeviceTempHumBaro DeviceType = 84
	DeviceRain        DeviceType = 85
	DeviceWind        DeviceType = 86
	DeviceUV          DeviceType = 87
	DeviceEnergy      DeviceType = 90
	DeviceText        DeviceType = 243
	DeviceLux         DeviceType = 246
	DeviceAirQuality  DeviceType = 249
)

var deviceTypeNames = map[DeviceType]string{
	DevicePressure:    "D_PRESSURE",
	DevicePercentage:  "D_PERCENTAGE",
	DeviceSwitch:      "D_SWITCH",
	DeviceTemp:        "D_TEMP",
	DeviceHum:         "D_HUM",
	DeviceTempHum:     "D_T_H",
	DeviceTempHumBaro: "D_T_H_B",
	DeviceRain:        "D_RAIN",
	DeviceWind:        "D_WIND",
	DeviceUV:          "D_UV",
	DeviceEnergy:      "D_ENERGY",
	DeviceText:        "D_TEXT",
	DeviceLux:         "D_LUX",
	DeviceAirQuality:  "D_AIRQUALITY",
}

// presentationDeviceTypes maps MySensors presentation types to the Domoticz
// device created for them. Types absent from the map get no device.
//
// S_BARO maps to the combined D_T_H_B device because Domoticz has no
// stand-alone barometer virtual sensor.
var presentationDeviceTypes = map[mysensors.SensorType]DeviceType{
	mysensors.SensorDoor:       DeviceSwitch,
	mysensors.SensorMotion:     DeviceSwitch,
	mysensors.SensorSmoke:      DeviceSwitch,
	mysensors.SensorLight:      DeviceSwitch,
	mysensors.SensorDimmer:     DeviceSwitch,
	mysensors.SensorCover:      DeviceSwitch,
	mysensors.SensorTemp:       DeviceTemp,
	mysensors.SensorHum:        DeviceHum,
	mysensors.SensorBaro:       DeviceTempHumBaro,
	mysensors.SensorWind:       DeviceWind,
	mysensors.SensorRain:       DeviceRain,
	mysensors.SensorUV:         DeviceUV,
	mysensors.SensorPower:      DeviceEnergy,
	mysensors.SensorHeater:     DeviceSwitch,
	mysensors.SensorLightLevel: DeviceLux,
	mysensors.SensorLock:       DeviceSwitch,
	mysensors.SensorAirQuality: DeviceAirQuality,
}

// DeviceTypeFor returns the Domoticz device type for a presentation type,
// or DeviceNone when the sensor is not supported.
func DeviceTypeFor(sensor mysensors.SensorType) DeviceType {
	return presentationDeviceTypes[sensor]
}

// String returns the symbolic name (e.g. "D_T_H_B").
func (d DeviceType) String() string {
	if d == DeviceNone {
		return "None"
	}
	if name, ok := deviceTypeNames[d]; ok {
		return name
	}
	return "D_UNKNOWN(" + strconv.Itoa(int(d)) + ")"
}

// Known reports whether the type is a defined Domoticz device type.
func (d DeviceType) Known() bool {
	_, ok := deviceTypeNames[d]
	return ok
}

// ParseDeviceType resolves a symbolic name. "None" and "" yield DeviceNone.
func ParseDeviceType(name string) (DeviceType, error) {
	if name == "" || name == "None" {
		return DeviceNone, nil
	}
	for d, n := range deviceTypeNames {
		if n == name {
			return d, nil
		}
	}
	return DeviceNone, fmt.Errorf("%w: %q", ErrUnsupportedDeviceType, name)
}

// MarshalJSON encodes the type by name, DeviceNone as null.
func (d DeviceType) MarshalJSON() ([]byte, error) {
	if d == DeviceNone {
		return []byte("null"), nil
	}
	if !d.Known() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDeviceType, int(d))
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a symbolic name or null.
func (d *DeviceType) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = DeviceNone
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("decoding device type: %w", err)
	}

	v, err := ParseDeviceType(name)
	if err != nil {
		return err
	}
	*d = v
	return nil
}
