package domoticz

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/nerrad567/gray-logic-mysensors/internal/mysensors"
)

// Fixed fields of composite and humidity updates.
const (
	// humidityStatusNormal is the Domoticz humidity comfort status "Normal".
	humidityStatusNormal = "0"

	// forecastNone fills the forecast field of D_T_H_B updates.
	forecastNone = "0"

	// missingValue is sent for sub-values without a registry channel.
	missingValue = "0"
)

// ChannelReading is the last known value of one channel backing a device.
type ChannelReading struct {
	Sensor  mysensors.SensorType
	Reading string
}

// BuildUpdate translates the channels sharing one Domoticz device into the
// query of a single update call.
//
// The device type decides the command:
//   - single value types: udevice with the reading in svalue
//   - D_HUM: udevice with the reading in nvalue and a normal comfort status
//   - D_T_H and D_T_H_B: udevice combining the sub-values in fixed order
//   - D_SWITCH: switchlight, "Set Level" for dimmers and On/Off otherwise
//
// Any other type yields a read-only getSunRiseSet query so that an update
// never writes a malformed value into Domoticz.
//
// Parameters:
//   - deviceID: Domoticz device idx
//   - deviceType: Device type stored with the channels
//   - readings: Channels sharing deviceID; the first is the primary channel
func BuildUpdate(deviceID int, deviceType DeviceType, readings []ChannelReading) url.Values {
	if len(readings) == 0 {
		return noopQuery()
	}

	idx := strconv.Itoa(deviceID)
	primary := readings[0]

	switch deviceType {
	case DeviceHum:
		return udevice(idx, primary.Reading, humidityStatusNormal)

	case DeviceTemp, DevicePressure, DevicePercentage, DeviceUV, DeviceLux:
		return udevice(idx, "0", primary.Reading)

	case DeviceTempHum:
		temp, hum, _ := collectWeather(readings)
		return udevice(idx, "0", strings.Join([]string{temp, hum, humidityStatusNormal}, ";"))

	case DeviceTempHumBaro:
		temp, hum, baro := collectWeather(readings)
		return udevice(idx, "0", strings.Join([]string{temp, hum, humidityStatusNormal, baro, forecastNone}, ";"))

	case DeviceSwitch:
		if primary.Sensor == mysensors.SensorDimmer {
			return switchlight(idx, "Set Level", primary.Reading)
		}
		if primary.Reading == "1" {
			return switchlight(idx, "On", "0")
		}
		return switchlight(idx, "Off", "0")

	case DeviceNone, DeviceRain, DeviceWind, DeviceEnergy, DeviceText, DeviceAirQuality:
		return noopQuery()

	default:
		return noopQuery()
	}
}

// collectWeather picks the temperature, humidity and pressure readings from
// the channels of a composite device. Missing values are "0".
func collectWeather(readings []ChannelReading) (temp, hum, baro string) {
	temp, hum, baro = missingValue, missingValue, missingValue
	for _, r := range readings {
		if r.Reading == "" {
			continue
		}
		switch r.Sensor {
		case mysensors.SensorTemp:
			temp = r.Reading
		case mysensors.SensorHum:
			hum = r.Reading
		case mysensors.SensorBaro:
			baro = r.Reading
		}
	}
	return temp, hum, baro
}

func udevice(idx, nvalue, svalue string) url.Values {
	return url.Values{
		"type":   {"command"},
		"param":  {"udevice"},
		"idx":    {idx},
		"nvalue": {nvalue},
		"svalue": {svalue},
	}
}

func switchlight(idx, cmd, level string) url.Values {
	return url.Values{
		"type":      {"command"},
		"param":     {"switchlight"},
		"idx":       {idx},
		"switchcmd": {cmd},
		"level":     {level},
	}
}

// noopQuery is a harmless read-only call used for unsupported device types.
func noopQuery() url.Values {
	return url.Values{
		"type":  {"command"},
		"param": {"getSunRiseSet"},
	}
}

// IsNoop reports whether an update query is the read-only placeholder.
func IsNoop(q url.Values) bool {
	return q.Get("param") == "getSunRiseSet"
}
