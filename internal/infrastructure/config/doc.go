// Package config loads the gateway configuration.
//
// Values are layered: built-in defaults, then the YAML file, then MYSGW_*
// environment variables, and the result is checked by Validate. Secrets
// (domoticz.password, mqtt.auth.password, influxdb.token) are best supplied
// through the environment with the file kept at mode 0600.
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	port := cfg.Gateway.Port
package config
