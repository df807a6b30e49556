// Package mysensors implements the MySensors serial gateway protocol.
//
// A MySensors gateway exchanges newline-terminated ASCII telegrams with the
// controller. Each telegram carries six semicolon-separated fields:
//
//	node;child;type;ack;subtype;payload
//
// The package provides the protocol tables (message types, presentation
// sensor types, value subtypes and internal subtypes) and the telegram codec.
// It holds no state and performs no I/O.
//
// # Example
//
//	t, err := mysensors.ParseTelegram("12;3;1;0;0;21.5")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(t.Type, mysensors.ValueType(t.SubType)) // SET V_TEMP
//
// # References
//
//   - MySensors serial API: https://www.mysensors.org/download/serial_api_15
package mysensors
