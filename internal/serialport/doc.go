// Package serialport is the line transport to a MySensors serial gateway.
//
// The gateway loop polls it: ReadLine returns at once (after at most one
// short read timeout) with either a complete line or nothing. WriteLine
// blocks until the telegram is written.
package serialport
