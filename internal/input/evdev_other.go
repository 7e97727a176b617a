//go:build !linux

package input

import "log"

// Device describes an evdev node
type Device struct {
	Path string
	Name string
}

// ListDevices has nothing to report off Linux
func ListDevices() ([]Device, error) {
	return nil, nil
}

// Discover always reports no device off Linux; callers fall back to the
// terminal keyboard
func Discover(pedalSuffix, keyboardSuffix string, grab bool) ([]Source, error) {
	log.Printf("Input devices are only read on Linux; did not look for %s or %s", pedalSuffix, keyboardSuffix)
	return nil, ErrDeviceUnavailable
}
