package audio

import "fmt"

// DeviceEnumerationError wraps a host audio system query failure.
type DeviceEnumerationError struct {
	Err error
}

func (e *DeviceEnumerationError) Error() string {
	return fmt.Sprintf("device enumeration failed: %v", e.Err)
}

func (e *DeviceEnumerationError) Unwrap() error { return e.Err }

// StreamOpenError reports a device that could not be opened for capture.
// It carries the device so callers can tell which source failed.
type StreamOpenError struct {
	Device Device
	Err    error
}

func (e *StreamOpenError) Error() string {
	return fmt.Sprintf("open stream on %q: %v", e.Device.Name, e.Err)
}

func (e *StreamOpenError) Unwrap() error { return e.Err }
