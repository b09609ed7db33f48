package audio

import "strings"

// ListInputDevices returns every device with at least one input channel.
// The snapshot reflects current host state; nothing is cached.
func ListInputDevices(h Host) ([]Device, error) {
	devs, err := h.Devices()
	if err != nil {
		return nil, &DeviceEnumerationError{Err: err}
	}
	inputs := make([]Device, 0, len(devs))
	for _, d := range devs {
		if d.Channels <= 0 {
			continue
		}
		d.IsLoopback = strings.Contains(strings.ToLower(d.Name), "loopback")
		inputs = append(inputs, d)
	}
	return inputs, nil
}

// ListLoopbackDevices returns devices usable for system-audio capture:
// devices whose name indicates a loopback or stereo-mix path, plus a
// fallback for duplex devices whose name suggests a speaker or headphone
// loopback.
func ListLoopbackDevices(h Host) ([]Device, error) {
	devs, err := h.Devices()
	if err != nil {
		return nil, &DeviceEnumerationError{Err: err}
	}

	var loopbacks []Device
	seen := make(map[int]bool)
	for _, d := range devs {
		name := strings.ToLower(d.Name)
		if strings.Contains(name, "loopback") || strings.Contains(name, "stereo mix") {
			d.IsLoopback = true
			loopbacks = append(loopbacks, d)
			seen[d.Index] = true
		}
	}

	for _, d := range devs {
		if seen[d.Index] || d.Channels <= 0 || d.OutputChannels <= 0 {
			continue
		}
		name := strings.ToLower(d.Name)
		if strings.Contains(name, "speaker") || strings.Contains(name, "headphone") {
			d.Name += " (Loopback)"
			d.Channels = min(d.Channels, 2)
			d.IsLoopback = true
			loopbacks = append(loopbacks, d)
		}
	}
	return loopbacks, nil
}
