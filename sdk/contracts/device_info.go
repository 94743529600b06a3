package contracts

// DeviceInfo contains information about a MIDI input port.
//
// Name is the identity used to track a device across poll cycles.
type DeviceInfo struct {
	ID           int    // Platform port index at enumeration time. Not stable across scans.
	Name         string // Device name.
	Manufacturer string // Device manufacturer, if the platform reports one.
	EntityName   string // Name of the entity to which the device belongs.
}
