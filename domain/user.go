// Package domain contains core concepts of the messaging hub.
// This file defines connected users and device classes.
// No runtime, network, or UI logic should be added here.
package domain

// DeviceClass is derived once from the Device request header at connect time.
type DeviceClass string

const (
	DeviceDesktop DeviceClass = "Desktop"
	DeviceMobile  DeviceClass = "Mobile"
	DeviceWeb     DeviceClass = "Web"
)

// DeviceClassFrom maps a raw header value to a device class.
// Anything other than Desktop or Mobile falls back to Web.
func DeviceClassFrom(header string) DeviceClass {
	switch header {
	case string(DeviceDesktop):
		return DeviceDesktop
	case string(DeviceMobile):
		return DeviceMobile
	default:
		return DeviceWeb
	}
}

// ConnectedUser is the in-memory record of one live connection.
// Identity is the stable authenticated key; DisplayName is what peers see.
// CurrentGroup is empty while the user has not joined any group.
type ConnectedUser struct {
	Identity     string
	DisplayName  string
	CurrentGroup string
	Device       DeviceClass
}
