package mqtt

import (
	"fmt"
	"strings"
)

// Topic layout:
//
//	rallypoint/system/status              retained core online/offline
//	rallypoint/device/{uuid}/location     inbound device location reports
const topicPrefix = "rallypoint"

// SystemStatusTopic is where the core publishes its online status and
// last will.
func SystemStatusTopic() string {
	return topicPrefix + "/system/status"
}

// DeviceLocationTopic returns the location topic for one device UUID.
func DeviceLocationTopic(deviceUUID string) string {
	return fmt.Sprintf("%s/device/%s/location", topicPrefix, deviceUUID)
}

// DeviceLocationWildcard subscribes to location reports from every
// device.
func DeviceLocationWildcard() string {
	return topicPrefix + "/device/+/location"
}

// ParseDeviceLocationTopic extracts the device UUID from a location
// topic. Returns ErrInvalidTopic for anything else.
func ParseDeviceLocationTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != topicPrefix || parts[1] != "device" || parts[3] != "location" || parts[2] == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidTopic, topic)
	}
	return parts[2], nil
}
