package mqtt

import (
	"errors"
	"testing"
)

func TestDeviceLocationTopicRoundTrip(t *testing.T) {
	topic := DeviceLocationTopic("phone-uuid-1")
	if topic != "rallypoint/device/phone-uuid-1/location" {
		t.Errorf("topic = %q", topic)
	}

	uuid, err := ParseDeviceLocationTopic(topic)
	if err != nil {
		t.Fatalf("ParseDeviceLocationTopic: %v", err)
	}
	if uuid != "phone-uuid-1" {
		t.Errorf("uuid = %q, want phone-uuid-1", uuid)
	}
}

func TestParseDeviceLocationTopicRejects(t *testing.T) {
	tests := []struct {
		name  string
		topic string
	}{
		{"empty", ""},
		{"wrong prefix", "other/device/x/location"},
		{"wrong suffix", "rallypoint/device/x/status"},
		{"missing uuid", "rallypoint/device//location"},
		{"too deep", "rallypoint/device/x/y/location"},
		{"system topic", SystemStatusTopic()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseDeviceLocationTopic(tt.topic); !errors.Is(err, ErrInvalidTopic) {
				t.Errorf("ParseDeviceLocationTopic(%q) err = %v, want ErrInvalidTopic", tt.topic, err)
			}
		})
	}
}
