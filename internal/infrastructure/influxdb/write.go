package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteLocationPoint records a device position in the location trail.
//
// The relational store keeps only the latest position; this series holds
// the full history. The write is non-blocking; data is batched and sent
// asynchronously, and is silently dropped when the client is disconnected.
func (c *Client) WriteLocationPoint(deviceID, userID string, lat, lon float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_location",
		map[string]string{
			"device_id": deviceID,
			"user_id":   userID,
		},
		map[string]interface{}{
			"lat": lat,
			"lon": lon,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Tags are indexed and should stay low cardinality; fields carry the data.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
