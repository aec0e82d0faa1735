// Package telemetry ingests device location reports from MQTT.
//
// Devices publish to rallypoint/device/{uuid}/location with their bearer
// token embedded in the payload. The ingestor verifies the token through
// the same path as the HTTP API, checks that the token's bound device
// matches the topic, applies the update to the relational store, appends
// a point to the InfluxDB location trail, and fans the position out to
// WebSocket subscribers.
//
// A report that fails any check is dropped and logged. MQTT offers no
// per-message reply channel, so rejection is silent from the device's
// point of view.
package telemetry
