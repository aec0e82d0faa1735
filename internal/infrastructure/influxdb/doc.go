// Package influxdb records the location history trail.
//
// The relational store only keeps a device's latest position; every
// accepted location update is also written here as a time-series point
// so clients can render movement trails. Writes are non-blocking and
// batched; losing a point degrades history, never a request.
package influxdb
