// Package mqtt wraps paho.mqtt.golang for Rallypoint's broker traffic.
//
// Devices in the field report location over MQTT rather than HTTP when
// they are on flaky links; the broker absorbs the retries. This wrapper
// adds connection management, automatic re-subscription after a
// reconnect, panic recovery around message handlers, and last-will
// status publishing so other services can tell when the core drops off.
package mqtt
