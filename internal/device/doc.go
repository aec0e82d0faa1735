// Package device manages the devices registered against user accounts.
//
// Every authenticated session is anchored to a device: login names a
// device UUID, and the session token carries it so later requests can
// resolve the exact device they originated from. Binding is idempotent
// per (user, uuid) pair, so a phone that logs in twice keeps its single
// device row rather than accumulating duplicates.
//
// The package also tracks the last reported location of each device,
// which feeds the live map and the location history trail.
package device
