// Package config handles loading and validating Rallypoint Core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Sensitive values (JWT secret, broker credentials, InfluxDB tokens)
//     should be set via environment variables
//   - The signing secret must be changed from defaults before production use
//   - The passwordless-login bypass is refused unless test fixtures are
//     explicitly enabled; it must never be reachable in a deployed build
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
