// Package config provides configuration loading and validation for the
// WSJT-X UDP monitor. It handles YAML-based configuration with struct
// validation and sensible defaults for the standard WSJT-X reporting
// setup.
package config
