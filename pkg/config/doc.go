// Package config parses and validates the YAML planning input: device
// declarations for the initial tree plus the ordered list of proposed
// operations. Sizes are human-readable strings parsed with go-humanize.
package config
