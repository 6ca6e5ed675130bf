// Package config loads settings for the Messagely terminal client.
//
// Values are applied in this order, later sources winning:
//  1. Defaults (LoadDefaults)
//  2. JSON file named by -c or -config
//  3. Command-line flags (-a)
package config
