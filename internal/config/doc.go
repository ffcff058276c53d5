// Package config loads benjamin-api settings with viper from defaults, an
// optional config.yaml and BENJAMIN_* environment variables, and validates
// them before any component starts.
package config
