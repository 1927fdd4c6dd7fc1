// Package config loads the JSON configuration file and process-environment
// overrides.
//
// A missing config file is bootstrapped with a template for the operator to
// fill in. Environment overrides (file paths, log settings) load from the
// process environment, optionally seeded from a .env file (godotenv), and map
// onto a struct via go-simpler.org/env tags.
package config
