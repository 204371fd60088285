// Package config loads, validates, and normalizes the shelfscan TOML
// configuration file.
//
// The file lives at ~/.config/shelfscan/config.toml by default, with a
// project-local shelfscan.toml as a fallback. Credentials may also come from
// the environment (SHELFSCAN_TMDB_API_KEY and friends); environment values
// take precedence over file values so secrets can stay out of the config.
package config
