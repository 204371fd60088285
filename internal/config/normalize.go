package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Environment variable names checked for credentials left empty in the file.
const (
	EnvTMDBAPIKey   = "SHELFSCAN_TMDB_API_KEY"
	EnvTVDBAPIKey   = "SHELFSCAN_TVDB_API_KEY"
	EnvPlexToken    = "SHELFSCAN_PLEX_TOKEN"
	EnvVisionAPIKey = "SHELFSCAN_VISION_API_KEY"
	EnvNtfyTopic    = "SHELFSCAN_NTFY_TOPIC"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = ExpandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.TMDB.APIKey = fromEnv(c.TMDB.APIKey, EnvTMDBAPIKey)
	c.TVDB.APIKey = fromEnv(c.TVDB.APIKey, EnvTVDBAPIKey)
	c.Plex.Token = fromEnv(c.Plex.Token, EnvPlexToken)
	c.Vision.APIKey = fromEnv(c.Vision.APIKey, EnvVisionAPIKey)
	c.Notifications.NtfyTopic = fromEnv(c.Notifications.NtfyTopic, EnvNtfyTopic)

	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	c.TVDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TVDB.BaseURL), "/")
	c.Plex.URL = strings.TrimRight(strings.TrimSpace(c.Plex.URL), "/")
	c.Vision.BaseURL = strings.TrimSpace(c.Vision.BaseURL)
	return nil
}

// fromEnv prefers the environment value when set, otherwise keeps the
// trimmed file value.
func fromEnv(fileValue, envName string) string {
	if env := strings.TrimSpace(os.Getenv(envName)); env != "" {
		return env
	}
	return strings.TrimSpace(fileValue)
}

// Validate checks structural sanity. Missing credentials are not load errors;
// commands that need a service call the Require helpers below.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must not be empty")
	}
	if c.Vision.MaxImageEdge < 0 {
		return fmt.Errorf("vision.max_image_edge must not be negative, got %d", c.Vision.MaxImageEdge)
	}
	if c.Vision.JPEGQuality < 0 || c.Vision.JPEGQuality > 100 {
		return fmt.Errorf("vision.jpeg_quality must be in [0, 100], got %d", c.Vision.JPEGQuality)
	}
	for _, check := range []struct {
		name    string
		seconds int
	}{
		{"tmdb.timeout_seconds", c.TMDB.TimeoutSeconds},
		{"tvdb.timeout_seconds", c.TVDB.TimeoutSeconds},
		{"plex.timeout_seconds", c.Plex.TimeoutSeconds},
		{"vision.timeout_seconds", c.Vision.TimeoutSeconds},
	} {
		if check.seconds < 0 {
			return fmt.Errorf("%s must not be negative, got %d", check.name, check.seconds)
		}
	}
	return nil
}

// RequireScanServices verifies the credentials a scan needs are present.
// TVDB and Plex are optional enrichment sources and are not required here.
func (c *Config) RequireScanServices() error {
	missing := make([]string, 0, 2)
	if strings.TrimSpace(c.Vision.APIKey) == "" {
		missing = append(missing, "vision.api_key ("+EnvVisionAPIKey+")")
	}
	if strings.TrimSpace(c.TMDB.APIKey) == "" {
		missing = append(missing, "tmdb.api_key ("+EnvTMDBAPIKey+")")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

// TVDBEnabled reports whether the supplemental catalog can be used.
func (c *Config) TVDBEnabled() bool {
	return strings.TrimSpace(c.TVDB.APIKey) != ""
}

// PlexEnabled reports whether the personal-library cross-reference can run.
func (c *Config) PlexEnabled() bool {
	return c.Plex.Enabled && strings.TrimSpace(c.Plex.URL) != "" && strings.TrimSpace(c.Plex.Token) != ""
}
