package config

// Default returns the baseline configuration before any file or environment
// values are applied.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: "~/.local/share/shelfscan",
			LogDir:  "~/.local/state/shelfscan/logs",
		},
		TMDB: TMDB{
			BaseURL:        "https://api.themoviedb.org/3",
			Language:       "en-US",
			TimeoutSeconds: 15,
		},
		TVDB: TVDB{
			BaseURL:        "https://api4.thetvdb.com/v4",
			TimeoutSeconds: 15,
		},
		Plex: Plex{
			TimeoutSeconds: 15,
		},
		Vision: Vision{
			BaseURL:        "https://openrouter.ai/api/v1/chat/completions",
			Model:          "openai/gpt-4o",
			TimeoutSeconds: 120,
			MaxImageEdge:   1568,
			JPEGQuality:    80,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
