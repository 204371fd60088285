package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"shelfscan/internal/catalog/tmdb"
	"shelfscan/internal/catalog/tvdb"
	"shelfscan/internal/config"
	"shelfscan/internal/library/plex"
	"shelfscan/internal/logging"
	"shelfscan/internal/match"
	"shelfscan/internal/notifications"
	"shelfscan/internal/pipeline"
	"shelfscan/internal/resolver"
	"shelfscan/internal/scans"
	"shelfscan/internal/vision"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	storeOnce sync.Once
	store     *scans.Store
	storeLock *flock.Flock
	storeErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Path:   cfg.LogFilePath(),
		})
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// ensureStore opens the scan database under an advisory file lock so two
// shelfscan processes never share one database.
func (c *commandContext) ensureStore() (*scans.Store, error) {
	c.storeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.storeErr = err
			return
		}
		lock := flock.New(cfg.LockPath())
		acquired, err := lock.TryLock()
		if err != nil {
			c.storeErr = fmt.Errorf("acquire data lock: %w", err)
			return
		}
		if !acquired {
			c.storeErr = fmt.Errorf("another shelfscan process holds %s", cfg.LockPath())
			return
		}
		store, err := scans.Open(cfg.DatabasePath())
		if err != nil {
			_ = lock.Unlock()
			c.storeErr = err
			return
		}
		c.store = store
		c.storeLock = lock
	})
	return c.store, c.storeErr
}

func (c *commandContext) close() {
	if c.store != nil {
		_ = c.store.Close()
	}
	if c.storeLock != nil {
		_ = c.storeLock.Unlock()
	}
}

// buildPipeline wires the full scan stack from configuration. The
// supplemental catalog and the personal library join only when configured.
func (c *commandContext) buildPipeline() (*pipeline.Pipeline, *scans.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.RequireScanServices(); err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	store, err := c.ensureStore()
	if err != nil {
		return nil, nil, err
	}

	catalog, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
		tmdb.WithTimeout(time.Duration(cfg.TMDB.TimeoutSeconds)*time.Second))
	if err != nil {
		return nil, nil, fmt.Errorf("configure catalog client: %w", err)
	}

	var supplemental tvdb.Searcher
	if cfg.TVDBEnabled() {
		client, err := tvdb.New(cfg.TVDB.APIKey, cfg.TVDB.BaseURL,
			tvdb.WithTimeout(time.Duration(cfg.TVDB.TimeoutSeconds)*time.Second))
		if err != nil {
			return nil, nil, fmt.Errorf("configure supplemental client: %w", err)
		}
		supplemental = client
	}

	var library pipeline.LibraryLister
	if cfg.PlexEnabled() {
		client, err := plex.New(cfg.Plex.URL, cfg.Plex.Token,
			plex.WithTimeout(time.Duration(cfg.Plex.TimeoutSeconds)*time.Second))
		if err != nil {
			return nil, nil, fmt.Errorf("configure library client: %w", err)
		}
		library = client
	}

	settings, err := store.Settings(context.Background())
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}
	policy := match.ThresholdsFromSettings(settings)

	identifier := vision.NewClient(vision.Config{
		APIKey:         cfg.Vision.APIKey,
		BaseURL:        cfg.Vision.BaseURL,
		Model:          cfg.Vision.Model,
		TimeoutSeconds: cfg.Vision.TimeoutSeconds,
	})
	genres := tmdb.NewGenreCache(catalog)
	itemResolver := resolver.New(logger, catalog, genres, supplemental, policy)
	notifier := notifications.NewService(cfg)

	pipe := pipeline.New(logger, store, identifier, itemResolver, library, notifier, pipeline.Options{
		ModelID:      cfg.Vision.Model,
		MaxImageEdge: cfg.Vision.MaxImageEdge,
		JPEGQuality:  cfg.Vision.JPEGQuality,
	})
	return pipe, store, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
