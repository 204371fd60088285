package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"shelfscan/internal/config"
	"shelfscan/internal/vision"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigCheckCommand(ctx))
	return configCmd
}

// newConfigCheckCommand verifies the configured vision provider actually
// answers, beyond the static checks config validate performs.
func newConfigCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the vision provider responds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireScanServices(); err != nil {
				return err
			}
			client := vision.NewClient(vision.Config{
				APIKey:         cfg.Vision.APIKey,
				BaseURL:        cfg.Vision.BaseURL,
				Model:          cfg.Vision.Model,
				TimeoutSeconds: cfg.Vision.TimeoutSeconds,
			})
			if err := client.HealthCheck(cmd.Context()); err != nil {
				return fmt.Errorf("vision health check: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Vision model %s is reachable\n", cfg.Vision.Model)
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set vision and tmdb api keys (or export "+config.EnvVisionAPIKey+" and "+config.EnvTMDBAPIKey+") before scanning.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path:      %s (exists: %s)\n", path, yesNo(exists))
			fmt.Fprintf(out, "Data directory:   %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "Log directory:    %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "Vision model:     %s\n", cfg.Vision.Model)
			fmt.Fprintf(out, "Vision key set:   %s\n", yesNo(strings.TrimSpace(cfg.Vision.APIKey) != ""))
			fmt.Fprintf(out, "TMDB key set:     %s\n", yesNo(strings.TrimSpace(cfg.TMDB.APIKey) != ""))
			fmt.Fprintf(out, "TVDB enabled:     %s\n", yesNo(cfg.TVDBEnabled()))
			fmt.Fprintf(out, "Library enabled:  %s\n", yesNo(cfg.PlexEnabled()))
			fmt.Fprintf(out, "Notifications:    %s\n", yesNo(strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""))
			return nil
		},
	}
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			if err := cfg.RequireScanServices(); err != nil {
				fmt.Fprintf(out, "Configuration valid, but scanning is not ready: %v\n", err)
				return nil
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
