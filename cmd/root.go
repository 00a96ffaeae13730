// Package cmd provides the command-line interface for resrepo with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI reads its configuration with clear precedence:
//	1. Command-line flags (--config, --log-level, ...) - highest priority
//	2. RESREPO_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (RESREPO_HISTORY_MAX_VERSIONS, ...)
//	4. Configuration file (.resrepo.yml) - lowest priority
//
// Environment Variables:
//
//	RESREPO_CONFIG_FILE: Path to custom configuration file
//	RESREPO_REPOSITORY_ROOT_DIR: Override the root directory
//	RESREPO_DUMP_FILE: Override the dump location
//	RESREPO_LOG_LEVEL: Override the log level
//	And every other key following the RESREPO_<SECTION>_<OPTION> pattern
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/resrepo/internal/config"
	rerrors "github.com/conneroisu/resrepo/internal/errors"
	"github.com/conneroisu/resrepo/internal/logging"
	"github.com/conneroisu/resrepo/internal/services"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "resrepo",
	Short: "A virtual resource repository over your files",
	Long: `resrepo maps abstract repository paths such as /css/style.css onto one or
more physical sources. Later sources shadow earlier ones for single reads and
merge into directory listings. Resources can be selected by glob pattern
(* matches across /) and grouped with tags.

Quick Start:
  resrepo ls /                    List the repository root
  resrepo find '/css/*'           Find resources by pattern
  resrepo get /css/style.css      Show a resource and its layers
  resrepo tag '/css/*' styles     Tag resources
  resrepo dump                    Rebuild from config and write the dump
  resrepo watch                   Keep the dump in step with source changes

Documentation: https://github.com/conneroisu/resrepo`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Failures are printed to stderr with suggestions for known error kinds.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", rerrors.FormatErrorWithSuggestions(err))
	}

	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .resrepo.yml, can also use RESREPO_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig initializes the configuration system.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. RESREPO_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .resrepo.yml in current directory
//
// A missing default file is fine; an explicit file that cannot be read is
// reported when the first command loads its configuration.
func initConfig() {
	configErr = nil

	used, err := config.Init(viper.GetViper(), cfgFile)
	if err != nil {
		configErr = fmt.Errorf("failed to read config file: %w", err)
		return
	}
	if used != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", used)
	}
}

// configErr holds a config file failure from initConfig until a command
// needs the configuration.
var configErr error

// loadConfig returns the validated configuration.
func loadConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, configErr
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

func newLogger(cfg *config.Config) logging.Logger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logging.LevelInfo
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.Log.Format,
		Output:    os.Stderr,
		Component: "resrepo",
	})
}

// newService creates the repository service without opening it.
func newService() (*services.RepositoryService, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	svc := services.NewRepositoryService(cfg, services.WithLogger(newLogger(cfg)))

	return svc, cfg, nil
}

// openService returns a service over the dump when present, or over a
// repository freshly built from the configuration.
func openService(ctx context.Context) (*services.RepositoryService, error) {
	svc, _, err := newService()
	if err != nil {
		return nil, err
	}

	if err := svc.Open(ctx); err != nil {
		return nil, err
	}

	return svc, nil
}
