package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/resrepo/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect resrepo configuration",
	Long: `Inspect resrepo configuration files and settings.

Examples:
  resrepo config validate              # Validate current configuration
  resrepo config show                  # Show current configuration
  resrepo config validate --file other.yml  # Validate a specific file`,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a resrepo configuration file. Every problem is reported at once:
mount and link paths must be absolute repository paths, sources and tag
names must not be empty, and the dump file must stay below the root.

Examples:
  resrepo config validate              # Validate .resrepo.yml in current directory
  resrepo config validate --file config.yml  # Validate specific file`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the resolved configuration after loading the file, applying
RESREPO_* environment overrides and filling in defaults.

Examples:
  resrepo config show`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configFile string

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	configValidateCmd.Flags().
		StringVarP(&configFile, "file", "f", "", "Configuration file to validate (default: .resrepo.yml)")
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	targetFile := config.FindConfigFile(configFile)
	if targetFile == "" {
		return errors.New("no configuration file found. Use --file to specify a config file " +
			"or run 'resrepo init' to create one")
	}

	if _, err := os.Stat(targetFile); os.IsNotExist(err) {
		return fmt.Errorf("configuration file %s does not exist", targetFile)
	}

	fmt.Fprintf(out, "🔍 Validating configuration file: %s\n", targetFile)

	v := viper.New()
	if _, err := config.Init(v, targetFile); err != nil {
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	cfg, err := config.LoadFrom(v)
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return errors.New("configuration validation failed")
	}

	fmt.Fprintf(out, "✅ Configuration is valid: %d mounts, %d links, %d tag rules\n",
		len(cfg.Repository.Mounts), len(cfg.Repository.Links), len(cfg.Repository.Tags))

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "# Resolved from all sources (file, env vars, defaults)")

	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	return encoder.Close()
}
