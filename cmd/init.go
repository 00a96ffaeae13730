package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/resrepo/internal/config"
)

var initCmd = &cobra.Command{
	Use:     "init [SOURCE...]",
	Aliases: []string{"i"},
	Short:   "Create a .resrepo.yml for the current directory",
	Long: `Write a starter configuration that mounts every SOURCE at the repository
root, in the given order, so later sources shadow earlier ones. Missing
source directories are created. Without arguments a single "assets"
directory is used.

An existing configuration is kept unless --force is given.

Examples:
  resrepo init                         # Mount ./assets at /
  resrepo init base theme              # theme shadows base
  resrepo init --force vendor site     # Overwrite the existing config`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
}

const configHeader = `# resrepo configuration file
# Mounts are applied in order; a later source shadows an earlier one.
`

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	sources := args
	if len(sources) == 0 {
		sources = []string{"assets"}
	}

	if _, err := os.Stat(config.DefaultFile); err == nil && !initForce {
		fmt.Fprintf(out, "⚠ %s already exists, use --force to overwrite\n", config.DefaultFile)
		return nil
	}

	for _, source := range sources {
		if filepath.IsAbs(source) {
			continue
		}
		if err := os.MkdirAll(source, 0o755); err != nil {
			return fmt.Errorf("failed to create source directory %s: %w", source, err)
		}
	}

	data, err := yaml.Marshal(starterConfig(sources))
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	if err := os.WriteFile(config.DefaultFile, append([]byte(configHeader), data...), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(out, "✓ Created %s with %d mounts\n", config.DefaultFile, len(sources))
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. resrepo dump")
	fmt.Fprintln(out, "  2. resrepo ls /")

	return nil
}

func starterConfig(sources []string) *config.Config {
	cfg := &config.Config{
		Repository: config.RepositoryConfig{RootDir: "."},
		History:    config.HistoryConfig{Enabled: true},
		Dump:       config.DumpConfig{File: ".resrepo/dump.yml"},
		Watch: config.WatchConfig{
			Debounce: 300 * time.Millisecond,
			Ignore:   []string{".git", "node_modules", ".resrepo"},
		},
		Log: config.LogConfig{Level: "info", Format: "text"},
	}

	for _, source := range sources {
		cfg.Repository.Mounts = append(cfg.Repository.Mounts, config.Mount{Path: "/", Source: source})
	}

	return cfg
}
