package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Rebuild the repository from config and write the dump",
	Long: `Build the repository from the configured mounts, links and tag rules,
ignoring any existing dump, and write the result to dump.file. Later
commands load the dump instead of reading the sources again.

Examples:
  resrepo dump                        # Rebuild and write .resrepo/dump.yml
  resrepo dump -o json                # Report the build as JSON`,
	Args: cobra.NoArgs,
	RunE: runDump,
}

var dumpFlags *StandardFlags

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpFlags = AddStandardFlags(dumpCmd, "output")
}

type dumpReport struct {
	File      string `json:"file" yaml:"file"`
	Resources int    `json:"resources" yaml:"resources"`
	Mounts    int    `json:"mounts" yaml:"mounts"`
	Links     int    `json:"links" yaml:"links"`
	Tags      int    `json:"tags" yaml:"tags"`
	Duration  string `json:"duration" yaml:"duration"`
}

func runDump(cmd *cobra.Command, args []string) error {
	if err := dumpFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	svc, _, err := newService()
	if err != nil {
		return err
	}

	result, err := svc.Build(cmd.Context())
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	file, err := svc.SaveDump(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to write dump: %w", err)
	}

	if dumpFlags.Quiet {
		return nil
	}

	report := dumpReport{
		File:      file,
		Resources: result.Resources,
		Mounts:    result.Mounts,
		Links:     result.Links,
		Tags:      result.Tags,
		Duration:  result.Duration.String(),
	}

	return render(cmd.OutOrStdout(), dumpFlags.OutputFormat, report, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "Dump written:\t%s\n", report.File)
		fmt.Fprintf(w, "Resources:\t%d\n", report.Resources)
		fmt.Fprintf(w, "Mounts:\t%d\n", report.Mounts)
		fmt.Fprintf(w, "Links:\t%d\n", report.Links)
		fmt.Fprintf(w, "Tags:\t%d\n", report.Tags)
		if dumpFlags.Verbose {
			fmt.Fprintf(w, "Duration:\t%s\n", report.Duration)
		}
	})
}
