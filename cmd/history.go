package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/resrepo/internal/services"
)

var historyCmd = &cobra.Command{
	Use:   "history PATH",
	Short: "Show or restore the recorded versions of a path",
	Long: `Show every version recorded for a repository path, oldest first. Version
numbers start at 0. With --restore the locations of that version are put
back and the dump is rewritten unless --no-dump is given.

History lives in the dump only as far as the current state goes, so a
fresh process starts with one version per path.

Examples:
  resrepo history /css/style.css              # List versions
  resrepo history /css/style.css --restore 0  # Go back to version 0`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

var (
	historyFlags   *StandardFlags
	historyRestore int
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyFlags = AddStandardFlags(historyCmd, "output", "persist")
	historyCmd.Flags().IntVar(&historyRestore, "restore", -1, "Restore this version")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := historyFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if err := validatePathArg(args[0]); err != nil {
		return err
	}

	svc, err := openService(cmd.Context())
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("restore") {
		if historyRestore < 0 {
			return fmt.Errorf("--restore must not be negative, got %d", historyRestore)
		}

		restored, err := svc.Restore(args[0], historyRestore)
		if err != nil {
			return err
		}
		if err := persist(cmd.Context(), svc, historyFlags); err != nil {
			return err
		}

		if !historyFlags.Quiet {
			if restored == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Restored version %d of %s: no resource at this version\n", historyRestore, args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Restored version %d of %s (%d layers)\n", historyRestore, restored.Path, len(restored.Locations))
			}
		}
		return nil
	}

	h, err := svc.History(args[0])
	if err != nil {
		return err
	}

	if historyFlags.Quiet {
		for _, v := range h.Versions {
			fmt.Fprintln(cmd.OutOrStdout(), v.Version)
		}
		return nil
	}

	return render(cmd.OutOrStdout(), historyFlags.OutputFormat, h, historyTable(h))
}

func historyTable(h services.History) func(*tabwriter.Writer) {
	return func(w *tabwriter.Writer) {
		header(w, "version", "kind", "recorded", "locations")
		for _, v := range h.Versions {
			paths := make([]string, len(v.Locations))
			for i, loc := range v.Locations {
				paths[i] = loc.Path
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", v.Version, kindLabel(v.Kind), v.Recorded.Format(time.RFC3339), strings.Join(paths, ", "))
		}

		state := "live"
		if !h.Live {
			state = "removed"
		}
		fmt.Fprintf(w, "\nTotal: %d versions (%s)\n", len(h.Versions), state)
	}
}
