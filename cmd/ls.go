package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:     "ls [PATH]",
	Aliases: []string{"l", "list"},
	Short:   "List the children of a directory",
	Long: `List the children of a repository directory, merged across every source
layered onto it. Defaults to the root.

Examples:
  resrepo ls                          # List the root
  resrepo ls /css -v                  # Include the layer count`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

var lsFlags *StandardFlags

func init() {
	rootCmd.AddCommand(lsCmd)

	lsFlags = AddStandardFlags(lsCmd, "output")
}

func runLs(cmd *cobra.Command, args []string) error {
	if err := lsFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	path := "/"
	if len(args) == 1 {
		path = args[0]
	}
	if err := validatePathArg(path); err != nil {
		return err
	}

	svc, err := openService(cmd.Context())
	if err != nil {
		return err
	}

	children, err := svc.ListChildren(path)
	if err != nil {
		return err
	}

	if lsFlags.Quiet {
		for _, r := range children {
			fmt.Fprintln(cmd.OutOrStdout(), r.Path)
		}
		return nil
	}

	return render(cmd.OutOrStdout(), lsFlags.OutputFormat, children, resourceTable(children, lsFlags.Verbose))
}
