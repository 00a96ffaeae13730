package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:     "find PATTERN",
	Aliases: []string{"f"},
	Short:   "Find resources by path pattern",
	Long: `Find every resource whose path matches a pattern. "*" matches any run of
characters, including "/". Use "\*" for a literal star. A pattern without a
wildcard behaves exactly like get.

Quote patterns so the shell does not expand them.

Examples:
  resrepo find '/css/*'               # Everything below /css
  resrepo find '/*.css'               # Every stylesheet at any depth
  resrepo find '/*' -o yaml           # The whole repository as YAML`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

var findFlags *StandardFlags

func init() {
	rootCmd.AddCommand(findCmd)

	findFlags = AddStandardFlags(findCmd, "output")
}

func runFind(cmd *cobra.Command, args []string) error {
	if err := findFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if err := validatePathArg(args[0]); err != nil {
		return err
	}

	svc, err := openService(cmd.Context())
	if err != nil {
		return err
	}

	resources, err := svc.Find(args[0])
	if err != nil {
		return err
	}

	if findFlags.Quiet {
		for _, r := range resources {
			fmt.Fprintln(cmd.OutOrStdout(), r.Path)
		}
		return nil
	}

	return render(cmd.OutOrStdout(), findFlags.OutputFormat, resources, resourceTable(resources, findFlags.Verbose))
}
