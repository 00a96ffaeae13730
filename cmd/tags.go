package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags [NAME]",
	Short: "List tags or the members of one tag",
	Long: `Without an argument, list every tag in creation order with its member
count. With a tag name, list the resources currently carrying it.

Examples:
  resrepo tags                        # All tags
  resrepo tags stylesheet             # Members of one tag
  resrepo tags -o json                # Tags and members as JSON`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTags,
}

var tagsFlags *StandardFlags

func init() {
	rootCmd.AddCommand(tagsCmd)

	tagsFlags = AddStandardFlags(tagsCmd, "output")
}

type tagSummary struct {
	Name    string   `json:"name" yaml:"name"`
	Members []string `json:"members" yaml:"members"`
}

func runTags(cmd *cobra.Command, args []string) error {
	if err := tagsFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	svc, err := openService(cmd.Context())
	if err != nil {
		return err
	}

	if len(args) == 1 {
		if err := validateTagName(args[0]); err != nil {
			return err
		}
		members, err := svc.GetByTag(args[0])
		if err != nil {
			return err
		}
		if tagsFlags.Quiet {
			for _, r := range members {
				fmt.Fprintln(cmd.OutOrStdout(), r.Path)
			}
			return nil
		}
		return render(cmd.OutOrStdout(), tagsFlags.OutputFormat, members, resourceTable(members, tagsFlags.Verbose))
	}

	members, names, err := svc.Tags()
	if err != nil {
		return err
	}

	summaries := make([]tagSummary, len(names))
	for i, name := range names {
		summaries[i] = tagSummary{Name: name, Members: members[name]}
	}

	if tagsFlags.Quiet {
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	return render(cmd.OutOrStdout(), tagsFlags.OutputFormat, summaries, func(w *tabwriter.Writer) {
		header(w, "tag", "members")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%d\n", s.Name, len(s.Members))
		}
		fmt.Fprintf(w, "\nTotal: %d tags\n", len(summaries))
	})
}
