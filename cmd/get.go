package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/resrepo/internal/services"
)

var getCmd = &cobra.Command{
	Use:   "get PATH",
	Short: "Show one resource and its backing layers",
	Long: `Show the resource at a repository path. The path is taken literally: a
"*" in it is not a wildcard here, use find for patterns.

Layers are listed oldest first; the last one wins for single reads.

Examples:
  resrepo get /css/style.css          # Show the resource
  resrepo get /css/style.css -m       # Include size and timestamps
  resrepo get /index.html -o json     # Output as JSON`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

var (
	getFlags    *StandardFlags
	getMetadata bool
)

func init() {
	rootCmd.AddCommand(getCmd)

	getFlags = AddStandardFlags(getCmd, "output")
	getCmd.Flags().BoolVarP(&getMetadata, "metadata", "m", false, "Include size and timestamps of the winning location")
}

type getResult struct {
	services.Resource `yaml:",inline"`
	Metadata          *services.Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

func runGet(cmd *cobra.Command, args []string) error {
	if err := getFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if err := validatePathArg(args[0]); err != nil {
		return err
	}

	svc, err := openService(cmd.Context())
	if err != nil {
		return err
	}

	r, err := svc.Get(args[0])
	if err != nil {
		return err
	}

	result := getResult{Resource: r}
	if getMetadata {
		md, err := svc.Metadata(r.Path)
		if err != nil {
			return err
		}
		result.Metadata = &md
	}

	if getFlags.Quiet {
		fmt.Fprintln(cmd.OutOrStdout(), r.Location)
		return nil
	}

	return render(cmd.OutOrStdout(), getFlags.OutputFormat, result, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "Path:\t%s\n", r.Path)
		fmt.Fprintf(w, "Kind:\t%s\n", kindLabel(r.Kind))
		if r.Location != "" {
			fmt.Fprintf(w, "Location:\t%s\n", r.Location)
		}
		for i, loc := range r.Locations {
			fmt.Fprintf(w, "Layer %d:\t%s\t%s\n", i, loc.Path, loc.Mount)
		}
		if len(r.Children) > 0 {
			fmt.Fprintf(w, "Children:\t%s\n", strings.Join(r.Children, ", "))
		}
		if len(r.Tags) > 0 {
			fmt.Fprintf(w, "Tags:\t%s\n", strings.Join(r.Tags, ", "))
		}
		if md := result.Metadata; md != nil {
			fmt.Fprintf(w, "Size:\t%d\n", md.Size)
			if !md.ModTime.IsZero() {
				fmt.Fprintf(w, "Modified:\t%s\n", md.ModTime.Format(time.RFC3339))
			}
		}
	})
}
