package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conneroisu/resrepo/internal/dump"
	"github.com/conneroisu/resrepo/internal/version"
)

var (
	versionFormat   string
	versionShort    bool
	versionDetailed bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for resrepo including:

- Semantic version number
- Git commit hash
- Build timestamp
- Go version used for compilation
- Target platform (OS/architecture)
- Dump format version read and written

Examples:
  resrepo version                 # Show version
  resrepo version --short         # Version and commit only
  resrepo version --detailed      # Show detailed version info
  resrepo version --format json   # Output as JSON`,
	Args: cobra.NoArgs,
	RunE: runVersionCommand,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", "text", "Output format (text, json, yaml)")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
	versionCmd.Flags().BoolVar(&versionDetailed, "detailed", false, "Show detailed version information")
}

func runVersionCommand(cmd *cobra.Command, args []string) error {
	info := version.Get(dump.FormatVersion)
	out := cmd.OutOrStdout()

	switch versionFormat {
	case "json", "yaml":
		return render(out, versionFormat, info, nil)
	case "text":
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json, yaml)", versionFormat)
	}

	switch {
	case versionShort:
		fmt.Fprintln(out, info.Short())
	case versionDetailed:
		fmt.Fprintln(out, info.Detailed())
		if info.Dirty {
			fmt.Fprintln(out, "Working directory: dirty")
		}
		if info.Release {
			fmt.Fprintln(out, "Build type: release")
		} else {
			fmt.Fprintln(out, "Build type: development")
		}
	default:
		w := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
		fmt.Fprintf(w, "resrepo %s\n", info.Short())
		if !info.BuildTime.IsZero() {
			fmt.Fprintf(w, "Built:\t%s\n", info.BuildTime.Format("2006-01-02 15:04:05 UTC"))
		}
		fmt.Fprintf(w, "Go:\t%s\n", info.GoVersion)
		fmt.Fprintf(w, "Platform:\t%s\n", info.Platform)
		fmt.Fprintf(w, "Dump format:\t%d\n", info.DumpFormat)
		return w.Flush()
	}

	return nil
}
