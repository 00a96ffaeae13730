package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/resrepo/internal/services"
)

var tagCmd = &cobra.Command{
	Use:   "tag PATTERN NAME",
	Short: "Tag every resource matching a pattern",
	Long: `Add a tag to every resource selected by a pattern. The tag is created on
first use. The dump is rewritten afterwards unless --no-dump is given.

Examples:
  resrepo tag '/css/*' stylesheet     # Tag everything below /css
  resrepo tag /index.html entry       # Tag a single resource`,
	Args: cobra.ExactArgs(2),
	RunE: runTag,
}

var untagCmd = &cobra.Command{
	Use:   "untag PATTERN [NAME...]",
	Short: "Remove tags from resources matching a pattern",
	Long: `Remove the named tags from every resource selected by a pattern, or every
tag when no name is given. A tag left without members disappears.

Examples:
  resrepo untag '/css/*' stylesheet   # Drop one tag
  resrepo untag /index.html           # Drop all tags of a resource`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUntag,
}

var (
	tagFlags   *StandardFlags
	untagFlags *StandardFlags
)

func init() {
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(untagCmd)

	tagFlags = AddStandardFlags(tagCmd, "output", "persist")
	untagFlags = AddStandardFlags(untagCmd, "output", "persist")
}

func runTag(cmd *cobra.Command, args []string) error {
	if err := tagFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if err := validatePathArg(args[0]); err != nil {
		return err
	}
	if err := validateTagName(args[1]); err != nil {
		return err
	}

	svc, err := openService(cmd.Context())
	if err != nil {
		return err
	}

	tagged, err := svc.Tag(args[0], args[1])
	if err != nil {
		return err
	}

	return finishMutation(cmd, svc, tagFlags, tagged)
}

func runUntag(cmd *cobra.Command, args []string) error {
	if err := untagFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if err := validatePathArg(args[0]); err != nil {
		return err
	}
	if err := validateTagNames(args[1:]); err != nil {
		return err
	}

	svc, err := openService(cmd.Context())
	if err != nil {
		return err
	}

	untagged, err := svc.Untag(args[0], args[1:]...)
	if err != nil {
		return err
	}

	return finishMutation(cmd, svc, untagFlags, untagged)
}

// finishMutation persists the repository unless --no-dump was given and
// reports the affected resources.
func finishMutation(cmd *cobra.Command, svc *services.RepositoryService, flags *StandardFlags, resources []services.Resource) error {
	if err := persist(cmd.Context(), svc, flags); err != nil {
		return err
	}

	if flags.Quiet {
		return nil
	}

	return render(cmd.OutOrStdout(), flags.OutputFormat, resources, resourceTable(resources, flags.Verbose))
}

func persist(ctx context.Context, svc *services.RepositoryService, flags *StandardFlags) error {
	if flags.NoDump {
		return nil
	}

	if _, err := svc.SaveDump(ctx); err != nil {
		return fmt.Errorf("failed to write dump: %w", err)
	}

	return nil
}
