package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/resrepo/internal/services"
	"github.com/conneroisu/resrepo/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the repository in step with its sources",
	Long: `Build the repository from config, then watch every mounted source. When
files appear or vanish the repository is updated: new entries join the layer
of their directory, removed sources lose their layer and empty directories
are pruned. The dump is rewritten after each batch unless --no-dump is
given.

Examples:
  resrepo watch                   # Watch all mounted sources
  resrepo watch --verbose         # Print every change
  resrepo watch --no-dump         # Watch without writing the dump`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var watchFlags *StandardFlags

func init() {
	rootCmd.AddCommand(watchCmd)

	watchFlags = AddStandardFlags(watchCmd, "output", "persist")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := watchFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	svc, cfg, err := newService()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	out := cmd.OutOrStdout()

	result, err := svc.Build(cmd.Context())
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	if err := persist(cmd.Context(), svc, watchFlags); err != nil {
		return err
	}
	fmt.Fprintf(out, "📁 Built %d resources from %d mounts\n", result.Resources, result.Mounts)

	fileWatcher, err := watcher.NewFileWatcher(cfg.Watch.Debounce,
		watcher.WithLogger(logger),
		watcher.WithIgnore(cfg.Watch.Ignore...),
	)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	fileWatcher.AddFilter(watcher.NoTempFilter)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fileWatcher.AddHandler(newWatchHandler(ctx, out, svc, watchFlags))

	fmt.Fprintln(out, "🔍 Setting up file watching...")
	for _, source := range svc.Sources() {
		if err := fileWatcher.AddRecursive(source); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to watch source %s: %v\n", source, err)
		} else if !watchFlags.Quiet {
			fmt.Fprintf(out, "   - Watching: %s\n", source)
		}
	}

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	fmt.Fprintln(out, "👀 Watching for changes... (Press Ctrl+C to stop)")

	<-ctx.Done()
	fmt.Fprintln(out, "\n🛑 Stopping file watcher...")

	return nil
}

// newWatchHandler applies each debounced batch to the repository, reports
// what changed and rewrites the dump.
func newWatchHandler(ctx context.Context, out io.Writer, svc *services.RepositoryService, flags *StandardFlags) watcher.ChangeHandler {
	return func(events []watcher.ChangeEvent) error {
		if flags.Verbose {
			fmt.Fprintf(out, "📁 File changes detected:\n")
			for _, event := range events {
				fmt.Fprintf(out, "   %s: %s\n", event.Type, event.Path)
			}
		}

		result, err := svc.ApplyEvents(ctx, events)
		if err != nil {
			return fmt.Errorf("failed to apply changes: %w", err)
		}
		if result.Empty() {
			return nil
		}

		if err := persist(ctx, svc, flags); err != nil {
			return err
		}

		if flags.Quiet {
			return nil
		}

		switch flags.OutputFormat {
		case "json", "yaml":
			return render(out, flags.OutputFormat, result, nil)
		}

		fmt.Fprintf(out, "📁 %d added, %d detached, %d pruned, %d modified\n",
			len(result.Added), len(result.Detached), len(result.Pruned), len(result.Modified))
		if flags.Verbose {
			for _, p := range result.Added {
				fmt.Fprintf(out, "   + %s\n", p)
			}
			for _, p := range result.Detached {
				fmt.Fprintf(out, "   - %s\n", p)
			}
			for _, p := range result.Pruned {
				fmt.Fprintf(out, "   x %s\n", p)
			}
		}

		return nil
	}
}
