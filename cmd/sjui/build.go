package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dejo1307/sjui/internal/engine"
	"github.com/dejo1307/sjui/internal/facts"
)

var buildForce bool

func init() {
	buildCmd.Flags().BoolVarP(&buildForce, "force", "f", false, "Ignore the build cache and regenerate every layout")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate bindings and views for every layout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		snap, err := eng.Build(cmd.Context(), engine.BuildOptions{Force: buildForce})
		if err != nil {
			return fmt.Errorf("build: %w", err)
		}
		printMeta(snap.Meta, eng.CacheDir())
		if !snap.Meta.OK() {
			return fmt.Errorf("%d layouts failed", len(snap.Meta.Failed))
		}
		return nil
	},
}

func printMeta(m facts.SnapshotMeta, reports string) {
	fmt.Fprintf(os.Stderr, "\nBuild complete:\n")
	fmt.Fprintf(os.Stderr, "  Layouts:     %d\n", m.Layouts)
	fmt.Fprintf(os.Stderr, "  Regenerated: %d\n", len(m.Generated))
	fmt.Fprintf(os.Stderr, "  Up to date:  %d\n", m.Skipped)
	fmt.Fprintf(os.Stderr, "  Removed:     %d\n", len(m.Removed))
	fmt.Fprintf(os.Stderr, "  Written:     %d\n", m.Writes)
	fmt.Fprintf(os.Stderr, "  Insights:    %d\n", m.InsightCount)
	fmt.Fprintf(os.Stderr, "  Duration:    %s\n", m.Duration)
	fmt.Fprintf(os.Stderr, "  Reports:     %s\n", reports)
	for _, f := range m.Failed {
		fmt.Fprintf(os.Stderr, "  FAILED %s: %s\n", f.File, f.Error)
	}
}
