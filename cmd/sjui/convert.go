package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dejo1307/sjui/internal/project"
)

func init() {
	convertCmd.AddCommand(toGroupCmd)
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert host project structure",
}

var toGroupCmd = &cobra.Command{
	Use:   "to-group <dir>",
	Short: "Turn a directory into a folder-synchronized project group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		gc, ok := eng.Mutator().(project.GroupConverter)
		if !ok {
			return errors.New("no project manifest configured")
		}
		if err := gc.ConvertToGroup(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("converting %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now a synchronized group\n", args[0])
		return nil
	},
}
