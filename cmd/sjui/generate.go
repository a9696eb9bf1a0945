package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dejo1307/sjui/internal/scaffold"
)

var generateForce bool

func init() {
	generateCmd.Flags().BoolVarP(&generateForce, "force", "f", false, "Overwrite existing files")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:     "generate <" + strings.Join(scaffold.Kinds(), "|") + "> <name>",
	Aliases: []string{"g"},
	Short:   "Scaffold a new layout, partial, custom component or adapter",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		s := scaffold.New(eng.Config(), eng.Root(), eng.Mutator())
		s.Force = generateForce

		res, err := s.Generate(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, f := range res.Files {
			fmt.Fprintf(out, "  created %s\n", f)
		}
		for _, n := range res.Notes {
			fmt.Fprintf(out, "\n%s\n", n)
		}
		return nil
	},
}
