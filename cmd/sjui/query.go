package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:   "query <layout> <jsonpath>",
	Short: "Evaluate a JSONPath expression against a layout with includes resolved",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		p, err := eng.LayoutPath(args[0])
		if err != nil {
			return err
		}
		res, err := eng.Analyzer().Analyze(p)
		if err != nil {
			return err
		}
		matches, err := res.Query(args[1])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	},
}
