package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/dejo1307/sjui/internal/server"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve build tools and reports over MCP on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}

		// Queries work right away when an earlier build left facts behind.
		if n := eng.LoadPrevious(); n > 0 {
			log.Printf("[main] loaded %d facts from previous build", n)
		}

		srv, err := server.New(eng, eng.Config())
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}
		return srv.Run(cmd.Context())
	},
}
