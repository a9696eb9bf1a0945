package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/dejo1307/sjui/internal/dynamic"
	"github.com/dejo1307/sjui/internal/engine"
	"github.com/dejo1307/sjui/internal/hotreload"
)

var (
	hotloadBuild    bool
	hotloadConnect  string
	hotloadSnapshot string
)

func init() {
	hotloadCmd.Flags().BoolVar(&hotloadBuild, "build", false, "Rebuild bindings whenever a layout changes")
	hotloadCmd.Flags().StringVar(&hotloadConnect, "connect", "", "Run as a client of the server at this URL")
	hotloadCmd.Flags().StringVar(&hotloadSnapshot, "snapshot", "", "Client mode: persist the layout cache to this file")
	rootCmd.AddCommand(hotloadCmd)
}

var hotloadCmd = &cobra.Command{
	Use:   "hotload",
	Short: "Serve layout changes to running apps",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		if hotloadConnect != "" {
			return runHotloadClient(cmd.Context(), eng)
		}

		srv := hotreload.NewServer(eng.Config(), eng.Root())
		if hotloadBuild {
			srv.OnChange = func(ctx context.Context, changes []hotreload.Change) {
				if _, err := eng.Build(ctx, engine.BuildOptions{}); err != nil {
					log.Printf("[hotreload] rebuild failed: %v", err)
				}
			}
		}
		return srv.Run(cmd.Context())
	},
}

// runHotloadClient mirrors the server's layouts into a local cache, the
// way an app in development does.
func runHotloadClient(ctx context.Context, eng *engine.Engine) error {
	cache := dynamic.NewLayoutCache(eng.LayoutsDir())
	if hotloadSnapshot != "" {
		if err := cache.RestoreFile(hotloadSnapshot); err != nil {
			return fmt.Errorf("restoring %s: %w", hotloadSnapshot, err)
		}
		log.Printf("[hotreload] restored %d layouts from %s", len(cache.Keys()), hotloadSnapshot)
	}

	cl := hotreload.NewClient(hotloadConnect, eng.Config().Layouts, cache, dynamic.NewEventRegistry(nil))
	cl.OnChange = func(ch hotreload.Change, body []byte) {
		log.Printf("[hotreload] received %s/%s (%d bytes)", ch.Dir, ch.Path, len(body))
		if hotloadSnapshot == "" {
			return
		}
		if err := cache.SaveFile(hotloadSnapshot); err != nil {
			log.Printf("[hotreload] saving snapshot: %v", err)
		}
	}
	return cl.Run(ctx)
}
