package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dejo1307/sjui/internal/config"
	"github.com/dejo1307/sjui/internal/engine"
)

var (
	cfgPath  string
	rootPath string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to sjui.config.yaml (default: looked up in --root)")
	rootCmd.PersistentFlags().StringVarP(&rootPath, "root", "r", ".", "Project root directory")
}

var rootCmd = &cobra.Command{
	Use:           "sjui",
	Short:         "Compile JSON layouts into Swift bindings and SwiftUI views",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// stdout carries JSON-RPC in mcp mode and query output elsewhere.
	log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves the project root and reads its configuration. A
// missing or unreadable config falls back to the defaults.
func loadConfig() (*config.Config, string, error) {
	root, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, "", fmt.Errorf("resolving root: %w", err)
	}
	p := cfgPath
	if p == "" {
		p = config.Find(root)
	}
	if p == "" {
		return config.Default(), root, nil
	}
	cfg, err := config.Load(p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using defaults\n", err)
		cfg = config.Default()
	}
	return cfg, root, nil
}

// newEngine creates an engine with the default generators and diagnostics.
func newEngine() (*engine.Engine, error) {
	cfg, root, err := loadConfig()
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(cfg, root)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	eng.RegisterDefaults()
	return eng, nil
}
