// Package main implements the nvgrid command: a headless compositor for a
// remote Neovim instance. It attaches to the editor over msgpack-RPC, mirrors
// its grids, and composites frames into an offscreen surface that can be
// dumped as PNG screenshots.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"nvgrid/internal/config"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var (
	debugMode  bool
	cpuProfile string
	configPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nvgrid",
		Short: "Grid compositor for a headless Neovim",
		Long: `nvgrid - grid compositor for a headless Neovim

Attaches to a Neovim instance over msgpack-RPC with per-window grids,
mirrors its screen state, and composites floating windows, shadows and
blur into rendered frames.`,
		Example: `  # Spawn an embedded Neovim and render it
  nvgrid

  # Attach to a running instance
  nvgrid --address 127.0.0.1:7777

  # Render at a fixed grid size and save the last frame
  nvgrid --columns 120 --rows 40 --screenshot frame.png

  # Show the configuration file location
  nvgrid config path`,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: XDG config dir)")

	rootCmd.Flags().StringVar(&runOpts.address, "address", "", "Attach to a running instance instead of spawning one")
	rootCmd.Flags().IntVar(&runOpts.columns, "columns", 120, "Root grid width in cells")
	rootCmd.Flags().IntVar(&runOpts.rows, "rows", 40, "Root grid height in cells")
	rootCmd.Flags().StringVar(&runOpts.screenshot, "screenshot", "", "Write the final frame as PNG to this path")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage nvgrid configuration",
		Long:  `Manage the nvgrid configuration file and settings`,
	}

	configPathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printConfigPath()
		},
	}

	configResetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		Long: `Reset the nvgrid configuration file to default settings

This will overwrite your existing configuration after confirmation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return resetConfigToDefaults()
		},
	}

	configCmd.AddCommand(configPathCmd, configResetCmd)
	rootCmd.AddCommand(configCmd)

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(fmt.Sprintf("%s\nCommit: %s\nBuilt: %s", version, commit, date)),
	); err != nil {
		os.Exit(1)
	}
}

// resolveConfigPath honors the --config flag over the XDG default.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

func printConfigPath() error {
	path, err := resolveConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}
	fmt.Println(path)
	return nil
}

func resetConfigToDefaults() error {
	path, err := resolveConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Warning: This will overwrite your existing configuration at:\n")
		fmt.Printf("  %s\n\n", path)
		fmt.Printf("Are you sure you want to reset to defaults? (yes/no): ")

		var response string
		fmt.Scanln(&response)
		response = strings.ToLower(strings.TrimSpace(response))

		if response != "yes" && response != "y" {
			fmt.Println("Reset cancelled.")
			return nil
		}
	}

	if err := config.WriteDefault(path); err != nil {
		return err
	}
	fmt.Printf("Configuration reset to defaults\n")
	fmt.Printf("  Location: %s\n", path)
	return nil
}
