package main

import (
	"fmt"
	"os"

	"github.com/mkingstonsqr/tile-notes/config"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "tilenotes",
	Short: "TileNotes API server",
	Long: `TileNotes serves a grid of notes and tasks, enriching notes
with AI tags, summaries and extracted tasks once edits settle.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// loadConfig loads configuration and starts logging for every subcommand.
func loadConfig() (config.Config, error) {
	conf, err := config.LoadConfig(configPath)
	if err != nil {
		return conf, fmt.Errorf("load config: %w", err)
	}
	if err := config.InitLogger(conf.Environment); err != nil {
		return conf, fmt.Errorf("init logger: %w", err)
	}
	return conf, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory holding the .env file")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
