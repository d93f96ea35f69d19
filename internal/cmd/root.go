// Package cmd implements the pagekit command line.
package cmd

import (
	"fmt"

	"pagekit/internal/config"
	"pagekit/internal/models"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pagekit",
	Short: "Page runtime utilities for blog themes",
	Long: `pagekit runs the page runtime of a blog theme headlessly: rate limited
scroll and resize handling, smooth scrolling, lazy comment loading,
relative dates, copy feedback and the image gallery.

Use the subcommands to perform specific operations.`,
	SilenceUsage: true,
}

// Execute runs the root command. It is called by main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to configuration file (defaults plus PAGEKIT_* environment when empty)")
}

func loadConfig() (*models.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}
