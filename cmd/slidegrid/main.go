// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the slidegrid CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/slidegrid/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is configured from --verbose before any subcommand runs.
var logger = log.Default()

// rootCmd is the base command for the slidegrid CLI.
var rootCmd = &cobra.Command{
	Use:   "slidegrid",
	Short: "Fit presentation PDFs onto a grid canvas for reMarkable tablets",
	Long: `slidegrid rescales every page of a PDF onto a fixed canvas with a grid
background and room to write notes next to the slide. Portrait pages are
rotated a quarter turn so they span the display width.

On the tablet, documents in the configured source folder of the document
library are converted into new library documents. Elsewhere, PDFs in the
local source directory are converted into the local output directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		level := log.InfoLevel
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = log.DebugLevel
		}
		logger = newLogger(os.Stderr, level)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./slidegrid.yaml or ~/.config/slidegrid/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("slidegrid")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "slidegrid"))
		}
	}

	setDefaults(types.DefaultConfig())

	viper.SetEnvPrefix("SLIDEGRID")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so environment overrides apply
// even when the config file omits the key.
func setDefaults(cfg types.Config) {
	viper.SetDefault("page.size", cfg.Page.Size)
	viper.SetDefault("page.display_width", cfg.Page.DisplayWidth)
	viper.SetDefault("page.square_size", cfg.Page.SquareSize)

	lib := cfg.System.Library
	viper.SetDefault("system.remarkable.directory_to_convert", lib.Root)
	viper.SetDefault("system.remarkable.parent_to_convert", lib.ParentToConvert)
	viper.SetDefault("system.remarkable.directory_converted", lib.ConvertedParent)
	viper.SetDefault("system.remarkable.execute_xochitl_restart", lib.RestartService)
	viper.SetDefault("system.remarkable.service_name", lib.ServiceName)
	viper.SetDefault("system.remarkable.content_template", lib.ContentTemplate)
	viper.SetDefault("system.remarkable.metadata_template", lib.MetadataTemplate)

	viper.SetDefault("system.local.directory_to_convert", cfg.System.Local.SourceDir)
	viper.SetDefault("system.local.directory_converted", cfg.System.Local.ConvertedDir)

	viper.SetDefault("log_file", cfg.LogFile)
	viper.SetDefault("history.enabled", cfg.History.Enabled)
	viper.SetDefault("history.path", cfg.History.Path)
}

// loadConfig decodes and validates the effective configuration.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("%w: decoding config: %v", types.ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

func main() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
