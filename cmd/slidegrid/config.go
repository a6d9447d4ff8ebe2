// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the merged configuration as YAML",
	Long: `Show prints the configuration after defaults, the config file and
SLIDEGRID_* environment variables are merged. With --canvas it prints the
derived canvas in PDF points instead.`,
	RunE: runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	canvas, _ := cmd.Flags().GetBool("canvas")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var v any = cfg
	if canvas {
		v = cfg.Canvas()
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func init() {
	configShowCmd.Flags().Bool("canvas", false, "print the canvas in points")

	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
