// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"math"
)

// PointsPerMM converts millimetres to PDF points (1/72 inch).
const PointsPerMM = 72.0 / 25.4

// PageConfig describes the target canvas in millimetres, as written in the
// config file.
type PageConfig struct {
	// Size is the canvas width and height in millimetres.
	Size []float64 `mapstructure:"size" json:"size" yaml:"size"`

	// DisplayWidth is the part of the canvas width that is visible on the
	// device. The remainder is reserved as a left margin (the bezel side).
	DisplayWidth float64 `mapstructure:"display_width" json:"display_width" yaml:"display_width"`

	// SquareSize is the edge length of one grid cell in millimetres.
	SquareSize float64 `mapstructure:"square_size" json:"square_size" yaml:"square_size"`
}

// LibraryConfig holds settings for writing into the device document library.
type LibraryConfig struct {
	// Root is the library directory. Its existence selects library mode.
	Root string `mapstructure:"directory_to_convert" json:"directory_to_convert" yaml:"directory_to_convert"`

	// ParentToConvert is the folder identifier whose documents are converted.
	ParentToConvert string `mapstructure:"parent_to_convert" json:"parent_to_convert" yaml:"parent_to_convert"`

	// ConvertedParent is the folder identifier written as parent of every
	// converted document.
	ConvertedParent string `mapstructure:"directory_converted" json:"directory_converted" yaml:"directory_converted"`

	// RestartService controls the end-of-run restart of the indexing service.
	RestartService bool `mapstructure:"execute_xochitl_restart" json:"execute_xochitl_restart" yaml:"execute_xochitl_restart"`

	// ServiceName is the systemd unit restarted after a library run.
	ServiceName string `mapstructure:"service_name" json:"service_name" yaml:"service_name"`

	// ContentTemplate optionally overrides the built-in .content template.
	ContentTemplate string `mapstructure:"content_template" json:"content_template,omitempty" yaml:"content_template,omitempty"`

	// MetadataTemplate optionally overrides the built-in .metadata template.
	MetadataTemplate string `mapstructure:"metadata_template" json:"metadata_template,omitempty" yaml:"metadata_template,omitempty"`
}

// LocalConfig holds the plain directory pair used when no library exists.
type LocalConfig struct {
	SourceDir    string `mapstructure:"directory_to_convert" json:"directory_to_convert" yaml:"directory_to_convert"`
	ConvertedDir string `mapstructure:"directory_converted" json:"directory_converted" yaml:"directory_converted"`
}

// SystemConfig groups the two output environments.
type SystemConfig struct {
	Library LibraryConfig `mapstructure:"remarkable" json:"remarkable" yaml:"remarkable"`
	Local   LocalConfig   `mapstructure:"local" json:"local" yaml:"local"`
}

// HistoryConfig controls the optional SQLite conversion ledger.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" json:"path" yaml:"path"`
}

// Config is the complete run configuration. It is loaded once at startup
// and never mutated afterwards.
type Config struct {
	Page    PageConfig    `mapstructure:"page" json:"page" yaml:"page"`
	System  SystemConfig  `mapstructure:"system" json:"system" yaml:"system"`
	LogFile string        `mapstructure:"log_file" json:"log_file" yaml:"log_file"`
	History HistoryConfig `mapstructure:"history" json:"history" yaml:"history"`
}

// DefaultConfig returns the configuration for a reMarkable 2 with the
// library at its stock location.
func DefaultConfig() Config {
	return Config{
		Page: PageConfig{
			Size:         []float64{157, 209},
			DisplayWidth: 153,
			SquareSize:   5,
		},
		System: SystemConfig{
			Library: LibraryConfig{
				Root:        "/home/root/.local/share/remarkable/xochitl/",
				ServiceName: "xochitl",
			},
			Local: LocalConfig{
				SourceDir:    "./convert/",
				ConvertedDir: "./converted/",
			},
		},
		LogFile: "./file-log.txt",
		History: HistoryConfig{
			Path: "./history.db",
		},
	}
}

// Validate reports the first missing or malformed setting, wrapped in
// ErrConfig.
func (c Config) Validate() error {
	if len(c.Page.Size) != 2 {
		return fmt.Errorf("%w: page.size needs exactly two values, got %d", ErrConfig, len(c.Page.Size))
	}
	if c.Page.Size[0] <= 0 || c.Page.Size[1] <= 0 {
		return fmt.Errorf("%w: page.size must be positive, got %v", ErrConfig, c.Page.Size)
	}
	if c.Page.DisplayWidth <= 0 || c.Page.DisplayWidth > c.Page.Size[0] {
		return fmt.Errorf("%w: page.display_width must be in (0, %g], got %g",
			ErrConfig, c.Page.Size[0], c.Page.DisplayWidth)
	}
	if gridPoints(c.Page.SquareSize) < 1 {
		return fmt.Errorf("%w: page.square_size must be at least one point, got %g mm", ErrConfig, c.Page.SquareSize)
	}
	if c.LogFile == "" {
		return fmt.Errorf("%w: log_file is required", ErrConfig)
	}
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("%w: history.path is required when history is enabled", ErrConfig)
	}
	return nil
}

// Canvas converts the page settings to a CanvasConfig in points. Call
// Validate first; Canvas does not check its input.
func (c Config) Canvas() CanvasConfig {
	return CanvasConfig{
		Width:        c.Page.Size[0] * PointsPerMM,
		Height:       c.Page.Size[1] * PointsPerMM,
		DisplayWidth: c.Page.DisplayWidth * PointsPerMM,
		GridSize:     gridPoints(c.Page.SquareSize),
	}
}

// gridPoints truncates the cell size to whole points so rules land on
// integer coordinates.
func gridPoints(mm float64) float64 {
	return math.Trunc(mm * PointsPerMM)
}

// CanvasConfig is the fixed target page every source page is composited
// onto. All values are in PDF points.
type CanvasConfig struct {
	Width        float64 `json:"width" yaml:"width"`
	Height       float64 `json:"height" yaml:"height"`
	DisplayWidth float64 `json:"display_width" yaml:"display_width"`
	GridSize     float64 `json:"grid_size" yaml:"grid_size"`
}

// LeftMargin returns the width reserved on the left of the canvas.
func (c CanvasConfig) LeftMargin() float64 {
	return c.Width - c.DisplayWidth
}
