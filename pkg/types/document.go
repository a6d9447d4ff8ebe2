// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SourceDocument is a PDF selected for conversion.
type SourceDocument struct {
	// Path is the filesystem path of the source PDF.
	Path string `json:"path" yaml:"path"`

	// VisibleName is the display name. In library mode it comes from the
	// document's metadata; in local mode it is the filename.
	VisibleName string `json:"visible_name" yaml:"visible_name"`
}

// OutputMode selects where converted documents are written.
type OutputMode string

const (
	ModeLocal   OutputMode = "local"
	ModeLibrary OutputMode = "library"
)

// OutputTarget is resolved once per run and fixed for every document.
type OutputTarget struct {
	Mode OutputMode `json:"mode" yaml:"mode"`

	// ConvertedDir is the destination directory in local mode.
	ConvertedDir string `json:"converted_dir,omitempty" yaml:"converted_dir,omitempty"`

	// LibraryRoot is the document store directory in library mode.
	LibraryRoot string `json:"library_root,omitempty" yaml:"library_root,omitempty"`

	// Parent is the folder identifier assigned to converted documents in
	// library mode.
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// ConversionRecord is one entry of the conversion history ledger.
type ConversionRecord struct {
	SourcePath  string     `json:"source_path" yaml:"source_path"`
	OutputPath  string     `json:"output_path" yaml:"output_path"`
	Mode        OutputMode `json:"mode" yaml:"mode"`
	DocumentID  string     `json:"document_id,omitempty" yaml:"document_id,omitempty"`
	VisibleName string     `json:"visible_name" yaml:"visible_name"`
	PageCount   int        `json:"page_count" yaml:"page_count"`
	ConvertedAt time.Time  `json:"converted_at" yaml:"converted_at"`
}
