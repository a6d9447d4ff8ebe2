// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/slidegrid/pkg/types"
)

// DocumentType is the metadata type of documents; folders use CollectionType.
const DocumentType = "DocumentType"

// Entry holds the metadata fields discovery cares about.
type Entry struct {
	ID          string `json:"-"`
	Deleted     bool   `json:"deleted"`
	Parent      string `json:"parent"`
	Type        string `json:"type"`
	VisibleName string `json:"visibleName"`
}

// IsDocument reports whether the entry is a live document. Entries without
// a type are treated as documents.
func (e Entry) IsDocument() bool {
	return !e.Deleted && (e.Type == "" || e.Type == DocumentType)
}

// ReadEntry parses a .metadata file. Errors wrap types.ErrDiscovery.
func ReadEntry(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: reading %s: %v", types.ErrDiscovery, path, err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("%w: parsing %s: %v", types.ErrDiscovery, path, err)
	}
	e.ID = strings.TrimSuffix(filepath.Base(path), ExtMetadata)
	return e, nil
}

// Paths returns the PDF, content, and metadata paths for id under root.
func Paths(root, id string) (pdf, content, metadata string) {
	stem := filepath.Join(root, id)
	return stem + ExtPDF, stem + ExtContent, stem + ExtMetadata
}
