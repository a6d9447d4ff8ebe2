// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library reads and writes the companion files of the device
// document store. Every document there is a set of files sharing one
// identifier stem: <id>.pdf, <id>.content and <id>.metadata.
package library

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	ExtPDF      = ".pdf"
	ExtContent  = ".content"
	ExtMetadata = ".metadata"
)

// Template tokens replaced when rendering descriptors.
const (
	tokenPageCount    = "XX-PAGE-COUNT-XX"
	tokenParent       = "XX-PARENT-XX"
	tokenVisibleName  = "XX-VISIBLE-FILENAME-XX"
	tokenLastModified = "XX-LAST-MODIFIED-XX"
)

var (
	//go:embed templates/content.json
	defaultContentTemplate string

	//go:embed templates/metadata.json
	defaultMetadataTemplate string
)

// Content is the page-count descriptor of a document.
type Content struct {
	PageCount int
}

// Metadata is the placement and naming descriptor of a document.
type Metadata struct {
	Parent       string
	VisibleName  string
	LastModified time.Time
}

// DescriptorWriter renders descriptor records.
type DescriptorWriter interface {
	WriteContent(w io.Writer, c Content) error
	WriteMetadata(w io.Writer, m Metadata) error
}

// TemplateWriter renders descriptors by token substitution into JSON
// template text. String values are JSON-escaped before substitution.
type TemplateWriter struct {
	content  string
	metadata string
}

// NewTemplateWriter loads the content and metadata templates. An empty path
// selects the built-in template.
func NewTemplateWriter(contentPath, metadataPath string) (*TemplateWriter, error) {
	content, err := loadTemplate(contentPath, defaultContentTemplate)
	if err != nil {
		return nil, err
	}
	metadata, err := loadTemplate(metadataPath, defaultMetadataTemplate)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(content, tokenPageCount) {
		return nil, fmt.Errorf("content template %s has no %s token", describe(contentPath), tokenPageCount)
	}
	for _, tok := range []string{tokenParent, tokenVisibleName} {
		if !strings.Contains(metadata, tok) {
			return nil, fmt.Errorf("metadata template %s has no %s token", describe(metadataPath), tok)
		}
	}
	return &TemplateWriter{content: content, metadata: metadata}, nil
}

func loadTemplate(path, fallback string) (string, error) {
	if path == "" {
		return fallback, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading template: %w", err)
	}
	return string(data), nil
}

func describe(path string) string {
	if path == "" {
		return "(built-in)"
	}
	return filepath.Base(path)
}

func (t *TemplateWriter) WriteContent(w io.Writer, c Content) error {
	r := strings.NewReplacer(tokenPageCount, strconv.Itoa(c.PageCount))
	_, err := r.WriteString(w, t.content)
	return err
}

func (t *TemplateWriter) WriteMetadata(w io.Writer, m Metadata) error {
	r := strings.NewReplacer(
		tokenParent, jsonEscape(m.Parent),
		tokenVisibleName, jsonEscape(m.VisibleName),
		tokenLastModified, strconv.FormatInt(m.LastModified.UnixMilli(), 10),
	)
	_, err := r.WriteString(w, t.metadata)
	return err
}

// jsonEscape returns s encoded as the inside of a JSON string literal.
func jsonEscape(s string) string {
	b, _ := json.Marshal(s)
	return string(b[1 : len(b)-1])
}
