// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compose turns a source PDF into a grid-backgrounded document
// sized for the target canvas. PDF reading and writing go through an Engine
// so the per-page pipeline can be tested without real documents.
package compose

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/slidegrid/internal/grid"
	"github.com/pdiddy/slidegrid/internal/layout"
	"github.com/pdiddy/slidegrid/pkg/types"
)

// Engine is the PDF library surface the compositor needs.
type Engine interface {
	// PageDims reads the document at path and returns the media box of
	// every page in order.
	PageDims(path string) ([]layout.Page, error)

	// Stamp transforms page pageNr (1-based) of srcPath by p and merges it
	// over the single-page background. bounds is the canvas rectangle the
	// transformed page covers. It returns the merged single-page document.
	Stamp(background []byte, srcPath string, pageNr int, p layout.Placement, bounds layout.Rect) ([]byte, error)

	// Compress rewrites a document with compressed content streams.
	Compress(doc []byte) ([]byte, error)

	// Assemble concatenates single-page documents in order and writes the
	// result to w.
	Assemble(pages [][]byte, w io.Writer) error
}

// Compositor converts whole documents page by page.
type Compositor struct {
	engine Engine
	canvas types.CanvasConfig
	grid   *grid.Generator
	logger *log.Logger
}

// NewCompositor returns a Compositor drawing onto canvas.
func NewCompositor(engine Engine, canvas types.CanvasConfig, logger *log.Logger) *Compositor {
	return &Compositor{
		engine: engine,
		canvas: canvas,
		grid:   grid.NewGenerator(canvas),
		logger: logger,
	}
}

// Document converts the PDF at path and returns the finished document and
// its page count. Any page failure aborts the whole document.
func (c *Compositor) Document(ctx context.Context, path string) ([]byte, int, error) {
	pages, err := c.engine.PageDims(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: reading %s: %v", types.ErrPageTransform, path, err)
	}
	if len(pages) == 0 {
		return nil, 0, fmt.Errorf("%w: %s has no pages", types.ErrPageTransform, path)
	}

	out := make([][]byte, 0, len(pages))
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		composed, err := c.Page(path, i+1, page)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, composed)
	}

	var buf bytes.Buffer
	if err := c.engine.Assemble(out, &buf); err != nil {
		return nil, 0, fmt.Errorf("%w: assembling %s: %v", types.ErrPageTransform, path, err)
	}
	return buf.Bytes(), len(pages), nil
}

// Page composes page pageNr of path onto a fresh background: place,
// draw the background for the scaled size, stamp, then compress.
func (c *Compositor) Page(path string, pageNr int, page layout.Page) ([]byte, error) {
	p := layout.Place(page, c.canvas)
	bounds := p.Bounds(page)
	c.logger.Debug("placing page",
		"file", path, "page", pageNr,
		"orientation", layout.Classify(page.Width, page.Height),
		"scale", p.Scale, "bounds", bounds)

	bg, err := c.grid.Background(p.Scaled(page))
	if err != nil {
		return nil, err
	}

	stamped, err := c.engine.Stamp(bg, path, pageNr, p, bounds)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d of %s: %v", types.ErrPageTransform, pageNr, path, err)
	}

	compressed, err := c.engine.Compress(stamped)
	if err != nil {
		return nil, fmt.Errorf("%w: compressing page %d of %s: %v", types.ErrPageTransform, pageNr, path, err)
	}
	return compressed, nil
}
