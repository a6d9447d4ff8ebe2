// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package grid renders the ruled background page that converted pages are
// composited onto.
package grid

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/color"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/draw"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/pdiddy/slidegrid/internal/layout"
	"github.com/pdiddy/slidegrid/pkg/types"
)

// ruleWidth is the stroke width of the grid rules in points.
const ruleWidth = 1

var (
	ruleColor = color.Gray
	maskColor = color.White
)

// Rule is one grid line from (X1, Y1) to (X2, Y2) in canvas points.
type Rule struct {
	X1, Y1, X2, Y2 float64
}

// Generator draws backgrounds for one canvas.
type Generator struct {
	canvas types.CanvasConfig
}

// NewGenerator returns a Generator for canvas. The grid size must be
// positive; config validation guarantees it.
func NewGenerator(canvas types.CanvasConfig) *Generator {
	return &Generator{canvas: canvas}
}

// Mask returns the opaque rectangle drawn under a page whose scaled size
// is scaledW x scaledH. It covers exactly the area where the compositor
// places the transformed page, so transparent regions of the page show
// white instead of the grid.
func (g *Generator) Mask(scaledW, scaledH float64) layout.Rect {
	margin := g.canvas.LeftMargin()
	if layout.Classify(scaledW, scaledH) == layout.Wide {
		return layout.Rect{X: margin, Y: g.canvas.Height - scaledH, Width: scaledW, Height: scaledH}
	}
	// Tall pages are turned a quarter, so the footprint swaps sides.
	return layout.Rect{X: margin, Y: 0, Width: scaledH, Height: scaledW}
}

// Rules returns the grid lines in drawing order: horizontal rules from the
// margin to the right edge, then vertical rules over the full height. No
// rule sits on the top or right edge of the canvas.
func (g *Generator) Rules() []Rule {
	c := g.canvas
	if c.GridSize <= 0 {
		return nil
	}
	margin := c.LeftMargin()

	var rules []Rule
	for y := 0.0; y < c.Height; y += c.GridSize {
		rules = append(rules, Rule{X1: margin, Y1: y, X2: c.Width, Y2: y})
	}
	for x := margin; x < c.Width; x += c.GridSize {
		rules = append(rules, Rule{X1: x, Y1: 0, X2: x, Y2: c.Height})
	}
	return rules
}

// Background returns a single-page PDF of canvas size holding the grid and
// the mask for a page of scaled size scaledW x scaledH. The mask is drawn
// last so it covers the rules.
func (g *Generator) Background(scaledW, scaledH float64) ([]byte, error) {
	c := g.canvas
	if c.GridSize <= 0 {
		return nil, fmt.Errorf("%w: grid size must be positive, got %g", types.ErrConfig, c.GridSize)
	}

	page := model.NewPage(pdftypes.RectForDim(c.Width, c.Height), nil)
	for _, r := range g.Rules() {
		draw.DrawLine(page.Buf, r.X1, r.Y1, r.X2, r.Y2, ruleWidth, &ruleColor, nil)
	}
	m := g.Mask(scaledW, scaledH)
	draw.FillRect(page.Buf, pdftypes.NewRectangle(m.X, m.Y, m.X+m.Width, m.Y+m.Height), ruleWidth, nil, maskColor, nil)

	xRefTable, err := pdfcpu.CreateXRefTableWithRootDict()
	if err != nil {
		return nil, fmt.Errorf("creating background: %w", err)
	}
	rootDict, err := xRefTable.Catalog()
	if err != nil {
		return nil, fmt.Errorf("creating background: %w", err)
	}
	if err := pdfcpu.AddPageTreeWithSamplePage(xRefTable, rootDict, page); err != nil {
		return nil, fmt.Errorf("adding background page: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx := pdfcpu.CreateContext(xRefTable, conf)

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, fmt.Errorf("writing background: %w", err)
	}
	return buf.Bytes(), nil
}
