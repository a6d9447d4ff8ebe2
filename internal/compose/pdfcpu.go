// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compose

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/pdiddy/slidegrid/internal/layout"
)

// PDFCPUEngine implements Engine with pdfcpu. Source pages are applied to
// the background as PDF stamps: pdfcpu wraps the page in a form XObject
// and draws it on top of the existing content with the requested rotation,
// absolute scale, and bottom-left offset.
type PDFCPUEngine struct{}

// NewPDFCPUEngine returns an engine using relaxed validation, which accepts
// the slightly malformed files presentation tools tend to export.
func NewPDFCPUEngine() *PDFCPUEngine {
	return &PDFCPUEngine{}
}

// config returns a fresh configuration per call; pdfcpu records the
// running command on it.
func (e *PDFCPUEngine) config() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

func (e *PDFCPUEngine) PageDims(path string) ([]layout.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	ctx, err := api.ReadContext(f, e.config())
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("page dimensions of %s: %w", path, err)
	}

	pages := make([]layout.Page, len(dims))
	for i, d := range dims {
		pages[i] = layout.Page{Width: d.Width, Height: d.Height}
	}
	return pages, nil
}

func (e *PDFCPUEngine) Stamp(background []byte, srcPath string, pageNr int, p layout.Placement, bounds layout.Rect) ([]byte, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", srcPath, err)
	}
	defer f.Close()

	// The source is passed as a reader; pdfcpu's file:page syntax cannot
	// carry paths containing a colon.
	wm, err := api.PDFWatermarkForReadSeeker(f, pageNr, stampDescription(p, bounds), true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("preparing stamp: %w", err)
	}

	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(background), &out, nil, wm, e.config()); err != nil {
		return nil, fmt.Errorf("stamping page %d: %w", pageNr, err)
	}
	return out.Bytes(), nil
}

func (e *PDFCPUEngine) Compress(doc []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := api.Optimize(bytes.NewReader(doc), &out, e.config()); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func (e *PDFCPUEngine) Assemble(pages [][]byte, w io.Writer) error {
	rsc := make([]io.ReadSeeker, len(pages))
	for i, p := range pages {
		rsc[i] = bytes.NewReader(p)
	}
	return api.MergeRaw(rsc, w, false, e.config())
}

// stampDescription renders the pdfcpu stamp parameters for a placement.
// pdfcpu positions the bounding box of the rotated stamp, so the offset is
// the lower-left corner of bounds rather than the translation of p.
func stampDescription(p layout.Placement, bounds layout.Rect) string {
	return fmt.Sprintf("position:bl, offset:%.4f %.4f, rotation:%d, scalefactor:%.6f abs, opacity:1",
		bounds.X, bounds.Y, int(p.Rotation), p.Scale)
}
