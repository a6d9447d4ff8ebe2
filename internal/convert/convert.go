// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert drives a conversion run: each discovered document is
// composed onto the grid canvas and handed to the output router.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/slidegrid/internal/output"
	"github.com/pdiddy/slidegrid/internal/service"
	"github.com/pdiddy/slidegrid/pkg/types"
)

// Composer turns a source PDF into the converted document and its page
// count. *compose.Compositor implements it.
type Composer interface {
	Document(ctx context.Context, path string) ([]byte, int, error)
}

// Deliverer writes a converted document to the output target.
// *output.Router implements it.
type Deliverer interface {
	Target() types.OutputTarget
	Deliver(req output.Request, doc []byte) (output.Result, error)
}

// Recorder stores a ledger entry for every converted document.
// *history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, rec types.ConversionRecord) error
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of documents processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any documents failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Pipeline converts documents one at a time.
type Pipeline struct {
	Composer Composer
	Output   Deliverer
	Logger   *log.Logger

	// History is optional. Ledger failures are logged, never fatal.
	History Recorder

	// Restarter is optional. When set, it runs once at the end of a batch
	// in library mode.
	Restarter service.Restarter

	now func() time.Time
}

// ConvertDocument composes doc and delivers it. Nothing is written when
// composition fails.
func (p *Pipeline) ConvertDocument(ctx context.Context, doc types.SourceDocument) (output.Result, error) {
	composed, pages, err := p.Composer.Document(ctx, doc.Path)
	if err != nil {
		return output.Result{}, err
	}

	res, err := p.Output.Deliver(output.Request{Source: doc, PageCount: pages}, composed)
	if err != nil {
		return output.Result{}, err
	}
	p.Logger.Info("converted", "name", doc.VisibleName, "pages", pages, "output", res.Path)

	if p.History != nil {
		rec := types.ConversionRecord{
			SourcePath:  doc.Path,
			OutputPath:  res.Path,
			Mode:        p.Output.Target().Mode,
			DocumentID:  res.DocumentID,
			VisibleName: doc.VisibleName,
			PageCount:   pages,
			ConvertedAt: p.clock(),
		}
		if err := p.History.Record(ctx, rec); err != nil {
			p.Logger.Warn("could not record history", "name", doc.VisibleName, "err", err)
		}
	}
	return res, nil
}

// ConvertBatch converts docs in order, printing per-document status to w
// and returning a summary. A failed document does not stop the batch.
// Cancelling ctx stops the batch between documents; the remaining
// documents are counted as skipped.
func (p *Pipeline) ConvertBatch(ctx context.Context, docs []types.SourceDocument, w io.Writer) BatchResult {
	var result BatchResult
	for i, doc := range docs {
		if ctx.Err() != nil {
			result.Skipped = len(docs) - i
			fmt.Fprintf(w, "stopped: %d document(s) not converted\n", result.Skipped)
			break
		}

		res, err := p.ConvertDocument(ctx, doc)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				result.Skipped = len(docs) - i
				fmt.Fprintf(w, "stopped: %d document(s) not converted\n", result.Skipped)
				break
			}
			fmt.Fprintf(w, "failed:  %s (%v)\n", doc.VisibleName, err)
			p.Logger.Error("conversion failed", "name", doc.VisibleName, "err", err)
			result.Failed++
			continue
		}
		fmt.Fprintf(w, "converted: %s -> %s\n", doc.VisibleName, res.Path)
		result.Converted++
	}

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())

	p.restart(ctx)
	return result
}

// restart asks the document service to rescan the library. It only runs
// in library mode and its failure never affects the batch result.
func (p *Pipeline) restart(ctx context.Context) {
	if p.Restarter == nil || p.Output.Target().Mode != types.ModeLibrary {
		return
	}
	p.Logger.Info("restarting service", "service", p.Restarter.Name())
	if err := p.Restarter.Restart(context.WithoutCancel(ctx)); err != nil {
		p.Logger.Warn("service restart failed", "service", p.Restarter.Name(), "err", err)
	}
}

func (p *Pipeline) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}
