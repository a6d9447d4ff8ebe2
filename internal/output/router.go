// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/pdiddy/slidegrid/internal/library"
	"github.com/pdiddy/slidegrid/pkg/types"
)

// Request describes one converted document ready for delivery.
type Request struct {
	Source    types.SourceDocument
	PageCount int
}

// Result is where a document ended up.
type Result struct {
	// Path is the absolute path of the written PDF, as logged.
	Path string

	// DocumentID is the generated library identifier (library mode only).
	DocumentID string
}

// Router writes converted documents to the run's output target.
type Router struct {
	target      types.OutputTarget
	descriptors library.DescriptorWriter
	log         ConversionLog
	logger      *log.Logger

	newID func() string
	now   func() time.Time
}

// NewRouter returns a Router for target. descriptors is only used in
// library mode and may be nil otherwise.
func NewRouter(target types.OutputTarget, descriptors library.DescriptorWriter, convLog ConversionLog, logger *log.Logger) *Router {
	return &Router{
		target:      target,
		descriptors: descriptors,
		log:         convLog,
		logger:      logger,
		newID:       uuid.NewString,
		now:         time.Now,
	}
}

// Target returns the output target the router was built for.
func (r *Router) Target() types.OutputTarget {
	return r.target
}

// Deliver writes doc and, on success, appends its path to the conversion
// log. A failed write leaves the log untouched. Errors wrap types.ErrWrite.
func (r *Router) Deliver(req Request, doc []byte) (Result, error) {
	var (
		res Result
		err error
	)
	switch r.target.Mode {
	case types.ModeLocal:
		res, err = r.deliverLocal(req, doc)
	case types.ModeLibrary:
		res, err = r.deliverLibrary(req, doc)
	default:
		return Result{}, fmt.Errorf("%w: unknown output mode %q", types.ErrConfig, r.target.Mode)
	}
	if err != nil {
		return Result{}, err
	}

	if err := r.log.Append(res.Path); err != nil {
		return Result{}, fmt.Errorf("%w: %v", types.ErrWrite, err)
	}
	return res, nil
}

// deliverLocal writes to the converted directory under the original
// filename, replacing any earlier output of the same name.
func (r *Router) deliverLocal(req Request, doc []byte) (Result, error) {
	path, err := filepath.Abs(filepath.Join(r.target.ConvertedDir, filepath.Base(req.Source.Path)))
	if err != nil {
		return Result{}, fmt.Errorf("%w: resolving output path: %v", types.ErrWrite, err)
	}
	if err := writeFileAtomic(path, doc); err != nil {
		return Result{}, fmt.Errorf("%w: %v", types.ErrWrite, err)
	}
	return Result{Path: path}, nil
}

// deliverLibrary stores the document under a fresh identifier: the
// .content and .metadata descriptors first, then the PDF. If the PDF
// write fails the descriptors are removed again so the library never
// lists a document without its file.
func (r *Router) deliverLibrary(req Request, doc []byte) (Result, error) {
	root, err := filepath.Abs(r.target.LibraryRoot)
	if err != nil {
		return Result{}, fmt.Errorf("%w: resolving library root: %v", types.ErrWrite, err)
	}
	id := r.newID()
	pdfPath, contentPath, metadataPath := library.Paths(root, id)

	err = writeWith(contentPath, func(w io.Writer) error {
		return r.descriptors.WriteContent(w, library.Content{PageCount: req.PageCount})
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", types.ErrWrite, err)
	}

	err = writeWith(metadataPath, func(w io.Writer) error {
		return r.descriptors.WriteMetadata(w, library.Metadata{
			Parent:       r.target.Parent,
			VisibleName:  req.Source.VisibleName,
			LastModified: r.now(),
		})
	})
	if err != nil {
		r.remove(contentPath)
		return Result{}, fmt.Errorf("%w: %v", types.ErrWrite, err)
	}

	if err := writeFileAtomic(pdfPath, doc); err != nil {
		r.remove(contentPath, metadataPath)
		return Result{}, fmt.Errorf("%w: %v", types.ErrWrite, err)
	}

	r.logger.Debug("stored in library", "id", id, "name", req.Source.VisibleName, "pages", req.PageCount)
	return Result{Path: pdfPath, DocumentID: id}, nil
}

func (r *Router) remove(paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("could not remove partial descriptor", "path", p, "err", err)
		}
	}
}

// writeWith creates path and fills it through fn.
func writeWith(path string, fn func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so a failed write never leaves a truncated PDF behind.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".slidegrid-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting mode of %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}
