// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/slidegrid/internal/library"
	"github.com/pdiddy/slidegrid/pkg/types"
)

// Discover lists the documents to convert for target. In library mode it
// selects documents whose metadata parent is the configured parent to
// convert; in local mode it selects every PDF in the local source
// directory. Candidates whose descriptor cannot be read are logged and
// skipped. Results are sorted by path.
func Discover(target types.OutputTarget, cfg types.Config, logger *log.Logger) ([]types.SourceDocument, error) {
	var (
		docs []types.SourceDocument
		err  error
	)
	switch target.Mode {
	case types.ModeLibrary:
		docs, err = discoverLibrary(target.LibraryRoot, cfg.System.Library.ParentToConvert, logger)
	case types.ModeLocal:
		docs, err = discoverLocal(cfg.System.Local.SourceDir)
	default:
		return nil, fmt.Errorf("%w: unknown output mode %q", types.ErrConfig, target.Mode)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

func discoverLibrary(root, parent string, logger *log.Logger) ([]types.SourceDocument, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: reading library %s: %v", types.ErrDiscovery, root, err)
	}

	var docs []types.SourceDocument
	for _, de := range entries {
		if de.IsDir() || filepath.Ext(de.Name()) != library.ExtMetadata {
			continue
		}

		entry, err := library.ReadEntry(filepath.Join(root, de.Name()))
		if err != nil {
			logger.Warn("skipping document", "err", err)
			continue
		}
		if !entry.IsDocument() || entry.Parent != parent {
			continue
		}

		pdfPath, _, _ := library.Paths(root, entry.ID)
		if _, err := os.Stat(pdfPath); err != nil {
			logger.Warn("skipping document without PDF", "id", entry.ID, "name", entry.VisibleName)
			continue
		}

		docs = append(docs, types.SourceDocument{Path: pdfPath, VisibleName: entry.VisibleName})
	}
	return docs, nil
}

func discoverLocal(dir string) ([]types.SourceDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: source directory %s does not exist", types.ErrConfig, dir)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", types.ErrDiscovery, dir, err)
	}

	var docs []types.SourceDocument
	for _, de := range entries {
		if de.IsDir() || !strings.EqualFold(filepath.Ext(de.Name()), library.ExtPDF) {
			continue
		}
		docs = append(docs, types.SourceDocument{
			Path:        filepath.Join(dir, de.Name()),
			VisibleName: de.Name(),
		})
	}
	return docs, nil
}
