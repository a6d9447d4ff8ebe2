// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/slidegrid/internal/compose"
	"github.com/pdiddy/slidegrid/internal/convert"
	"github.com/pdiddy/slidegrid/internal/history"
	"github.com/pdiddy/slidegrid/internal/library"
	"github.com/pdiddy/slidegrid/internal/output"
	"github.com/pdiddy/slidegrid/internal/service"
	"github.com/pdiddy/slidegrid/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [pdfs...]",
	Short: "Convert PDFs onto the grid canvas",
	Long: `Convert places every page of each PDF on the configured canvas above a
grid background and writes the result to the output target.

The target is the reMarkable document library when its directory exists,
otherwise the local converted directory. Without arguments, documents are
discovered from the library source folder or the local source directory.
Every converted file is appended to the conversion log.`,
	RunE: runConvert,
}

// newRestarter builds the service restarter for library runs.
var newRestarter = func(name string) service.Restarter {
	return service.NewSystemd(name)
}

func runConvert(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	target, err := output.Resolve(cfg)
	if err != nil {
		return err
	}
	logger.Info("output target", "mode", target.Mode)

	docs, err := sourceDocuments(target, cfg, args)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(out, "nothing to convert")
	}

	if dryRun {
		for _, d := range docs {
			fmt.Fprintf(out, "would convert: %s (%s)\n", d.VisibleName, d.Path)
		}
		return nil
	}

	p, closeHistory, err := newPipeline(cfg, target)
	if err != nil {
		return err
	}
	defer closeHistory()

	// An empty batch still runs so the library service is restarted.
	result := p.ConvertBatch(cmd.Context(), docs, out)
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed conversion", result.Failed)
	}
	return nil
}

// newPipeline wires the conversion pipeline for target. The returned
// function closes the history store, if one was opened.
func newPipeline(cfg types.Config, target types.OutputTarget) (*convert.Pipeline, func(), error) {
	var descriptors library.DescriptorWriter
	if target.Mode == types.ModeLibrary {
		lib := cfg.System.Library
		tw, err := library.NewTemplateWriter(lib.ContentTemplate, lib.MetadataTemplate)
		if err != nil {
			return nil, nil, err
		}
		descriptors = tw
	}

	p := &convert.Pipeline{
		Composer: compose.NewCompositor(compose.NewPDFCPUEngine(), cfg.Canvas(), logger),
		Output:   output.NewRouter(target, descriptors, output.FileLog{Path: cfg.LogFile}, logger),
		Logger:   logger,
	}

	closeHistory := func() {}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, nil, err
		}
		p.History = store
		closeHistory = func() { store.Close() }
	}

	if target.Mode == types.ModeLibrary && cfg.System.Library.RestartService {
		p.Restarter = newRestarter(cfg.System.Library.ServiceName)
	}
	return p, closeHistory, nil
}

// sourceDocuments returns the explicitly named PDFs, or discovers them when
// none are given.
func sourceDocuments(target types.OutputTarget, cfg types.Config, args []string) ([]types.SourceDocument, error) {
	if len(args) == 0 {
		return convert.Discover(target, cfg, logger)
	}
	docs := make([]types.SourceDocument, len(args))
	for i, p := range args {
		docs[i] = types.SourceDocument{Path: p, VisibleName: filepath.Base(p)}
	}
	return docs, nil
}

func init() {
	convertCmd.Flags().Bool("dry-run", false, "list the documents that would be converted and exit")

	rootCmd.AddCommand(convertCmd)
}
