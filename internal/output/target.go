// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output delivers converted documents to a local directory or into
// the device document library and appends them to the conversion log.
package output

import (
	"fmt"
	"os"

	"github.com/pdiddy/slidegrid/pkg/types"
)

// Resolve picks the output target for the whole run. Library mode is
// selected when the configured library root exists as a directory, and
// then both folder identifiers must be set. Otherwise local mode is used
// and both local directories must exist.
func Resolve(cfg types.Config) (types.OutputTarget, error) {
	lib := cfg.System.Library
	if isDir(lib.Root) {
		if lib.ParentToConvert == "" {
			return types.OutputTarget{}, fmt.Errorf("%w: system.remarkable.parent_to_convert is required in library mode", types.ErrConfig)
		}
		if lib.ConvertedParent == "" {
			return types.OutputTarget{}, fmt.Errorf("%w: system.remarkable.directory_converted is required in library mode", types.ErrConfig)
		}
		return types.OutputTarget{
			Mode:        types.ModeLibrary,
			LibraryRoot: lib.Root,
			Parent:      lib.ConvertedParent,
		}, nil
	}

	local := cfg.System.Local
	for _, dir := range []string{local.SourceDir, local.ConvertedDir} {
		if !isDir(dir) {
			return types.OutputTarget{}, fmt.Errorf("%w: library root %q not found and local directory %q does not exist",
				types.ErrConfig, lib.Root, dir)
		}
	}
	return types.OutputTarget{
		Mode:         types.ModeLocal,
		ConvertedDir: local.ConvertedDir,
	}, nil
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
