// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"fmt"
	"os"
)

// ConversionLog records the output path of every converted document.
type ConversionLog interface {
	Append(path string) error
}

// FileLog is a newline-delimited append-only log file. The file is opened,
// appended to, and closed for every entry so completed conversions survive
// a crash later in the run.
type FileLog struct {
	Path string
}

// Append writes path as one line.
func (l FileLog) Append(path string) error {
	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening conversion log %s: %w", l.Path, err)
	}
	if _, err := fmt.Fprintln(f, path); err != nil {
		f.Close()
		return fmt.Errorf("appending to conversion log %s: %w", l.Path, err)
	}
	return f.Close()
}
