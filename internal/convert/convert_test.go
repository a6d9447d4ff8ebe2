// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/slidegrid/internal/library"
	"github.com/pdiddy/slidegrid/internal/output"
	"github.com/pdiddy/slidegrid/pkg/types"
)

// fakeComposer returns canned documents or errors per source path.
type fakeComposer struct {
	pages  map[string]int
	errors map[string]error
	calls  []string
}

func (f *fakeComposer) Document(_ context.Context, path string) ([]byte, int, error) {
	f.calls = append(f.calls, path)
	if err, ok := f.errors[path]; ok {
		return nil, 0, err
	}
	return []byte("%PDF composed " + filepath.Base(path)), f.pages[path], nil
}

// fakeRecorder collects ledger entries.
type fakeRecorder struct {
	records []types.ConversionRecord
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, rec types.ConversionRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

// fakeRestarter counts restarts.
type fakeRestarter struct {
	restarts int
	err      error
}

func (f *fakeRestarter) Name() string { return "xochitl" }

func (f *fakeRestarter) Restart(context.Context) error {
	f.restarts++
	return f.err
}

func quietLogger() *log.Logger { return log.New(io.Discard) }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeMetadata(t *testing.T, root, id, body string, withPDF bool) {
	t.Helper()
	writeFile(t, filepath.Join(root, id+library.ExtMetadata), body)
	if withPDF {
		writeFile(t, filepath.Join(root, id+library.ExtPDF), "%PDF")
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestDiscoverLibrary(t *testing.T) {
	root := t.TempDir()
	writeMetadata(t, root, "aaa", `{"parent":"P1","type":"DocumentType","visibleName":"A"}`, true)
	writeMetadata(t, root, "bbb", `{"parent":"P2","type":"DocumentType","visibleName":"B"}`, true)
	writeMetadata(t, root, "ccc", `{"parent":"P1","type":"DocumentType","visibleName":"C"}`, true)
	writeMetadata(t, root, "ddd", `{"parent":"P1","deleted":true,"type":"DocumentType","visibleName":"D"}`, true)
	writeMetadata(t, root, "eee", `{"parent":"P1","type":"CollectionType","visibleName":"Folder"}`, false)
	writeMetadata(t, root, "fff", `{"parent":"P1","type":"DocumentType","visibleName":"No file"}`, false)
	writeMetadata(t, root, "ggg", `{"parent":`, true)
	writeFile(t, filepath.Join(root, "aaa.content"), "{}")

	cfg := types.DefaultConfig()
	cfg.System.Library.ParentToConvert = "P1"
	target := types.OutputTarget{Mode: types.ModeLibrary, LibraryRoot: root}

	docs, err := Discover(target, cfg, quietLogger())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := []types.SourceDocument{
		{Path: filepath.Join(root, "aaa.pdf"), VisibleName: "A"},
		{Path: filepath.Join(root, "ccc.pdf"), VisibleName: "C"},
	}
	if len(docs) != len(want) {
		t.Fatalf("got %d documents, want %d: %+v", len(docs), len(want), docs)
	}
	for i := range want {
		if docs[i] != want[i] {
			t.Errorf("docs[%d] = %+v, want %+v", i, docs[i], want[i])
		}
	}
}

func TestDiscoverLibraryMissingRoot(t *testing.T) {
	target := types.OutputTarget{Mode: types.ModeLibrary, LibraryRoot: filepath.Join(t.TempDir(), "gone")}
	_, err := Discover(target, types.DefaultConfig(), quietLogger())
	if !errors.Is(err, types.ErrDiscovery) {
		t.Errorf("err = %v, want ErrDiscovery", err)
	}
}

func TestDiscoverLocal(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", "notes.txt", "c.pdf"} {
		writeFile(t, filepath.Join(dir, name), "x")
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.pdf"), 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := types.DefaultConfig()
	cfg.System.Local.SourceDir = dir

	docs, err := Discover(types.OutputTarget{Mode: types.ModeLocal}, cfg, quietLogger())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	var names []string
	for _, d := range docs {
		names = append(names, d.VisibleName)
		if d.Path != filepath.Join(dir, d.VisibleName) {
			t.Errorf("path %q does not match name %q", d.Path, d.VisibleName)
		}
	}
	if got := strings.Join(names, ","); got != "a.PDF,b.pdf,c.pdf" {
		t.Errorf("names = %s, want a.PDF,b.pdf,c.pdf", got)
	}
}

func TestDiscoverLocalMissingDir(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.System.Local.SourceDir = filepath.Join(t.TempDir(), "gone")
	_, err := Discover(types.OutputTarget{Mode: types.ModeLocal}, cfg, quietLogger())
	if !errors.Is(err, types.ErrConfig) {
		t.Errorf("err = %v, want ErrConfig", err)
	}
}

func TestConvertBatchLocal(t *testing.T) {
	tmpDir := t.TempDir()
	srcDir := filepath.Join(tmpDir, "convert")
	outDir := filepath.Join(tmpDir, "converted")
	for _, dir := range []string{srcDir, outDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	logPath := filepath.Join(tmpDir, "file-log.txt")

	docs := []types.SourceDocument{
		{Path: filepath.Join(srcDir, "a.pdf"), VisibleName: "a.pdf"},
		{Path: filepath.Join(srcDir, "b.pdf"), VisibleName: "b.pdf"},
		{Path: filepath.Join(srcDir, "c.pdf"), VisibleName: "c.pdf"},
	}
	composer := &fakeComposer{
		pages:  map[string]int{docs[0].Path: 3, docs[2].Path: 1},
		errors: map[string]error{docs[1].Path: errors.New("page 2: bad stream")},
	}
	restarter := &fakeRestarter{}
	recorder := &fakeRecorder{}
	target := types.OutputTarget{Mode: types.ModeLocal, ConvertedDir: outDir}

	p := &Pipeline{
		Composer:  composer,
		Output:    output.NewRouter(target, nil, output.FileLog{Path: logPath}, quietLogger()),
		Logger:    quietLogger(),
		History:   recorder,
		Restarter: restarter,
	}

	var status bytes.Buffer
	result := p.ConvertBatch(context.Background(), docs, &status)

	if result.Converted != 2 || result.Failed != 1 || result.Skipped != 0 {
		t.Errorf("result = %+v, want 2 converted, 1 failed", result)
	}
	if !result.HasFailures() {
		t.Error("HasFailures should be true")
	}
	if result.Total() != 3 {
		t.Errorf("total = %d, want 3", result.Total())
	}

	out := status.String()
	for _, want := range []string{"converted: a.pdf", "failed:  b.pdf (page 2: bad stream)", "converted: c.pdf", "Batch summary:"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output %q does not contain %q", out, want)
		}
	}

	wantLog := []string{filepath.Join(outDir, "a.pdf"), filepath.Join(outDir, "c.pdf")}
	if got := readLines(t, logPath); strings.Join(got, "|") != strings.Join(wantLog, "|") {
		t.Errorf("log = %v, want %v", got, wantLog)
	}
	if _, err := os.Stat(filepath.Join(outDir, "b.pdf")); !errors.Is(err, os.ErrNotExist) {
		t.Error("failed document must not produce output")
	}

	if restarter.restarts != 0 {
		t.Errorf("restarts = %d, local mode must not restart the service", restarter.restarts)
	}
	if len(recorder.records) != 2 {
		t.Fatalf("history records = %d, want 2", len(recorder.records))
	}
	if recorder.records[0].PageCount != 3 || recorder.records[0].Mode != types.ModeLocal {
		t.Errorf("record = %+v", recorder.records[0])
	}
}

func TestConvertBatchLibrary(t *testing.T) {
	root := t.TempDir()
	logPath := filepath.Join(t.TempDir(), "file-log.txt")
	writeMetadata(t, root, "src1", `{"parent":"P1","type":"DocumentType","visibleName":"Lecture 1"}`, true)

	cfg := types.DefaultConfig()
	cfg.System.Library.ParentToConvert = "P1"
	target := types.OutputTarget{Mode: types.ModeLibrary, LibraryRoot: root, Parent: "P2"}

	docs, err := Discover(target, cfg, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	templates, err := library.NewTemplateWriter("", "")
	if err != nil {
		t.Fatal(err)
	}
	composer := &fakeComposer{pages: map[string]int{docs[0].Path: 4}}
	restarter := &fakeRestarter{err: errors.New("systemctl: permission denied")}
	p := &Pipeline{
		Composer:  composer,
		Output:    output.NewRouter(target, templates, output.FileLog{Path: logPath}, quietLogger()),
		Logger:    quietLogger(),
		Restarter: restarter,
		now:       func() time.Time { return time.Unix(0, 0) },
	}

	var status bytes.Buffer
	result := p.ConvertBatch(context.Background(), docs, &status)
	if result.Converted != 1 || result.Failed != 0 {
		t.Fatalf("result = %+v, status:\n%s", result, status.String())
	}
	if restarter.restarts != 1 {
		t.Errorf("restarts = %d, want 1", restarter.restarts)
	}

	lines := readLines(t, logPath)
	if len(lines) != 1 || filepath.Dir(lines[0]) != root || lines[0] == docs[0].Path {
		t.Fatalf("log = %v, want one new library PDF", lines)
	}
	id := strings.TrimSuffix(filepath.Base(lines[0]), library.ExtPDF)
	entry, err := library.ReadEntry(filepath.Join(root, id+library.ExtMetadata))
	if err != nil {
		t.Fatal(err)
	}
	if entry.Parent != "P2" || entry.VisibleName != "Lecture 1" {
		t.Errorf("entry = %+v, want parent P2 and name Lecture 1", entry)
	}

	// The converted copy lives under P2 and is not picked up again.
	again, err := Discover(target, cfg, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 1 {
		t.Errorf("rediscovered %d documents, want 1", len(again))
	}
}

func TestConvertBatchEmpty(t *testing.T) {
	tests := []struct {
		name         string
		target       types.OutputTarget
		wantRestarts int
	}{
		{"library mode restarts", types.OutputTarget{Mode: types.ModeLibrary, LibraryRoot: t.TempDir(), Parent: "P2"}, 1},
		{"local mode never restarts", types.OutputTarget{Mode: types.ModeLocal, ConvertedDir: t.TempDir()}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			composer := &fakeComposer{}
			restarter := &fakeRestarter{}
			p := &Pipeline{
				Composer:  composer,
				Output:    output.NewRouter(tt.target, nil, output.FileLog{Path: filepath.Join(t.TempDir(), "log")}, quietLogger()),
				Logger:    quietLogger(),
				Restarter: restarter,
			}

			var status bytes.Buffer
			result := p.ConvertBatch(context.Background(), nil, &status)

			if result.Total() != 0 || len(composer.calls) != 0 {
				t.Errorf("result = %+v, calls = %v, want an empty batch", result, composer.calls)
			}
			if restarter.restarts != tt.wantRestarts {
				t.Errorf("restarts = %d, want %d", restarter.restarts, tt.wantRestarts)
			}
			if !strings.Contains(status.String(), "Batch summary: 0 converted") {
				t.Errorf("status output %q missing summary", status.String())
			}
		})
	}
}

func TestConvertBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	docs := []types.SourceDocument{
		{Path: "/in/a.pdf", VisibleName: "a.pdf"},
		{Path: "/in/b.pdf", VisibleName: "b.pdf"},
	}
	composer := &fakeComposer{pages: map[string]int{"/in/a.pdf": 1, "/in/b.pdf": 1}}
	target := types.OutputTarget{Mode: types.ModeLocal, ConvertedDir: t.TempDir()}
	p := &Pipeline{
		Composer: composer,
		Output:   output.NewRouter(target, nil, &cancelLog{cancel: cancel}, quietLogger()),
		Logger:   quietLogger(),
	}

	var status bytes.Buffer
	result := p.ConvertBatch(ctx, docs, &status)

	if result.Converted != 1 || result.Skipped != 1 {
		t.Errorf("result = %+v, want 1 converted, 1 skipped", result)
	}
	if len(composer.calls) != 1 {
		t.Errorf("composer calls = %v, want only the first document", composer.calls)
	}
	if !strings.Contains(status.String(), "stopped: 1 document(s) not converted") {
		t.Errorf("status output %q missing stop line", status.String())
	}
}

// cancelLog cancels the run after the first logged document.
type cancelLog struct {
	cancel context.CancelFunc
}

func (c *cancelLog) Append(string) error {
	c.cancel()
	return nil
}

func TestConvertDocumentHistoryFailureIsNotFatal(t *testing.T) {
	target := types.OutputTarget{Mode: types.ModeLocal, ConvertedDir: t.TempDir()}
	logPath := filepath.Join(t.TempDir(), "file-log.txt")
	p := &Pipeline{
		Composer: &fakeComposer{pages: map[string]int{"/in/a.pdf": 2}},
		Output:   output.NewRouter(target, nil, output.FileLog{Path: logPath}, quietLogger()),
		Logger:   quietLogger(),
		History:  &fakeRecorder{err: errors.New("database is locked")},
	}

	res, err := p.ConvertDocument(context.Background(), types.SourceDocument{Path: "/in/a.pdf", VisibleName: "a.pdf"})
	if err != nil {
		t.Fatalf("ConvertDocument: %v", err)
	}
	if res.Path != filepath.Join(target.ConvertedDir, "a.pdf") {
		t.Errorf("path = %s", res.Path)
	}
}

func TestConvertDocumentComposeFailureWritesNothing(t *testing.T) {
	target := types.OutputTarget{Mode: types.ModeLocal, ConvertedDir: t.TempDir()}
	logPath := filepath.Join(t.TempDir(), "file-log.txt")
	p := &Pipeline{
		Composer: &fakeComposer{errors: map[string]error{"/in/a.pdf": types.ErrPageTransform}},
		Output:   output.NewRouter(target, nil, output.FileLog{Path: logPath}, quietLogger()),
		Logger:   quietLogger(),
	}

	_, err := p.ConvertDocument(context.Background(), types.SourceDocument{Path: "/in/a.pdf", VisibleName: "a.pdf"})
	if !errors.Is(err, types.ErrPageTransform) {
		t.Errorf("err = %v, want ErrPageTransform", err)
	}
	entries, _ := os.ReadDir(target.ConvertedDir)
	if len(entries) != 0 {
		t.Errorf("converted dir has %d entries, want none", len(entries))
	}
	if lines := readLines(t, logPath); lines != nil {
		t.Errorf("log = %v, want no entries", lines)
	}
}
