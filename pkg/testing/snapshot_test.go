package testing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const cardYAML = `
layout:
  type: container
  children:
    - type: text
      content: Hello ${name}
data:
  name: Ada
`

func TestCaptureSnapshot(t *testing.T) {
	tester := NewLayoutTesterWithT(t)
	if err := tester.PumpYAML(cardYAML); err != nil {
		t.Fatal(err)
	}

	snap := tester.CaptureSnapshot()
	if snap == nil {
		t.Fatal("expected non-nil snapshot")
	}
	if !strings.Contains(snap.HTML, `<span class="sdui-text">Hello Ada</span>`) {
		t.Errorf("unexpected snapshot HTML: %s", snap.HTML)
	}
}

func TestCaptureSnapshot_Empty(t *testing.T) {
	tester := NewLayoutTesterWithT(t)
	if snap := tester.CaptureSnapshot(); snap.HTML != "" {
		t.Errorf("expected empty snapshot before pumping, got %q", snap.HTML)
	}
}

func TestSnapshot_Diff_Equal(t *testing.T) {
	tester := NewLayoutTesterWithT(t)
	if err := tester.PumpYAML(cardYAML); err != nil {
		t.Fatal(err)
	}

	a := tester.CaptureSnapshot()
	b := tester.CaptureSnapshot()

	if diff := a.Diff(b); diff != "" {
		t.Errorf("expected no diff for identical snapshots, got:\n%s", diff)
	}
}

func TestSnapshot_Diff_Different(t *testing.T) {
	a := &Snapshot{HTML: `<div><span>a</span><span>b</span></div>`}
	b := &Snapshot{HTML: `<div><span>a</span><span>c</span></div>`}

	diff := b.Diff(a)
	if !strings.Contains(diff, "-<span>b</span>") {
		t.Errorf("expected removed line in diff, got:\n%s", diff)
	}
	if !strings.Contains(diff, "+<span>c</span>") {
		t.Errorf("expected added line in diff, got:\n%s", diff)
	}
	if strings.Contains(diff, "-<span>a</span>") {
		t.Errorf("unchanged lines should not appear in diff:\n%s", diff)
	}
}

func TestSnapshot_UpdateAndMatch(t *testing.T) {
	t.Setenv(UpdateSnapshotsEnv, "")
	tester := NewLayoutTesterWithT(t)
	if err := tester.PumpYAML(cardYAML); err != nil {
		t.Fatal(err)
	}
	snap := tester.CaptureSnapshot()

	path := filepath.Join(t.TempDir(), "testdata", "card.html")
	if err := snap.UpdateFile(path); err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("snapshot file should exist after UpdateFile: %v", err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("snapshot file should end with a newline")
	}

	snap.MatchesFile(t, path)
}

func TestSnapshot_MatchesFile_MissingFile(t *testing.T) {
	t.Setenv(UpdateSnapshotsEnv, "")
	snap := &Snapshot{HTML: "<div></div>"}

	failed := false
	sub := &fatalRecorder{name: t.Name(), onFatal: func() { failed = true }}
	snap.MatchesFile(sub, filepath.Join(t.TempDir(), "missing.html"))

	if !failed {
		t.Error("expected MatchesFile to fail for missing file")
	}
}

func TestSnapshot_MatchesFile_Mismatch(t *testing.T) {
	t.Setenv(UpdateSnapshotsEnv, "")
	tester := NewLayoutTesterWithT(t)

	if err := tester.PumpYAML(cardYAML); err != nil {
		t.Fatal(err)
	}
	first := tester.CaptureSnapshot()

	path := filepath.Join(t.TempDir(), "card.html")
	if err := first.UpdateFile(path); err != nil {
		t.Fatal(err)
	}

	if err := tester.PumpYAML(strings.Replace(cardYAML, "Ada", "Grace", 1)); err != nil {
		t.Fatal(err)
	}
	second := tester.CaptureSnapshot()

	errored := false
	sub := &errorRecorder{name: t.Name(), onError: func() { errored = true }}
	second.MatchesFile(sub, path)

	if !errored {
		t.Error("expected MatchesFile to report error for mismatch")
	}
}

func TestSnapshot_UpdateMode(t *testing.T) {
	snap := &Snapshot{HTML: `<span class="sdui-text">x</span>`}
	path := filepath.Join(t.TempDir(), "update.html")

	t.Setenv(UpdateSnapshotsEnv, "1")
	snap.MatchesFile(t, path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("snapshot file should be created in update mode")
	}
}

// fatalRecorder intercepts Fatalf calls for testing MatchesFile failures.
type fatalRecorder struct {
	name    string
	onFatal func()
}

func (r *fatalRecorder) Fatalf(format string, args ...any) { r.onFatal() }
func (r *fatalRecorder) Errorf(format string, args ...any) {}
func (r *fatalRecorder) Helper()                           {}
func (r *fatalRecorder) Name() string                      { return r.name }

// errorRecorder intercepts Errorf calls for testing MatchesFile mismatches.
type errorRecorder struct {
	name    string
	onError func()
}

func (r *errorRecorder) Fatalf(format string, args ...any) {}
func (r *errorRecorder) Errorf(format string, args ...any) { r.onError() }
func (r *errorRecorder) Helper()                           {}
func (r *errorRecorder) Name() string                      { return r.name }
