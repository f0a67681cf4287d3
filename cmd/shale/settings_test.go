package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"shale/internal/driver"
	"shale/internal/ir"
	"shale/internal/project"
	"shale/internal/target"
)

// parsedBuildCmd runs a throwaway `shale build` with args and returns the
// subcommand with its flags parsed.
func parsedBuildCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	root := &cobra.Command{Use: "shale", SilenceUsage: true, SilenceErrors: true}
	addPersistentFlags(root.PersistentFlags())
	child := &cobra.Command{Use: "build", RunE: func(*cobra.Command, []string) error { return nil }}
	addBuildFlags(child.Flags())
	root.AddCommand(child)
	root.SetArgs(append([]string{"build"}, args...))
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	return child
}

func boolPtr(b bool) *bool { return &b }

func testManifest() *project.Manifest {
	return &project.Manifest{
		Build: project.BuildSection{
			Target:      "portable",
			Diagnostics: boolPtr(false),
			Entry:       "start",
			OutDir:      "dist",
			Executable:  boolPtr(false),
		},
		Diagnostics: project.DiagnosticsSection{Max: 5, Color: "off"},
		Dir:         "/proj",
	}
}

type settingsView struct {
	Target      target.Target
	Diagnostics bool
	Entry       string
	Executable  bool
	Max         int
	OutDir      string
	Color       switchMode
	Emit        driver.EmitKind
	Dump        ir.Format
}

func view(s *settings) settingsView {
	return settingsView{
		Target:      s.opts.Target,
		Diagnostics: s.opts.Diagnostics,
		Entry:       s.opts.Entry,
		Executable:  s.opts.Executable,
		Max:         s.opts.MaxDiagnostics,
		OutDir:      s.outDir,
		Color:       s.color,
		Emit:        s.opts.Emit,
		Dump:        s.opts.DumpFormat,
	}
}

func TestSettingsFromManifest(t *testing.T) {
	s, err := resolveSettings(parsedBuildCmd(t), afero.NewMemMapFs(), testManifest())
	if err != nil {
		t.Fatalf("resolveSettings: %v", err)
	}
	want := settingsView{
		Target: target.Portable,
		Entry:  "start",
		Max:    5,
		OutDir: "/proj/dist",
		Color:  modeOff,
		Emit:   driver.EmitShell,
	}
	if diff := cmp.Diff(want, view(s)); diff != "" {
		t.Fatalf("settings (-want +got):\n%s", diff)
	}
}

func TestFlagsOverrideManifest(t *testing.T) {
	cmd := parsedBuildCmd(t,
		"--target", "bash", "--no-trap=false", "--executable", "--entry", "go",
		"--out-dir", "/tmp/o", "--max-diagnostics", "0", "--color", "on",
		"--emit", "ir", "--dump-format", "yaml")
	s, err := resolveSettings(cmd, afero.NewMemMapFs(), testManifest())
	if err != nil {
		t.Fatalf("resolveSettings: %v", err)
	}
	want := settingsView{
		Target:      target.Rich,
		Diagnostics: true,
		Entry:       "go",
		Executable:  true,
		Max:         0,
		OutDir:      "/tmp/o",
		Color:       modeOn,
		Emit:        driver.EmitIR,
		Dump:        ir.FormatYAML,
	}
	if diff := cmp.Diff(want, view(s)); diff != "" {
		t.Fatalf("settings (-want +got):\n%s", diff)
	}
}

func TestSettingsDefaultsWithoutManifest(t *testing.T) {
	s, err := resolveSettings(parsedBuildCmd(t), afero.NewMemMapFs(), nil)
	if err != nil {
		t.Fatalf("resolveSettings: %v", err)
	}
	if !s.opts.Diagnostics || s.opts.Target != target.Rich || !s.opts.Executable || s.opts.MaxDiagnostics != 100 {
		t.Fatalf("unexpected defaults %+v", view(s))
	}
}

func TestSettingsRejectBadValues(t *testing.T) {
	for _, args := range [][]string{
		{"--target", "zsh"},
		{"--emit", "wasm"},
		{"--dump-format", "xml"},
		{"--color", "sometimes"},
	} {
		if _, err := resolveSettings(parsedBuildCmd(t, args...), afero.NewMemMapFs(), nil); err == nil {
			t.Fatalf("%v: want error", args)
		}
	}
}

func TestRelevantChange(t *testing.T) {
	tests := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: "a.shl", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "a.shl", Op: fsnotify.Rename}, true},
		{fsnotify.Event{Name: "a.shl", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "a.sh", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := relevantChange(tt.ev); got != tt.want {
			t.Fatalf("relevantChange(%v) = %v", tt.ev, got)
		}
	}
}

func TestWatchDirs(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "lib", "deep"), 0o755); err != nil {
		t.Fatal(err)
	}
	single := filepath.Join(t.TempDir(), "one.shl")
	if err := os.WriteFile(single, []byte("fn main() { }\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := watchDirs([]string{root, single, root})
	if err != nil {
		t.Fatalf("watchDirs: %v", err)
	}
	want := []string{root, filepath.Join(root, "lib"), filepath.Join(root, "lib", "deep"), filepath.Dir(single)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("dirs (-want +got):\n%s", diff)
	}
}
