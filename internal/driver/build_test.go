package driver

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

func TestBuildAllWritesScripts(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"/src/a.shl":       "fn main() { print(\"a\") }\n",
		"/src/tools/b.shl": "fn main() { print(\"b\") }\n",
		"/src/README":      "not a source\n",
	})
	opts := testOptions(fsys)
	opts.Executable = true

	var mu sync.Mutex
	done := 0
	outcomes, err := BuildAll(context.Background(), BuildRequest{
		Paths:   []string{"/src"},
		Options: opts,
		Jobs:    2,
		OutDir:  "/out",
		Write:   true,
		Observer: func(ev BuildEvent) {
			if ev.Status == BuildDone {
				mu.Lock()
				done++
				mu.Unlock()
			}
		},
	})
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	var got []string
	for _, o := range outcomes {
		if o.Failed() {
			t.Fatalf("%s failed: %v %v", o.Path, o.Err, codes(o.Result.Bag))
		}
		got = append(got, o.OutPath)
	}
	if diff := cmp.Diff([]string{"/out/a.sh", "/out/tools/b.sh"}, got); diff != "" {
		t.Fatalf("outputs (-want +got):\n%s", diff)
	}
	if done != 2 {
		t.Fatalf("observer saw %d finished files", done)
	}
	info, err := fsys.Stat("/out/tools/b.sh")
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Fatalf("mode %v, want 0755", info.Mode().Perm())
	}
	body, _ := afero.ReadFile(fsys, "/out/a.sh")
	if !strings.HasPrefix(string(body), "#!/usr/bin/env bash\n") {
		t.Fatalf("unexpected script:\n%s", body)
	}
}

func TestBuildAllNextToSource(t *testing.T) {
	fsys := memFS(t, map[string]string{"/w/job.shl": "fn main() { }\n"})
	if err := afero.WriteFile(fsys, "/w/job.sh", []byte("old"), 0o755); err != nil {
		t.Fatal(err)
	}
	opts := testOptions(fsys)
	opts.Executable = false
	outcomes, err := BuildAll(context.Background(), BuildRequest{Paths: []string{"/w/job.shl"}, Options: opts, Write: true})
	if err != nil || len(outcomes) != 1 || outcomes[0].Failed() {
		t.Fatalf("BuildAll: %v %+v", err, outcomes)
	}
	if outcomes[0].OutPath != "/w/job.sh" {
		t.Fatalf("out path %q", outcomes[0].OutPath)
	}
	info, _ := fsys.Stat("/w/job.sh")
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("existing file kept mode %v", info.Mode().Perm())
	}
}

func TestBuildAllOutputNeedsOneFile(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"/d/a.shl": "fn main() { }\n",
		"/d/b.shl": "fn main() { }\n",
	})
	_, err := BuildAll(context.Background(), BuildRequest{Paths: []string{"/d"}, Options: testOptions(fsys), Output: "x.sh", Write: true})
	if err == nil || !strings.Contains(err.Error(), "exactly one") {
		t.Fatalf("want -o error, got %v", err)
	}
}

func TestBuildAllKeepsGoingAfterFailure(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"/d/bad.shl":  "fn main() { print(nope) }\n",
		"/d/good.shl": "fn main() { }\n",
	})
	outcomes, err := BuildAll(context.Background(), BuildRequest{Paths: []string{"/d"}, Options: testOptions(fsys), Write: true})
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if !outcomes[0].Failed() || outcomes[1].Failed() {
		t.Fatalf("want only bad.shl to fail")
	}
	if ok, _ := afero.Exists(fsys, "/d/bad.sh"); ok {
		t.Fatalf("failed compile must not write a script")
	}
	if ok, _ := afero.Exists(fsys, "/d/good.sh"); !ok {
		t.Fatalf("good.sh missing")
	}
}
