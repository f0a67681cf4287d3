package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"shale/internal/driver"
)

func TestRenderFmtJSON(t *testing.T) {
	var buf bytes.Buffer
	results := []driver.FormatResult{
		{Path: "a.shl", Changed: true},
		{Path: "b.shl", Err: errors.New("boom")},
	}
	if err := renderFmtJSON(&buf, results, true); err != nil {
		t.Fatal(err)
	}
	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	want := []map[string]any{
		{"path": "a.shl", "changed": true, "check": true},
		{"path": "b.shl", "changed": false, "check": true, "error": "boom"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderFmtTextCheckListsChangedFiles(t *testing.T) {
	var buf bytes.Buffer
	s := &settings{}
	results := []driver.FormatResult{
		{Path: "a.shl", Changed: true},
		{Path: "b.shl"},
	}
	hasErrors, hasChanges := s.renderFmtText(&buf, results, true, false)
	if hasErrors || !hasChanges {
		t.Fatalf("errors=%v changes=%v", hasErrors, hasChanges)
	}
	if buf.String() != "a.shl\n" {
		t.Fatalf("output = %q", buf.String())
	}
}
