package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"shale/internal/driver"
)

func TestProgressTracksEvents(t *testing.T) {
	events := make(chan driver.BuildEvent)
	m := NewProgressModel("shale build", []string{"a.shl"}, events).(*progressModel)
	m.Update(eventMsg{Path: "b.shl", Status: driver.BuildQueued})

	m.Update(eventMsg{Path: "a.shl", Status: driver.BuildStarted})
	if got := m.fraction(); got != 0.25 {
		t.Fatalf("fraction after start = %v", got)
	}
	m.Update(eventMsg{Path: "a.shl", Status: driver.BuildDone, Elapsed: 3 * time.Millisecond})
	m.Update(eventMsg{Path: "b.shl", Status: driver.BuildDone, Failed: true})
	m.Update(eventMsg{Path: "unknown.shl", Status: driver.BuildDone})
	if got := m.fraction(); got != 1 {
		t.Fatalf("fraction after finish = %v", got)
	}

	view := m.View()
	for _, want := range []string{"a.shl", "done", "3.0 ms", "error"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view lacks %q:\n%s", want, view)
		}
	}

	_, cmd := m.Update(doneMsg{})
	if cmd == nil || !m.done {
		t.Fatalf("doneMsg should quit")
	}
	if !strings.Contains(m.View(), "done: shale build") {
		t.Fatalf("final header missing:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("internal/deep/path.shl", 10); got != "interna..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
}

func TestTruncateFillsWidth(t *testing.T) {
	tests := []struct {
		value string
		width int
		want  string
	}{
		{value: "abcdefghijkl", width: 8, want: "abcde..."},
		{value: "abcdefghijkl", width: 3, want: "abc"},
		{value: "日本語のパス.shl", width: 9, want: "日本語..."},
	}
	for _, tt := range tests {
		got := truncate(tt.value, tt.width)
		if got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.value, tt.width, got, tt.want)
		}
		if w := runewidth.StringWidth(got); w > tt.width {
			t.Fatalf("truncate(%q, %d) is %d columns wide", tt.value, tt.width, w)
		}
	}
}
