// Package ui renders `shale build` progress in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"shale/internal/driver"
)

type itemState uint8

const (
	stateQueued itemState = iota
	stateCompiling
	stateDone
	stateFailed
)

func (s itemState) String() string {
	switch s {
	case stateCompiling:
		return "compiling"
	case stateDone:
		return "done"
	case stateFailed:
		return "error"
	}
	return "queued"
}

type fileItem struct {
	path    string
	state   itemState
	elapsed time.Duration
}

type progressModel struct {
	title   string
	events  <-chan driver.BuildEvent
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem
	index   map[string]int
	width   int
	done    bool
}

type eventMsg driver.BuildEvent
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model fed by build events. Files
// may be nil; queued events add rows. It quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.BuildEvent) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]fileItem, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items[i] = fileItem{path: file}
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.BuildEvent(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		next, cmd := m.prog.Update(msg)
		m.prog = next.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	header := fmt.Sprintf("%s %s", m.spinner.View(), m.title)
	if m.done {
		header = "done: " + m.title
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")).Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-12-14, 20)
	for _, item := range m.items {
		status := styleState(item.state).Render(fmt.Sprintf("%10s", item.state))
		line := "  " + status + " " + truncate(item.path, nameWidth)
		if item.state == stateDone || item.state == stateFailed {
			line += fmt.Sprintf("  %.1f ms", float64(item.elapsed)/float64(time.Millisecond))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.BuildEvent) tea.Cmd {
	idx, ok := m.index[ev.Path]
	if !ok {
		if ev.Status != driver.BuildQueued {
			return nil
		}
		idx = len(m.items)
		m.items = append(m.items, fileItem{path: ev.Path})
		m.index[ev.Path] = idx
	}
	item := &m.items[idx]
	switch ev.Status {
	case driver.BuildQueued:
		item.state = stateQueued
	case driver.BuildStarted:
		item.state = stateCompiling
	case driver.BuildDone:
		item.state = stateDone
		if ev.Failed {
			item.state = stateFailed
		}
		item.elapsed = ev.Elapsed
	}
	return m.prog.SetPercent(m.fraction())
}

// fraction counts a compiling file as half done.
func (m *progressModel) fraction() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range m.items {
		switch item.state {
		case stateDone, stateFailed:
			total++
		case stateCompiling:
			total += 0.5
		}
	}
	return total / float64(len(m.items))
}

func styleState(s itemState) lipgloss.Style {
	switch s {
	case stateDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case stateFailed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case stateCompiling:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
