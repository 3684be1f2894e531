// Package tui implements the interactive task list picker shown when a
// title matches several lists and the caller asked to pick one.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tasksync/internal/cache"
)

// ErrCancelled reports that the user left the picker without choosing.
var ErrCancelled = fmt.Errorf("selection cancelled")

// listItem wraps a cache entry for the list display.
type listItem struct {
	entry cache.Entry
}

func (i listItem) Title() string { return i.entry.Title }

func (i listItem) Description() string {
	desc := i.entry.ID
	if !i.entry.Updated.IsZero() {
		desc += " · updated " + i.entry.Updated.Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("%s · %d tasks", desc, len(i.entry.Tasks))
}

func (i listItem) FilterValue() string { return i.entry.ID }

type pickerModel struct {
	list   list.Model
	choice int
	done   bool
}

func newPickerModel(title string, candidates []cache.Entry) pickerModel {
	items := make([]list.Item, len(candidates))
	for i, e := range candidates {
		items[i] = listItem{entry: e}
	}

	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(0)

	l := list.New(items, delegate, 0, 0)
	l.Title = fmt.Sprintf("Multiple lists titled %q — pick one", title)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	return pickerModel{list: l, choice: -1}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := msg.Width - 4
		height := msg.Height - 2
		if width < 20 {
			width = msg.Width
		}
		if height < 5 {
			height = msg.Height
		}
		m.list.SetSize(width, height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.done = true
			return m, tea.Quit
		case "enter":
			m.choice = m.list.Index()
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	if m.done {
		return ""
	}
	return lipgloss.NewStyle().Margin(1, 2).Render(m.list.View())
}

// Pick shows the candidates and returns the index of the chosen one.
// Returns ErrCancelled when the user backs out.
func Pick(title string, candidates []cache.Entry) (int, error) {
	final, err := tea.NewProgram(newPickerModel(title, candidates)).Run()
	if err != nil {
		return -1, fmt.Errorf("running picker: %w", err)
	}

	m, ok := final.(pickerModel)
	if !ok || m.choice < 0 {
		return -1, ErrCancelled
	}
	return m.choice, nil
}
