package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"gitignoregen/pkg/ignorefile"
)

// PickerKeyMap defines key bindings for the picker.
type PickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Skip   key.Binding
}

var PickerKeys = PickerKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "choose"),
	),
	Skip: key.NewBinding(
		key.WithKeys("esc", "q", "ctrl+c"),
		key.WithHelp("esc", "skip"),
	),
}

// PickerModel is a numbered single-choice list. Digits 1-9 choose directly.
type PickerModel struct {
	title   string
	options []string
	cursor  int
	chosen  int
	done    bool
}

// NewPickerModel builds a picker over options.
func NewPickerModel(title string, options []string) PickerModel {
	return PickerModel{title: title, options: options, chosen: -1}
}

// Init satisfies the tea.Model interface.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update satisfies the tea.Model interface.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, PickerKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, PickerKeys.Down):
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, PickerKeys.Select):
		if len(m.options) > 0 {
			m.chosen = m.cursor
		}
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, PickerKeys.Skip):
		m.done = true
		return m, tea.Quit
	default:
		if n, ok := digit(keyMsg.String()); ok && n <= len(m.options) {
			m.cursor = n - 1
			m.chosen = m.cursor
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func digit(s string) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '0'), true
}

// View satisfies the tea.Model interface.
func (m PickerModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("\n\n")
	for i, opt := range m.options {
		line := fmt.Sprintf("%2d. %s", i+1, opt)
		if i == m.cursor {
			b.WriteString(CursorStyle.Render("> ") + SelectedStyle.Render(line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteByte('\n')
	}
	help := []string{}
	for _, k := range []key.Binding{PickerKeys.Up, PickerKeys.Down, PickerKeys.Select, PickerKeys.Skip} {
		help = append(help, k.Help().Key+" "+k.Help().Desc)
	}
	b.WriteString("\n" + HelpStyle.Render(strings.Join(help, " • ")) + "\n")
	return b.String()
}

// Choice returns the selected index, or false if the user skipped.
func (m PickerModel) Choice() (int, bool) {
	if m.chosen < 0 {
		return 0, false
	}
	return m.chosen, true
}

// RunPicker shows a picker on the given streams and returns the selection.
func RunPicker(in io.Reader, out io.Writer, title string, options []string) (int, bool, error) {
	final, err := tea.NewProgram(NewPickerModel(title, options), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return 0, false, err
	}
	m, ok := final.(PickerModel)
	if !ok {
		return 0, false, nil
	}
	idx, chosen := m.Choice()
	return idx, chosen, nil
}

// PromptChooser asks the user to pick among ambiguous candidates.
type PromptChooser struct {
	In  io.Reader
	Out io.Writer
}

// Choose returns the picked catalog path. ok is false if the user skipped.
func (c PromptChooser) Choose(token string, candidates []string) (string, bool, error) {
	title := fmt.Sprintf("%q matches %d templates, pick one:", token, len(candidates))
	idx, ok, err := RunPicker(c.In, c.Out, title, candidates)
	if err != nil || !ok {
		return "", false, err
	}
	return candidates[idx], true, nil
}

var strategyOptions = []struct {
	label    string
	strategy ignorefile.Strategy
}{
	{"Append new rules", ignorefile.Append},
	{"Overwrite the file", ignorefile.Overwrite},
	{"Cancel", ignorefile.Cancel},
}

// ChooseStrategy asks how to treat an existing output file. Skipping the
// picker counts as Cancel.
func ChooseStrategy(in io.Reader, out io.Writer, path string) (ignorefile.Strategy, error) {
	labels := make([]string, len(strategyOptions))
	for i, o := range strategyOptions {
		labels[i] = o.label
	}
	idx, ok, err := RunPicker(in, out, fmt.Sprintf("%s already exists:", path), labels)
	if err != nil {
		return ignorefile.Cancel, err
	}
	if !ok {
		return ignorefile.Cancel, nil
	}
	return strategyOptions[idx].strategy, nil
}
