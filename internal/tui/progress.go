package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const tickInterval = 120 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type tickMsg time.Time

// Column defines a single column in the progress table.
type Column struct {
	Header string
	Width  int
}

// Row holds the field values for a single table row.
type Row struct {
	Key    string
	Fields []string
}

// Fetch table headers.
const (
	ColTemplate = "TEMPLATE"
	ColStatus   = "STATUS"
	ColSource   = "SOURCE"
	ColSize     = "SIZE"
)

// FetchColumns is the layout used while template bodies download.
var FetchColumns = []Column{
	{Header: ColTemplate, Width: 40},
	{Header: ColStatus, Width: 10},
	{Header: ColSource, Width: 8},
	{Header: ColSize, Width: 8},
}

type progressKeyMap struct {
	Quit key.Binding
}

var progressKeys = progressKeyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q", "esc"),
		key.WithHelp("q", "abort"),
	),
}

// ProgressModel renders a table whose rows are updated by RowUpdateMsg
// while background work runs.
type ProgressModel struct {
	columns     []Column
	rows        []Row
	rowIndex    map[string]int
	title       string
	statusCol   int
	done        bool
	interrupted bool
	err         error
	tick        int
}

// NewProgressModel creates a progress model with the given title and columns.
func NewProgressModel(title string, columns []Column) ProgressModel {
	statusCol := -1
	for i, c := range columns {
		if strings.EqualFold(c.Header, ColStatus) {
			statusCol = i
			break
		}
	}
	return ProgressModel{
		columns:   columns,
		rowIndex:  make(map[string]int),
		title:     title,
		statusCol: statusCol,
	}
}

// NewFetchModel prepares one pending row per catalog path, keyed by RowKey.
func NewFetchModel(paths []string) ProgressModel {
	m := NewProgressModel(fmt.Sprintf("Fetching %d template(s)", len(paths)), FetchColumns)
	for i, p := range paths {
		m.AddRow(RowKey(i), []string{p, StatusPending, "-", "-"})
	}
	return m
}

// RowKey is the row identifier for the i-th requested path.
func RowKey(i int) string {
	return fmt.Sprintf("tpl:%03d", i)
}

// AddRow pre-populates a row. Call this before the program starts.
func (m *ProgressModel) AddRow(key string, fields []string) {
	padded := make([]string, len(m.columns))
	copy(padded, fields)
	m.rowIndex[key] = len(m.rows)
	m.rows = append(m.rows, Row{Key: key, Fields: padded})
}

func scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init satisfies the tea.Model interface.
func (m ProgressModel) Init() tea.Cmd {
	return scheduleTick()
}

// Update satisfies the tea.Model interface.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.tick++
		if m.done {
			return m, nil
		}
		return m, scheduleTick()

	case RowUpdateMsg:
		m.applyRowUpdate(msg)
		return m, nil

	case WorkDoneMsg:
		m.done = true
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		if key.Matches(msg, progressKeys.Quit) {
			m.done = true
			m.interrupted = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *ProgressModel) applyRowUpdate(msg RowUpdateMsg) {
	idx, ok := m.rowIndex[msg.Key]
	if !ok {
		return
	}
	row := &m.rows[idx]
	for j, col := range m.columns {
		if val, exists := msg.Fields[col.Header]; exists {
			row.Fields[j] = val
		}
	}
}

// View satisfies the tea.Model interface.
func (m ProgressModel) View() string {
	if m.done && m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	}

	widths := make([]int, len(m.columns))
	for i, col := range m.columns {
		widths[i] = max(len(col.Header), col.Width)
	}

	var b strings.Builder
	if m.title != "" {
		b.WriteString(TitleStyle.Render(m.title))
		b.WriteString("\n\n")
	}

	headers := make([]string, len(m.columns))
	for i, col := range m.columns {
		headers[i] = HeaderStyle.Render(pad(col.Header, widths[i]))
	}
	b.WriteString(strings.Join(headers, "  "))
	b.WriteByte('\n')

	for _, row := range m.rows {
		parts := make([]string, len(m.columns))
		for i := range m.columns {
			val := ""
			if i < len(row.Fields) {
				val = row.Fields[i]
			}
			val = TruncateMiddle(val, widths[i])
			if i == m.statusCol {
				parts[i] = StatusStyle(val).Render(pad(val, widths[i]))
			} else {
				parts[i] = pad(val, widths[i])
			}
		}
		b.WriteString(strings.Join(parts, "  "))
		b.WriteByte('\n')
	}

	if !m.done {
		processed, total := m.progressCounts()
		spinner := spinnerFrames[m.tick%len(spinnerFrames)]
		fmt.Fprintf(&b, "\n%s Fetched %d/%d  %s\n", spinner, processed, total, HelpStyle.Render(progressKeys.Quit.Help().Key+" "+progressKeys.Quit.Help().Desc))
	}
	return b.String()
}

// progressCounts returns (processed, total) by counting rows no longer pending
// or in flight.
func (m ProgressModel) progressCounts() (int, int) {
	total := len(m.rows)
	if m.statusCol < 0 {
		return 0, total
	}
	processed := 0
	for _, row := range m.rows {
		if m.statusCol >= len(row.Fields) {
			continue
		}
		switch strings.TrimSpace(row.Fields[m.statusCol]) {
		case "", StatusPending, StatusFetching:
		default:
			processed++
		}
	}
	return processed, total
}

// Done reports whether the model has finished.
func (m ProgressModel) Done() bool {
	return m.done
}

// Interrupted reports whether the user aborted from the keyboard.
func (m ProgressModel) Interrupted() bool {
	return m.interrupted
}

// Err returns any fatal error that occurred.
func (m ProgressModel) Err() error {
	return m.err
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// TruncateMiddle shortens value to max bytes, keeping both ends so the leaf
// of a long catalog path stays visible.
func TruncateMiddle(value string, max int) string {
	value = strings.TrimSpace(value)
	if max <= 0 {
		return ""
	}
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	keep := max - 3
	head := keep / 2
	tail := keep - head
	return value[:head] + "..." + value[len(value)-tail:]
}

// NonEmptyOrDash returns "-" for empty or whitespace strings.
func NonEmptyOrDash(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return value
}

// FormatSize renders a byte count compactly.
func FormatSize(n int) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%dB", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1fK", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1fM", float64(n)/(1024*1024))
	}
}
