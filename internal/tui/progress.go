package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const barWidth = 40

// activity is the spinner shared by the render table and the status line.
var activity = spinner.MiniDot

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

// ProgressModel is a bubbletea model that renders one table row per clip and
// a footer with a bar and per-status tallies. Rows are keyed so workers can
// update them out of order.
type ProgressModel struct {
	title    string
	columns  []Column
	rows     []Row
	rowIndex map[string]int
	// statusCol is the index of the STATUS column, or -1.
	statusCol int

	spin    spinner.Model
	bar     progress.Model
	started time.Time
	now     func() time.Time

	done bool
	err  error
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
		title:     title,
		columns:   columns,
		rowIndex:  make(map[string]int),
		statusCol: statusCol,
		spin:      spinner.New(spinner.WithSpinner(activity), spinner.WithStyle(StatusStyle(StatusRendering))),
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth), progress.WithoutPercentage()),
		started:   time.Now(),
		now:       time.Now,
	}
}

// AddRow pre-populates a row. Call this before the program starts.
func (m *ProgressModel) AddRow(key string, fields []string) {
	row := Row{Key: key, Fields: make([]string, len(m.columns))}
	copy(row.Fields, fields)
	m.rowIndex[key] = len(m.rows)
	m.rows = append(m.rows, row)
}

// Init satisfies the tea.Model interface.
func (m ProgressModel) Init() tea.Cmd {
	return m.spin.Tick
}

// Update satisfies the tea.Model interface.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case RowUpdateMsg:
		if idx, ok := m.rowIndex[msg.Key]; ok {
			for j, col := range m.columns {
				if val, set := msg.Fields[col.Header]; set {
					m.rows[idx].Fields[j] = val
				}
			}
		}
		return m, nil
	case WorkDoneMsg:
		m.done = true
		return m, tea.Quit
	case ErrorMsg:
		m.done, m.err = true, msg.Err
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.bar.Width = min(barWidth, max(10, msg.Width-30))
		return m, nil
	case tea.KeyMsg:
		if k := msg.String(); k == "ctrl+c" || k == "q" {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View satisfies the tea.Model interface.
func (m ProgressModel) View() string {
	if m.done && m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	var b strings.Builder
	if m.title != "" {
		fmt.Fprintf(&b, "%s\n\n", TitleStyle.Render(m.title))
	}

	cells := make([]string, len(m.columns))
	for i, col := range m.columns {
		cells[i] = HeaderStyle.Render(cell(col.Header, m.width(i)))
	}
	b.WriteString(strings.Join(cells, "  ") + "\n")

	for _, row := range m.rows {
		for i := range m.columns {
			text := cell(TruncateWithEllipsis(row.Fields[i], m.width(i)), m.width(i))
			if i == m.statusCol {
				text = StatusStyle(strings.TrimSpace(text)).Render(text)
			}
			cells[i] = text
		}
		b.WriteString(strings.Join(cells, "  ") + "\n")
	}

	if !m.done {
		b.WriteString("\n" + m.footer() + "\n")
	}
	return b.String()
}

func (m ProgressModel) width(col int) int {
	return max(len(m.columns[col].Header), m.columns[col].Width)
}

func (m ProgressModel) footer() string {
	tally := m.tally()
	finished := 0
	for status, n := range tally {
		if isTerminalStatus(status) {
			finished += n
		}
	}
	fraction := 0.0
	if len(m.rows) > 0 {
		fraction = float64(finished) / float64(len(m.rows))
	}
	line := fmt.Sprintf("%s %s %d/%d", m.spin.View(), m.bar.ViewAs(fraction), finished, len(m.rows))
	for _, status := range []string{StatusRendered, StatusSkipped, StatusError} {
		if n := tally[status]; n > 0 {
			line += "  " + StatusStyle(status).Render(fmt.Sprintf("%d %s", n, status))
		}
	}
	return line + "  " + formatElapsed(m.now().Sub(m.started))
}

// tally counts rows by their STATUS value.
func (m ProgressModel) tally() map[string]int {
	counts := make(map[string]int)
	if m.statusCol < 0 {
		return counts
	}
	for _, row := range m.rows {
		counts[strings.TrimSpace(row.Fields[m.statusCol])]++
	}
	return counts
}

// Done returns whether the model has finished (work done or error).
func (m ProgressModel) Done() bool {
	return m.done
}

// Err returns any fatal error that occurred.
func (m ProgressModel) Err() error {
	return m.err
}

func cell(s string, width int) string {
	return fmt.Sprintf("%-*s", width, s)
}

// NonEmptyOrDash returns "-" for empty/whitespace strings.
func NonEmptyOrDash(value string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return "-"
}

// TruncateWithEllipsis shortens value to at most limit bytes, ending in
// "..." when there is room for it.
func TruncateWithEllipsis(value string, limit int) string {
	value = strings.TrimSpace(value)
	switch {
	case limit <= 0:
		return ""
	case len(value) <= limit:
		return value
	case limit <= 3:
		return value[:limit]
	}
	return value[:limit-3] + "..."
}
