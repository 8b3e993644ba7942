package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/cdnlock/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// BatchListModel - Interactive loading graph browser
// =============================================================================

// batchItem is one row of the browser: a lock entry and the batch it loads in.
type batchItem struct {
	batch int // -1 when the entry is not scheduled
	entry pipeline.LockEntry
	url   string
}

// BatchListModel is the bubbletea model for browsing the loading batches.
type BatchListModel struct {
	items   []batchItem
	batches int
	Cursor  int
	Height  int
	Offset  int
}

// NewBatchListModel creates a browser over the batches of resp. Entries
// appear batch by batch, in loading order.
func NewBatchListModel(resp *pipeline.Response) BatchListModel {
	byKey := make(map[string]pipeline.LockEntry, len(resp.Lock))
	for _, e := range resp.Lock {
		byKey[e.Key()] = e
	}

	m := BatchListModel{Height: 15}
	seen := make(map[string]bool, len(resp.Lock))
	if resp.Graph != nil {
		m.batches = len(resp.Graph.Batches)
		for i, batch := range resp.Graph.Batches {
			for _, e := range batch {
				entry, ok := byKey[e.Key]
				if !ok {
					continue
				}
				seen[e.Key] = true
				m.items = append(m.items, batchItem{batch: i, entry: entry, url: e.URL})
			}
		}
	}
	for _, e := range resp.Lock {
		if !seen[e.Key()] {
			m.items = append(m.items, batchItem{batch: -1, entry: e})
		}
	}
	return m
}

func (m BatchListModel) Init() tea.Cmd {
	return nil
}

func (m BatchListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "n":
			m.jumpBatch(1)
		case "p":
			m.jumpBatch(-1)
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// jumpBatch moves the cursor to the first entry of the next (dir > 0) or
// previous batch.
func (m *BatchListModel) jumpBatch(dir int) {
	if len(m.items) == 0 {
		return
	}
	target := m.items[m.Cursor].batch + dir
	for i, it := range m.items {
		if it.batch == target {
			m.Cursor = i
			break
		}
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m BatchListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Loading Graph"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  n/p next/previous batch  q quit"))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(listDimStyle.Render("  nothing to load"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.items))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		it := m.items[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		batch := "—"
		if it.batch >= 0 {
			batch = strconv.Itoa(it.batch)
		}
		rows = append(rows, []string{cursor, batch, it.entry.Name, it.entry.Version, it.entry.APIKey})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Batch", "Package", "Version", "API").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.items) {
				return lipgloss.NewStyle()
			}
			if idx == m.Cursor {
				return listSelectedStyle
			}
			if m.items[idx].batch%2 == 1 {
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return StyleValue
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(m.details(m.items[m.Cursor]))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] %d batches", m.Cursor+1, len(m.items), m.batches)))

	return b.String()
}

// details renders the selected entry: its library key, bundle URL and requirements.
func (m BatchListModel) details(it batchItem) string {
	var b strings.Builder
	line := func(key, value string) {
		b.WriteString("  " + listDimStyle.Render(fmt.Sprintf("%-9s", key)) + " " + value + "\n")
	}
	line("key", StyleHighlight.Render(it.entry.Key()))
	if it.url != "" {
		line("url", StyleLink.Render(it.url))
	}
	requires := "—"
	if len(it.entry.Requires) > 0 {
		requires = strings.Join(it.entry.Requires, ", ")
	}
	line("requires", requires)
	return b.String()
}
