package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/psdatlas/pkg/psdb"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// RegionBrowserModel - Interactive region table
// =============================================================================

// RegionBrowserModel is the bubbletea model for browsing a PSDB file.
type RegionBrowserModel struct {
	Path    string
	Entries []psdb.Entry
	Cursor  int
	Height  int
	Offset  int
	Filter  string

	filtering bool
	visible   []int
}

func newRegionBrowser(path string, f *psdb.File) RegionBrowserModel {
	m := RegionBrowserModel{
		Path:    path,
		Entries: f.Entries,
		Height:  15,
	}
	m.applyFilter()
	return m
}

func (m RegionBrowserModel) Init() tea.Cmd {
	return nil
}

func (m RegionBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg), nil
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "/":
			m.filtering = true
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			m.Cursor = max(len(m.visible)-1, 0)
			m.Offset = max(m.Cursor-m.Height+1, 0)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-14, 5)
	}
	return m, nil
}

func (m RegionBrowserModel) updateFilter(msg tea.KeyMsg) RegionBrowserModel {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.filtering = false
	case tea.KeyBackspace:
		if m.Filter != "" {
			r := []rune(m.Filter)
			m.Filter = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.Filter += string(msg.Runes)
	}
	m.applyFilter()
	return m
}

// applyFilter recomputes the visible entries and resets the cursor.
func (m *RegionBrowserModel) applyFilter() {
	m.visible = m.visible[:0]
	needle := strings.ToLower(m.Filter)
	for i, e := range m.Entries {
		if needle == "" || strings.Contains(strings.ToLower(e.Name), needle) {
			m.visible = append(m.visible, i)
		}
	}
	m.Cursor, m.Offset = 0, 0
}

// Selected returns the entry under the cursor.
func (m RegionBrowserModel) Selected() (psdb.Entry, bool) {
	if m.Cursor >= len(m.visible) {
		return psdb.Entry{}, false
	}
	return m.Entries[m.visible[m.Cursor]], true
}

func (m RegionBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Path))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  / filter  q quit"))
	b.WriteString("\n")
	if m.filtering || m.Filter != "" {
		b.WriteString(StyleNumber.Render("filter: ") + m.Filter)
		if m.filtering {
			b.WriteString("▏")
		}
	}
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.visible))
	page := make([]psdb.Entry, 0, end-m.Offset)
	for _, idx := range m.visible[m.Offset:end] {
		page = append(page, m.Entries[idx])
	}
	b.WriteString(regionTable(page, m.Cursor-m.Offset).Render())
	b.WriteString("\n")

	if e, ok := m.Selected(); ok {
		b.WriteString("\n")
		b.WriteString(StyleValue.Render(e.Name))
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  source (%g, %g)  size %gx%g  uv (%.4f, %.4f)-(%.4f, %.4f)",
			e.X, e.Y, e.W, e.H, e.U1, e.V1, e.U2, e.V2)))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.visible)), len(m.visible))))

	return b.String()
}
