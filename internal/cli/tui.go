package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/codecity/pkg/scene"
	"github.com/matzehuels/codecity/pkg/tree"
)

// List styles
var (
	listDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1).Width(36)
	paneTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	headerStyle   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	dirRowStyle   = lipgloss.NewStyle().Foreground(colorBlue)
	fileRowStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	cursorRowBold = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
)

// =============================================================================
// InspectModel - Interactive pickable browser
// =============================================================================

// kindFilter selects which pickables the inspector lists.
type kindFilter int

const (
	filterAll kindFilter = iota
	filterFiles
	filterDirs
)

func (f kindFilter) String() string {
	switch f {
	case filterFiles:
		return "buildings"
	case filterDirs:
		return "foundations"
	}
	return "all"
}

// InspectModel is the bubbletea model for browsing a scene's pickables with
// a tooltip pane for the selected one.
type InspectModel struct {
	Scene  *scene.Scene
	Items  []scene.Pickable
	Filter kindFilter
	Depth  int
	Cursor int
	Offset int
	Height int
}

// NewInspectModel creates an inspector over every pickable of sc.
func NewInspectModel(sc *scene.Scene) InspectModel {
	m := InspectModel{
		Scene:  sc,
		Depth:  sc.Index().MaxDepth(),
		Height: 15,
	}
	m.refresh()
	return m
}

// Selected returns the pickable under the cursor.
func (m InspectModel) Selected() (scene.Pickable, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Items) {
		return scene.Pickable{}, false
	}
	return m.Items[m.Cursor], true
}

func (m *InspectModel) refresh() {
	idx := m.Scene.Index()
	switch m.Filter {
	case filterFiles:
		m.Items = idx.Where(tree.KindFile, m.Depth)
	case filterDirs:
		m.Items = idx.Where(tree.KindDirectory, m.Depth)
	default:
		m.Items = idx.UpToDepth(m.Depth)
	}
	m.Cursor = min(m.Cursor, max(len(m.Items)-1, 0))
	m.Offset = min(m.Offset, m.Cursor)
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(len(m.Items)-1, 0)
		case "tab":
			m.Filter = (m.Filter + 1) % 3
			m.refresh()
		case "-":
			if m.Depth > 0 {
				m.Depth--
				m.refresh()
			}
		case "+", "=":
			if m.Depth < m.Scene.Index().MaxDepth() {
				m.Depth++
				m.refresh()
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}

	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m, nil
}

func (m InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Code City"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%s · depth ≤ %d", m.Filter, m.Depth)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab kind  +/- depth  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Items))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.Items[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		name := p.Node.FullPath
		if name == "" {
			name = scene.RootLabel
		}
		rows = append(rows, []string{
			cursor,
			p.Kind.String(),
			name,
			fmt.Sprintf("%d", p.Node.LOC),
			fmt.Sprintf("%d", p.Node.Count),
			fmt.Sprintf("%d", p.DepthLevel),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Kind", "Path", "Lines", "Commits", "Depth").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			i := m.Offset + row
			if i >= len(m.Items) {
				return lipgloss.NewStyle()
			}
			if i == m.Cursor {
				return cursorRowBold
			}
			if m.Items[i].Kind == tree.KindDirectory {
				return dirRowStyle
			}
			return fileRowStyle
		})

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, t.Render(), " ", m.tooltipPane()))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Items)), len(m.Items))))

	return b.String()
}

// tooltipPane renders the tooltip of the selected pickable.
func (m InspectModel) tooltipPane() string {
	p, ok := m.Selected()
	if !ok {
		return paneStyle.Render(listDimStyle.Render("nothing selected"))
	}
	tip := scene.Describe(p, m.Scene.Heat())
	return paneStyle.Render(paneTitle.Render(tip.Title) + "\n" + strings.Join(tip.Lines(), "\n"))
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
