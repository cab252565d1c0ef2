package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/custclassify/internal/model"
)

// Lines per record in the list pane (category + subtitle + blank separator).
const recordItemHeight = 3

const timeLayout = "2006-01-02 15:04"

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("39"))

	inactiveHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	itemTitleStyle = lipgloss.NewStyle().
			Bold(true)

	itemSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedItemTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedItemSubtitleStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("252")).
					Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(14)

	detailValueStyle = lipgloss.NewStyle()

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

type pane int

const (
	paneList pane = iota
	paneDetail
)

type historyModel struct {
	records        []model.Record
	listViewport   viewport.Model
	detailViewport viewport.Model
	activePane     pane
	cursor         int
	width          int
	height         int
	ready          bool
}

func newHistoryModel(records []model.Record) historyModel {
	return historyModel{records: records}
}

func (m historyModel) Init() tea.Cmd {
	return nil
}

func (m historyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab", "left", "right":
			if m.activePane == paneList {
				m.activePane = paneDetail
			} else {
				m.activePane = paneList
			}
			m.recalcContent()
			return m, nil
		case "enter":
			m.activePane = paneDetail
			m.recalcContent()
			return m, nil
		}

		if m.activePane == paneList {
			switch msg.String() {
			case "up", "k":
				m.moveCursor(-1)
				return m, nil
			case "down", "j":
				m.moveCursor(1)
				return m, nil
			}
		}
	}

	// Forward other keys (pgup/pgdn/home/end, or arrows in the detail pane)
	// to the active viewport.
	var cmd tea.Cmd
	if m.activePane == paneList {
		m.listViewport, cmd = m.listViewport.Update(msg)
	} else {
		m.detailViewport, cmd = m.detailViewport.Update(msg)
	}
	return m, cmd
}

func (m *historyModel) moveCursor(delta int) {
	next := clamp(m.cursor+delta, 0, max(len(m.records)-1, 0))
	if next == m.cursor {
		return
	}
	m.cursor = next
	m.recalcContent()
	m.detailViewport.SetYOffset(0)
	m.ensureCursorVisible()
}

func (m *historyModel) ensureCursorVisible() {
	vp := &m.listViewport
	cursorTop := m.cursor * recordItemHeight
	cursorBottom := cursorTop + recordItemHeight - 1

	if cursorTop < vp.YOffset {
		vp.SetYOffset(cursorTop)
	} else if cursorBottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(cursorBottom - vp.Height + 1)
	}
}

func (m *historyModel) recalcLayout() {
	// 2 border chars per pane + 1 gap between panes. The list gets a third.
	listWidth := max((m.width-5)/3, 24)
	detailWidth := max(m.width-5-listWidth, 30)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.listViewport = viewport.New(listWidth, paneHeight)
		m.detailViewport = viewport.New(detailWidth, paneHeight)
		m.ready = true
	} else {
		m.listViewport.Width = listWidth
		m.listViewport.Height = paneHeight
		m.detailViewport.Width = detailWidth
		m.detailViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *historyModel) recalcContent() {
	m.listViewport.SetContent(renderRecords(m.records, m.cursor, m.activePane == paneList))
	if len(m.records) == 0 {
		m.detailViewport.SetContent("  (nothing selected)")
		return
	}
	m.detailViewport.SetContent(renderRecordDetail(m.records[m.cursor], m.detailViewport.Width-2))
}

func (m historyModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	listHeader := fmt.Sprintf(" Classifications (%d)", len(m.records))
	detailHeader := " Detail"

	listHeaderStyle, detailHeaderStyle := activeHeaderStyle, inactiveHeaderStyle
	listBorder, detailBorder := activeBorderStyle, inactiveBorderStyle
	if m.activePane == paneDetail {
		listHeaderStyle, detailHeaderStyle = inactiveHeaderStyle, activeHeaderStyle
		listBorder, detailBorder = inactiveBorderStyle, activeBorderStyle
	}

	listPane := listBorder.Width(m.listViewport.Width).Render(m.listViewport.View())
	detailPane := detailBorder.Width(m.detailViewport.Width).Render(m.detailViewport.View())

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(m.listViewport.Width+2).Render(listHeaderStyle.Render(listHeader)),
		" ",
		lipgloss.NewStyle().Width(m.detailViewport.Width+2).Render(detailHeaderStyle.Render(detailHeader)),
	)
	panes := lipgloss.JoinHorizontal(lipgloss.Top, listPane, " ", detailPane)

	statusText := " ←/→/Tab switch  ↑/↓ move  Enter detail  pgup/pgdn scroll  q quit"
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return headerRow + "\n" + panes + "\n" + statusBar
}

func renderRecords(records []model.Record, cursor int, isActive bool) string {
	if len(records) == 0 {
		return "  (no classifications recorded)"
	}

	var b strings.Builder
	for i, r := range records {
		titleSt := itemTitleStyle
		subtitleSt := itemSubtitleStyle
		prefix := "  "
		if i == cursor {
			prefix = "> "
			if isActive {
				titleSt = selectedItemTitleStyle
				subtitleSt = selectedItemSubtitleStyle
			}
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(r.Result.Category))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %s", r.CreatedAt.Local().Format(timeLayout), r.Request.Industry)))
		b.WriteByte('\n')

		if i < len(records)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func renderRecordDetail(r model.Record, width int) string {
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(detailValueStyle.Render(value))
		b.WriteByte('\n')
	}

	wrapWidth := max(width, 20)
	divider := func(label string) string {
		fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
		return dividerStyle.Render(label + fill)
	}

	addField("Category", r.Result.Category)
	addField("Recorded", r.CreatedAt.Local().Format(timeLayout))
	addField("Provider", r.Provider)
	addField("Model", r.Model)
	addField("Industry", r.Request.Industry)
	addField("Candidates", r.Request.Categories.String())

	if !containsLabel(r.Request.Categories, r.Result.Category) {
		b.WriteByte('\n')
		b.WriteString(warnStyle.Render("  ⚠ category is not one of the candidates") + "\n")
	}

	b.WriteByte('\n')
	b.WriteString(divider("── Customer ") + "\n\n")
	b.WriteString(bodyStyle.Render(wordWrap(r.Request.CustomerInformation, wrapWidth)) + "\n")

	b.WriteByte('\n')
	b.WriteString(divider("── Explanation ") + "\n\n")
	b.WriteString(bodyStyle.Render(wordWrap(r.Result.Explanation, wrapWidth)) + "\n")

	return b.String()
}

func containsLabel(labels model.Categories, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RunHistoryBrowser launches the split-pane history browser. records are
// shown in the order given, which is newest first from the store.
func RunHistoryBrowser(records []model.Record) error {
	p := tea.NewProgram(newHistoryModel(records), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
