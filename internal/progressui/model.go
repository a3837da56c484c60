// Package progressui provides the Bubble Tea progress browser.
package progressui

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/verte-zerg/bookkit/internal/model"
	"github.com/verte-zerg/bookkit/internal/stats"
)

const (
	tabOverview = iota
	tabChapters
	tabHistory
)

const (
	tableBarWidth = 20
	laggingCount  = 3
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea progress browser.
type Model struct {
	report  model.Report
	history stats.History
	errMsg  string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	chapters  table.Model

	width  int
	height int
}

// NewModel constructs a browser over report. historyErr is shown in the
// footer when history could not be loaded.
func NewModel(report model.Report, history stats.History, historyErr error) *Model {
	m := &Model{
		report:  report,
		history: history,
		tabs:    []string{"Overview", "Chapters", "History"},
	}
	if historyErr != nil {
		m.errMsg = "history unavailable: " + historyErr.Error()
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.chapters = buildChapterTable(report, 80, 10)
	m.renderTabContents()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab", "right", "l":
			m.moveTab(1)
			return m, nil
		case "shift+tab", "left", "h":
			m.moveTab(-1)
			return m, nil
		}
		var cmd tea.Cmd
		if m.activeTab == tabChapters {
			m.chapters, cmd = m.chapters.Update(msg)
			return m, cmd
		}
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.chapters.SetWidth(m.width)
	m.chapters.SetHeight(maxInt(1, bodyHeight-1))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	m.activeTab = next
	if m.activeTab == tabChapters {
		m.chapters.Focus()
	} else {
		m.chapters.Blur()
	}
}

func (m *Model) renderTabContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, width))
	m.viewports[tabHistory].SetContent(renderHistory(m.history))
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	summary := fmt.Sprintf("Generated %s  chapters=%d  average=%.1f%%",
		m.report.GeneratedAt.Local().Format(time.DateTime),
		len(m.report.Chapters),
		m.report.Summary.AverageProgress)
	summary = runewidth.Truncate(summary, maxInt(m.width, 1), "...")
	return m.renderTabs() + "\n" + headerStyle.Render(summary)
}

func (m *Model) renderBody() string {
	if m.activeTab == tabChapters {
		if len(m.report.Chapters) == 0 {
			return "No chapters found."
		}
		return tableMutedStyle.Render(m.chapters.View())
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func renderOverview(report model.Report, width int) string {
	if len(report.Chapters) == 0 {
		return "No chapters found."
	}
	p := message.NewPrinter(language.English)
	s := report.Summary
	cards := []string{
		metricCard("Chapters", fmt.Sprintf("%d", len(report.Chapters))),
		metricCard("Average", fmt.Sprintf("%.1f%%", s.AverageProgress)),
		metricCard("Chars", p.Sprintf("%d", s.TotalChars)),
		metricCard("Exercises", fmt.Sprintf("%d", s.TotalExercises)),
		metricCard("Code Examples", fmt.Sprintf("%d", s.TotalCodeExamples)),
	}
	var top string
	if width < 80 {
		top = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
		top = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}
	lagging := stats.SelectLagging(report, laggingCount)
	if len(lagging) == 0 {
		return top
	}
	lines := []string{top, "", "Needs attention:"}
	for _, name := range lagging {
		ch := report.Chapters[name]
		lines = append(lines, fmt.Sprintf("  %s %5.1f%% (%s)", name, ch.Progress, ch.Status()))
	}
	return strings.Join(lines, "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderHistory(h stats.History) string {
	var buf bytes.Buffer
	if err := stats.RenderHistory(&buf, h); err != nil {
		return fmt.Sprintf("Failed to render history: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func chapterColumns() []table.Column {
	return []table.Column{
		{Title: "Chapter", Width: 20},
		{Title: "Progress", Width: tableBarWidth},
		{Title: "%", Width: 6},
		{Title: "Status", Width: 12},
		{Title: "Chars", Width: 8},
		{Title: "Exercises", Width: 9},
		{Title: "Code", Width: 5},
	}
}

func chapterRows(report model.Report) []table.Row {
	rows := make([]table.Row, 0, len(report.Chapters))
	for _, name := range report.ChapterNames() {
		ch := report.Chapters[name]
		rows = append(rows, table.Row{
			name,
			stats.ProgressBar(ch.Progress, tableBarWidth),
			fmt.Sprintf("%.1f", ch.Progress),
			ch.Status(),
			fmt.Sprintf("%d", ch.CharCount),
			fmt.Sprintf("%d", ch.ExercisesCount),
			fmt.Sprintf("%d", ch.CodeExamples),
		})
	}
	return rows
}

func buildChapterTable(report model.Report, width, height int) table.Model {
	t := table.New(
		table.WithColumns(chapterColumns()),
		table.WithRows(chapterRows(report)),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(chapterTableStyles())
	return t
}

func chapterTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
