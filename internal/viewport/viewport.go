package viewport

import (
	"fmt"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/robinovitch61/bw/internal/dev"
	"github.com/robinovitch61/bw/internal/tline"
	"strings"
)

// Terminology:
// - row: a line of command output as given to the viewport. When wrapping is on, rows are already wrapped to the
//   viewport width by the caller
// - visible: in the vertical sense, a row is visible if it is within the viewport
// - panned: in the horizontal sense, rows are drawn from xOffset when wrapping is off
//
// wrap disabled, panned right by 8:
//                           row index
// the first line            0
// e second line             1

// Model represents a viewport component
type Model struct {
	FooterStyle lipgloss.Style

	// keyMap is the keymap for the viewport
	keyMap KeyMap

	// header is the fixed header lines at the top of the viewport, never panned
	header []tline.Line

	// rows is the complete list of rows that can be scrolled through
	rows []tline.Line

	// footerEnabled is true if the viewport will show the footer when it overflows
	footerEnabled bool

	// wrapText is true when the rows were wrapped to the width, which disables panning
	wrapText bool

	// bottomSticky is true when the view should follow new rows when scrolled to the bottom
	bottomSticky bool

	// width is the width of the entire viewport in terminal columns
	width int

	// height is the height of the entire viewport in lines
	height int

	// topRowIdx is the index of the topmost visible row
	topRowIdx int

	// xOffset is the number of terminal cells scrolled right when rows overflow the viewport and wrapping is off
	xOffset int
}

// New creates a new viewport model with reasonable defaults
func New(width, height int, keyMap KeyMap) (m Model) {
	m.setWidthHeight(width, height)
	m.keyMap = keyMap
	m.footerEnabled = true
	m.bottomSticky = true
	return m
}

// Update processes messages and updates the model
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	dev.DebugUpdateMsg("Viewport", msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Up):
			m.scrollUp(1)

		case key.Matches(msg, m.keyMap.Down):
			m.scrollDown(1)

		case key.Matches(msg, m.keyMap.Left):
			if !m.wrapText {
				m.safelySetXOffset(m.xOffset - max(1, m.width/4))
			}

		case key.Matches(msg, m.keyMap.Right):
			if !m.wrapText {
				m.safelySetXOffset(m.xOffset + max(1, m.width/4))
			}

		case key.Matches(msg, m.keyMap.HalfPageUp):
			m.scrollUp(max(1, m.getNumContentLines()/2))

		case key.Matches(msg, m.keyMap.HalfPageDown):
			m.scrollDown(max(1, m.getNumContentLines()/2))

		case key.Matches(msg, m.keyMap.PageUp):
			m.scrollUp(max(1, m.getNumContentLines()))

		case key.Matches(msg, m.keyMap.PageDown):
			m.scrollDown(max(1, m.getNumContentLines()))

		case key.Matches(msg, m.keyMap.Top):
			m.topRowIdx = 0

		case key.Matches(msg, m.keyMap.Bottom):
			m.topRowIdx = m.maxTopRowIdx()
		}
	}
	return m, nil
}

// View renders the viewport
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	var lines []string
	for _, h := range m.getVisibleHeaderLines() {
		lines = append(lines, drawRow(h, m.width))
	}

	numContentLines := m.getNumContentLines()
	end := min(len(m.rows), m.topRowIdx+numContentLines)
	for i := m.topRowIdx; i < end; i++ {
		row := m.rows[i]
		if !m.wrapText && m.xOffset > 0 {
			row = row.SplitOff(m.xOffset)
		}
		lines = append(lines, drawRow(row, m.width))
	}
	for len(lines) < m.height-1 || (len(lines) < m.height && !m.showFooter()) {
		lines = append(lines, strings.Repeat(" ", m.width))
	}
	if m.showFooter() && len(lines) < m.height {
		lines = append(lines, m.getFooterLine())
	}
	return strings.Join(lines, "\n")
}

// drawRow draws row in exactly width columns
func drawRow(row tline.Line, width int) string {
	var sb strings.Builder
	cols, err := row.DrawIn(&sb, width)
	if err != nil {
		dev.Debug(fmt.Sprintf("error drawing row: %v", err))
	}
	if cols < width {
		sb.WriteString(strings.Repeat(" ", width-cols))
	}
	return sb.String()
}

// SetContent sets the rows of the viewport. When bottomSticky is set and the last of the previous rows was visible, the
// view moves to show the last of the new rows
func (m *Model) SetContent(rows []tline.Line) {
	stayAtBottom := m.bottomSticky && len(m.rows) > 0 && m.isScrolledToBottom()
	m.rows = rows
	if stayAtBottom {
		m.topRowIdx = m.maxTopRowIdx()
	} else {
		m.safelySetTopRowIdx(m.topRowIdx)
	}
	m.safelySetXOffset(m.xOffset)
}

// GetContent returns the rows of the viewport
func (m Model) GetContent() []tline.Line {
	return m.rows
}

func (m *Model) SetHeader(header []tline.Line) {
	m.header = header
	m.safelySetTopRowIdx(m.topRowIdx)
}

// SetBottomSticky sets whether the view should stay at the bottom when rows are added and it's at the bottom
func (m *Model) SetBottomSticky(bottomSticky bool) {
	m.bottomSticky = bottomSticky
}

// SetFooterEnabled sets whether the viewport shows the footer when it overflows
func (m *Model) SetFooterEnabled(footerEnabled bool) {
	m.footerEnabled = footerEnabled
}

// SetWrapText sets whether the rows given are wrapped, which disables panning
func (m *Model) SetWrapText(wrapText bool) {
	m.wrapText = wrapText
	m.xOffset = 0
}

// GetWrapText returns whether the viewport wraps text
func (m Model) GetWrapText() bool {
	return m.wrapText
}

// SetWidth sets the viewport's width
func (m *Model) SetWidth(width int) {
	m.setWidthHeight(width, m.height)
}

// SetHeight sets the viewport's height, including header and footer
func (m *Model) SetHeight(height int) {
	m.setWidthHeight(m.width, height)
}

func (m Model) GetWidth() int {
	return m.width
}

func (m Model) GetHeight() int {
	return m.height
}

// GetXOffset returns the number of columns panned right
func (m Model) GetXOffset() int {
	return m.xOffset
}

// GetTopRowIdx returns the index of the topmost visible row
func (m Model) GetTopRowIdx() int {
	return m.topRowIdx
}

// SetTopRowIdx scrolls so rowIdx is the topmost visible row, or as close to it as the rows allow
func (m *Model) SetTopRowIdx(rowIdx int) {
	m.safelySetTopRowIdx(rowIdx)
}

// ScrollSoRowIdxInView scrolls the least amount needed for a row to be visible
func (m *Model) ScrollSoRowIdxInView(rowIdx int) {
	rowIdx = clampValMinMax(rowIdx, 0, len(m.rows)-1)
	numContentLines := m.getNumContentLines()
	if rowIdx < m.topRowIdx {
		m.safelySetTopRowIdx(rowIdx)
	} else if rowIdx >= m.topRowIdx+numContentLines {
		m.safelySetTopRowIdx(rowIdx - numContentLines + 1)
	}
}

// IsScrolledToBottom is true when the last row is visible
func (m Model) IsScrolledToBottom() bool {
	return m.isScrolledToBottom()
}

func (m Model) maxLineWidth() int {
	maxLineWidth := 0
	for i := range m.rows {
		if w := m.rows[i].Width(); w > maxLineWidth {
			maxLineWidth = w
		}
	}
	return maxLineWidth
}

func (m *Model) safelySetXOffset(n int) {
	maxXOffset := m.maxLineWidth() - m.width
	m.xOffset = max(0, min(maxXOffset, n))
}

func (m *Model) setWidthHeight(width, height int) {
	m.width, m.height = max(0, width), max(0, height)
	m.safelySetTopRowIdx(m.topRowIdx)
	m.safelySetXOffset(m.xOffset)
}

func (m *Model) safelySetTopRowIdx(topRowIdx int) {
	m.topRowIdx = clampValMinMax(topRowIdx, 0, m.maxTopRowIdx())
}

func (m Model) maxTopRowIdx() int {
	return max(0, len(m.rows)-m.getNumContentLines())
}

func (m Model) getVisibleHeaderLines() []tline.Line {
	if m.height <= 0 {
		return nil
	}
	return m.header[:min(len(m.header), m.height)]
}

// showFooter is true when the rows overflow the space left by the header
func (m Model) showFooter() bool {
	if !m.footerEnabled {
		return false
	}
	available := m.height - len(m.getVisibleHeaderLines())
	return available > 1 && len(m.rows) > available
}

// getNumContentLines returns the number of lines of between the header and footer
func (m Model) getNumContentLines() int {
	contentHeight := m.height - len(m.getVisibleHeaderLines())
	if m.showFooter() {
		contentHeight-- // one for footer
	}
	return max(0, contentHeight)
}

func (m *Model) scrollDown(n int) {
	m.safelySetTopRowIdx(m.topRowIdx + n)
}

func (m *Model) scrollUp(n int) {
	m.safelySetTopRowIdx(m.topRowIdx - n)
}

func (m Model) isScrolledToBottom() bool {
	return m.topRowIdx >= m.maxTopRowIdx()
}

func (m Model) getFooterLine() string {
	numerator := min(len(m.rows), m.topRowIdx+m.getNumContentLines())
	denominator := len(m.rows)
	footerString := fmt.Sprintf("%d%% (%d/%d)", percent(numerator, denominator), numerator, denominator)
	if ansi.StringWidth(footerString) > m.width {
		if m.width < 3 {
			footerString = truncate.String(footerString, uint(m.width))
		} else {
			footerString = truncate.StringWithTail(footerString, uint(m.width), "...")
		}
	}
	footerString += strings.Repeat(" ", max(0, m.width-ansi.StringWidth(footerString)))
	return m.FooterStyle.Render(footerString)
}
