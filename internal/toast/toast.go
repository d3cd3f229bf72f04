package toast

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/robinovitch61/bw/internal/dev"
	"sync"
	"time"
)

var (
	lastID int
	idMtx  sync.Mutex
)

type Model struct {
	ID           int
	message      string
	Visible      bool
	messageStyle lipgloss.Style
}

func New(message string, messageStyle lipgloss.Style) Model {
	return Model{
		ID:           nextID(),
		message:      message,
		Visible:      true,
		messageStyle: messageStyle,
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	dev.DebugMsg("Toast", msg)
	switch msg := msg.(type) {
	case TimeoutMsg:
		if msg.ID > 0 && msg.ID != m.ID {
			return m, nil
		}
		m.Visible = false
	}
	return m, nil
}

// TimeoutCmd hides this toast after d, unless it has been replaced by then
func (m Model) TimeoutCmd(d time.Duration) tea.Cmd {
	id := m.ID
	return tea.Tick(d, func(t time.Time) tea.Msg { return TimeoutMsg{ID: id} })
}

// View renders the toast on a single line of the given width
func (m Model) View(width int) string {
	if !m.Visible || width <= 0 {
		return ""
	}
	message := m.message
	if ansi.StringWidth(message) > width {
		if width < 3 {
			message = truncate.String(message, uint(width))
		} else {
			message = truncate.StringWithTail(message, uint(width), "...")
		}
	}
	return m.messageStyle.Width(width).Render(message)
}

func (m Model) ViewHeight(width int) int {
	if v := m.View(width); v != "" {
		return lipgloss.Height(v)
	}
	return 0
}

type TimeoutMsg struct {
	ID int
}

func nextID() int {
	idMtx.Lock()
	defer idMtx.Unlock()
	lastID++
	return lastID
}
