package internal

import (
	"context"
	"fmt"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/robinovitch61/bw/internal/command"
	"github.com/robinovitch61/bw/internal/constants"
	"github.com/robinovitch61/bw/internal/dev"
	"github.com/robinovitch61/bw/internal/fileio"
	"github.com/robinovitch61/bw/internal/help"
	"github.com/robinovitch61/bw/internal/job"
	"github.com/robinovitch61/bw/internal/keymap"
	"github.com/robinovitch61/bw/internal/message"
	"github.com/robinovitch61/bw/internal/output"
	"github.com/robinovitch61/bw/internal/style"
	"github.com/robinovitch61/bw/internal/tline"
	"github.com/robinovitch61/bw/internal/toast"
	"github.com/robinovitch61/bw/internal/util"
	"github.com/robinovitch61/bw/internal/viewport"
	"github.com/robinovitch61/bw/internal/watch"
	"strings"
)

type Model struct {
	config      Config
	keyMap      keymap.KeyMap
	width       int
	height      int
	initialized bool
	err         error
	ctx         context.Context
	cancel      context.CancelFunc
	watcher     *watch.Watcher

	// run is the current execution of the job, nil while one is being started
	run *job.Run
	// running is true from the moment the job is started until its result is in
	running bool
	result  job.Result
	// stale is true while the output shown is from the run before the current one
	stale bool

	output   output.CommandOutput
	wrapped  output.Wrapped
	wrap     bool
	viewport viewport.Model
	toast    toast.Model
	showHelp bool
}

func InitialModel(c Config) Model {
	ctx, cancel := context.WithCancel(context.Background())
	vp := viewport.New(0, 0, viewport.DefaultKeyMap())
	vp.FooterStyle = style.ViewportFooterStyle
	vp.SetWrapText(c.Wrap)
	return Model{
		config:   c,
		keyMap:   keymap.DefaultKeyMap(),
		ctx:      ctx,
		cancel:   cancel,
		running:  true,
		wrap:     c.Wrap,
		viewport: vp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(createInitialCommands(m)...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	dev.DebugMsg("App", msg)
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.SetWidth(m.width)
		m.viewport.SetHeight(m.height)
		m.initialized = true
		m.updateContent()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case command.StartedWatcherMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.watcher = msg.Watcher
		return m, command.WaitForChangeCmd(m.watcher)

	case command.FilesChangedMsg:
		dev.Debug(fmt.Sprintf("running %s again after changes to %v", m.config.Job.Name, msg.Paths))
		m, cmd = m.rerun()
		return m, tea.Batch(cmd, command.WaitForChangeCmd(m.watcher))

	case command.WatcherErrMsg:
		m, cmd = m.withToast(fmt.Sprintf("Error watching files: %v", msg.Err), style.ErrorStyle)
		return m, tea.Batch(cmd, command.WaitForChangeCmd(m.watcher))

	case command.StartedJobMsg:
		return m.handleStartedJobMsg(msg)

	case command.GetNewOutputMsg:
		return m.handleNewOutputMsg(msg)

	case message.ErrMsg:
		m.err = msg.Err
		return m, nil

	case fileio.SaveCompleteMsg:
		if msg.ErrMessage != "" {
			return m.withToast(fmt.Sprintf("Error saving output: %s", msg.ErrMessage), style.ErrorStyle)
		}
		return m.withToast(msg.SuccessMessage, style.ToastStyle)

	case command.ContentCopiedToClipboardMsg:
		if msg.Err != nil {
			return m.withToast(fmt.Sprintf("Error copying to clipboard: %v", msg.Err), style.ErrorStyle)
		}
		return m.withToast(fmt.Sprintf("Copied %s to clipboard", plural(strings.Count(msg.Content, "\n")+1, "line")), style.ToastStyle)

	case toast.TimeoutMsg:
		m.toast, cmd = m.toast.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		errString := m.err.Error()
		if m.width > 0 {
			errString = wrap.String(errString, m.width)
		}
		return lipgloss.JoinVertical(
			lipgloss.Left,
			style.ErrorStyle.Render("Error"),
			"",
			"q or ctrl+c to quit",
			"",
			errString,
		)
	}
	if !m.initialized {
		return ""
	}
	if m.showHelp {
		helpText := help.MakeHelp(m.keyMap, style.KeyHelpStyle, constants.HelpRowsPerColumn)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, helpText)
	}
	viewLines := strings.Split(m.viewport.View(), "\n")
	if toastHeight := m.toast.ViewHeight(m.width); toastHeight > 0 && len(viewLines) >= toastHeight {
		viewLines = viewLines[:len(viewLines)-toastHeight]
		viewLines = append(viewLines, strings.Split(m.toast.View(m.width), "\n")...)
	}
	return strings.Join(viewLines, "\n")
}

// statusLine is the header: the job, how its last run went and how many errors and warnings it printed
func (m Model) statusLine() tline.Line {
	sep := tline.Styled("", "  ")
	parts := []tline.Line{
		tline.Styled(tline.BoldBlue, m.config.Job.Name),
		sep,
		m.stateText(),
	}
	errs, warnings := m.output.Counts()
	if errs > 0 {
		parts = append(parts, sep, tline.Styled(tline.BoldRed, plural(errs, "error")))
	}
	if warnings > 0 {
		parts = append(parts, sep, tline.Styled(tline.BoldYellow, plural(warnings, "warning")))
	}
	left := tline.Concat(parts...)

	right := tline.Styled("", fmt.Sprintf("%s for help", m.keyMap.Help.Help().Key))
	if gap := m.width - left.Width() - right.Width(); gap > 0 {
		return tline.Concat(left, tline.Styled("", strings.Repeat(" ", gap)), right)
	}
	return left
}

func (m Model) stateText() tline.Line {
	switch {
	case m.running:
		return tline.Styled(tline.BoldYellow, "running")
	case m.result.Canceled:
		return tline.Styled(tline.Bold, "canceled")
	case m.result.Err != nil:
		return tline.Styled(tline.BoldRed, "error")
	case m.result.ExitCode != 0:
		return tline.Styled(tline.BoldRed, fmt.Sprintf("failed (exit code %d) in %s", m.result.ExitCode, util.FormatDuration(m.result.Duration)))
	default:
		return tline.Styled(tline.Bold, fmt.Sprintf("ok in %s", util.FormatDuration(m.result.Duration)))
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m.quit()

	case m.showHelp:
		// any key hides help
		m.showHelp = false

	case m.err != nil:
		return m, nil

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = true

	case key.Matches(msg, m.keyMap.Rerun):
		return m.rerun()

	case key.Matches(msg, m.keyMap.Wrap):
		return m.toggleWrap(), nil

	case key.Matches(msg, m.keyMap.Save):
		if m.output.Len() == 0 {
			return m.withToast("No output to save", style.ToastStyle)
		}
		return m, command.SaveOutputCmd(m.config.Dir, m.config.Job.Name, "", m.output.Plain(), m.watcher)

	case key.Matches(msg, m.keyMap.Copy):
		if m.output.Len() == 0 {
			return m.withToast("No output to copy", style.ToastStyle)
		}
		return m, command.CopyContentToClipboardCmd(strings.Join(m.output.Plain(), "\n"))

	default:
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// toggleWrap switches between wrapped and unwrapped output, keeping the same output line at the top
func (m Model) toggleWrap() Model {
	atBottom := m.viewport.IsScrolledToBottom()
	topLine := m.topSourceLine()
	m.wrap = !m.wrap
	m.viewport.SetWrapText(m.wrap)
	m.updateContent()
	if !atBottom {
		m.viewport.SetTopRowIdx(m.firstRowOf(topLine))
	}
	return m
}

// topSourceLine is the index of the output line at the top of the viewport
func (m Model) topSourceLine() int {
	top := m.viewport.GetTopRowIdx()
	if !m.wrap {
		return top
	}
	rows := m.wrapped.Rows()
	if top < len(rows) {
		return rows[top].Source
	}
	return 0
}

// firstRowOf is the index of the first viewport row showing the output line at index source
func (m Model) firstRowOf(source int) int {
	if !m.wrap {
		return source
	}
	for i, r := range m.wrapped.Rows() {
		if r.Source >= source {
			return i
		}
	}
	return 0
}

func (m Model) handleStartedJobMsg(msg command.StartedJobMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		dev.Debug(fmt.Sprintf("error starting job: %v", msg.Err))
		m.run.Cancel()
		m.run = nil
		m.running = false
		m.result = job.Result{Err: msg.Err}
		m.clearOutput()
		m.output.Append(output.Line{
			Stream:  output.Stderr,
			Content: tline.Styled(tline.BoldRed, msg.Err.Error()),
			Kind:    output.Error,
		})
		m.updateContent()
		return m, nil
	}
	// the latest run to start wins, e.g. when asked to run again twice in a row. Whatever the replaced run printed
	// goes once the new one prints
	if m.run != nil {
		m.run.Cancel()
		m.stale = true
	}
	m.run = msg.Run
	m.running = true
	m.result = job.Result{}
	m.updateContent()
	return m, command.GetNextOutputCmd(m.run, constants.CollectOutputDuration)
}

func (m Model) handleNewOutputMsg(msg command.GetNewOutputMsg) (Model, tea.Cmd) {
	if !msg.Run.Equals(m.run) {
		dev.Debug(fmt.Sprintf("dropping %d lines from run %s", len(msg.Lines), msg.Run.ID))
		return m, nil
	}
	if m.stale {
		m.clearOutput()
	}
	m.output.Append(msg.Lines...)
	if msg.Done {
		m.running = false
		m.result = msg.Result
		m.updateContent()
		return m, nil
	}
	m.updateContent()
	return m, command.GetNextOutputCmd(m.run, constants.CollectOutputDuration)
}

// rerun kills the current run if any and starts the job again. The previous output stays up until the new run
// prints something
func (m Model) rerun() (Model, tea.Cmd) {
	m.run.Cancel()
	m.run = nil
	m.running = true
	m.stale = true
	m.updateContent()
	return m, command.StartJobCmd(m.ctx, m.config.Job, m.config.Dir)
}

func (m *Model) clearOutput() {
	m.output = output.CommandOutput{}
	m.wrapped.Reset()
	m.stale = false
	// new output starts from the top
	m.viewport.SetContent(nil)
	m.viewport.SetTopRowIdx(0)
}

func (m *Model) updateContent() {
	m.viewport.SetHeader([]tline.Line{m.statusLine()})
	if m.wrap {
		m.wrapped.Update(m.output, m.viewport.GetWidth())
		m.viewport.SetContent(m.wrapped.Lines())
	} else {
		m.viewport.SetContent(m.output.Contents())
	}
}

func (m Model) withToast(text string, s lipgloss.Style) (Model, tea.Cmd) {
	m.toast = toast.New(text, s)
	return m, m.toast.TimeoutCmd(constants.ToastDuration)
}

func (m Model) quit() (Model, tea.Cmd) {
	m.run.Cancel()
	m.cancel()
	if m.watcher != nil {
		m.watcher.Close()
	}
	return m, tea.Quit
}
