package internal

import (
	"errors"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robinovitch61/bw/internal/command"
	"github.com/robinovitch61/bw/internal/fileio"
	"github.com/robinovitch61/bw/internal/job"
	"github.com/robinovitch61/bw/internal/output"
	"github.com/robinovitch61/bw/internal/tline"
	"github.com/robinovitch61/bw/internal/toast"
	"github.com/robinovitch61/bw/internal/util"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestModel(width, height int, wrap bool) Model {
	m := InitialModel(Config{
		Dir:      "/tmp/project",
		Job:      job.Job{Name: "check", Command: []string{"go", "vet", "./..."}},
		Debounce: time.Millisecond,
		Wrap:     wrap,
	})
	return update(m, tea.WindowSizeMsg{Width: width, Height: height})
}

func update(m Model, msg tea.Msg) Model {
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+y":
		return tea.KeyMsg{Type: tea.KeyCtrlY}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func outputLines(raw ...string) []output.Line {
	var lines []output.Line
	for _, r := range raw {
		lines = append(lines, output.NewLine(output.Stderr, r))
	}
	return lines
}

func viewLines(m Model) []string {
	return strings.Split(m.View(), "\n")
}

func TestModel_InitialView(t *testing.T) {
	m := InitialModel(Config{Job: job.Job{Name: "check"}})
	if m.View() != "" {
		t.Errorf("expected empty view before the window size is known, got %q", m.View())
	}
	m = update(m, tea.WindowSizeMsg{Width: 30, Height: 3})
	expected := strings.Join([]string{
		"\x1b[1m\x1b[38;5;12mcheck\x1b[0m  \x1b[1m\x1b[33mrunning\x1b[0m      ? for help",
		strings.Repeat(" ", 30),
		strings.Repeat(" ", 30),
	}, "\n")
	util.CmpStr(t, expected, m.View())
}

func TestModel_Output(t *testing.T) {
	m := newTestModel(80, 6, false)
	r := &job.Run{ID: "first"}
	m = update(m, command.StartedJobMsg{Run: r})
	m = update(m, command.GetNewOutputMsg{Run: r, Lines: outputLines(
		"\x1b[1m\x1b[33mwarning\x1b[0m\x1b[1m: unused variable: `x`\x1b[0m",
		"\x1b[0m\x1b[1m\x1b[38;5;9merror[E0425]\x1b[0m\x1b[0m\x1b[1m: cannot find value `y`\x1b[0m",
	)})
	m = update(m, command.GetNewOutputMsg{Run: r, Done: true, Result: job.Result{ExitCode: 101, Duration: 1500 * time.Millisecond}})

	lines := viewLines(m)
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d", len(lines))
	}
	header := tline.New(lines[0]).Raw()
	if !strings.HasPrefix(header, "check  failed (exit code 101) in 1.5s  1 error  1 warning ") {
		t.Errorf("unexpected header %q", header)
	}
	if !strings.HasSuffix(header, "? for help") {
		t.Errorf("expected help hint at the end of %q", header)
	}
	util.CmpStr(t, "\x1b[1m\x1b[33mwarning\x1b[0m\x1b[1m: unused variable: `x`\x1b[0m"+strings.Repeat(" ", 80-29), lines[1])
	if !strings.HasPrefix(lines[2], "\x1b[1m\x1b[38;5;9merror[E0425]\x1b[0m") {
		t.Errorf("unexpected error row %q", lines[2])
	}
}

func TestModel_DropsOutputOfOldRuns(t *testing.T) {
	m := newTestModel(20, 4, false)
	old := &job.Run{ID: "old"}
	current := &job.Run{ID: "current"}
	m = update(m, command.StartedJobMsg{Run: old})
	m = update(m, command.StartedJobMsg{Run: current})
	m = update(m, command.GetNewOutputMsg{Run: old, Lines: outputLines("from old")})
	m = update(m, command.GetNewOutputMsg{Run: current, Lines: outputLines("from current")})

	if plain := m.output.Plain(); len(plain) != 1 || plain[0] != "from current" {
		t.Errorf("expected only the current run's output, got %v", plain)
	}
}

func TestModel_OverlappingStarts(t *testing.T) {
	m := newTestModel(20, 4, false)
	first := &job.Run{ID: "first"}
	m = update(m, command.StartedJobMsg{Run: first})
	m = update(m, command.GetNewOutputMsg{Run: first, Lines: outputLines("before"), Done: true})

	// run again twice before either start is reported
	m = update(m, keyMsg("r"))
	m = update(m, keyMsg("r"))
	older := &job.Run{ID: "older"}
	newer := &job.Run{ID: "newer"}
	m = update(m, command.StartedJobMsg{Run: older})
	m = update(m, command.GetNewOutputMsg{Run: older, Lines: outputLines(
		"\x1b[0m\x1b[1m\x1b[38;5;9merror[E0425]\x1b[0m: from older",
	)})
	m = update(m, command.StartedJobMsg{Run: newer})
	m = update(m, command.GetNewOutputMsg{Run: newer, Lines: outputLines("from newer")})

	util.CmpStr(t, "from newer", strings.Join(m.output.Plain(), "\n"))
	if errs, _ := m.output.Counts(); errs != 0 {
		t.Errorf("expected no errors counted from the replaced run, got %d", errs)
	}
}

func TestModel_RerunKeepsOutputUntilNewOutput(t *testing.T) {
	m := newTestModel(20, 4, false)
	first := &job.Run{ID: "first"}
	m = update(m, command.StartedJobMsg{Run: first})
	m = update(m, command.GetNewOutputMsg{Run: first, Lines: outputLines("old line"), Done: true})
	if m.running {
		t.Fatal("expected run to be done")
	}

	m = update(m, command.FilesChangedMsg{Paths: []string{"main.go"}})
	if !m.running || m.run != nil {
		t.Fatalf("expected a new run to be starting")
	}
	util.CmpStr(t, "old line", strings.Join(m.output.Plain(), "\n"))

	second := &job.Run{ID: "second"}
	m = update(m, command.StartedJobMsg{Run: second})
	util.CmpStr(t, "old line", strings.Join(m.output.Plain(), "\n"))

	m = update(m, command.GetNewOutputMsg{Run: second, Lines: outputLines("new line")})
	util.CmpStr(t, "new line", strings.Join(m.output.Plain(), "\n"))

	// a run with no output at all still replaces the old output
	m = update(m, keyMsg("r"))
	third := &job.Run{ID: "third"}
	m = update(m, command.StartedJobMsg{Run: third})
	m = update(m, command.GetNewOutputMsg{Run: third, Done: true})
	if m.output.Len() != 0 {
		t.Errorf("expected no output, got %v", m.output.Plain())
	}
	if m.running {
		t.Error("expected run to be done")
	}
}

func TestModel_StartError(t *testing.T) {
	m := newTestModel(40, 4, false)
	m = update(m, command.StartedJobMsg{Err: errors.New("executable file not found")})
	if m.running {
		t.Error("expected not running")
	}
	errs, _ := m.output.Counts()
	if errs != 1 {
		t.Errorf("expected 1 error, got %d", errs)
	}
	lines := viewLines(m)
	if !strings.Contains(lines[0], "error") {
		t.Errorf("expected error state in header %q", lines[0])
	}
	if !strings.Contains(lines[1], "executable file not found") {
		t.Errorf("expected error in output %q", lines[1])
	}
}

func TestModel_StateText(t *testing.T) {
	tests := []struct {
		name     string
		running  bool
		result   job.Result
		expected string
	}{
		{"running", true, job.Result{}, "running"},
		{"ok", false, job.Result{Duration: 350 * time.Millisecond}, "ok in 350ms"},
		{"failed", false, job.Result{ExitCode: 2, Duration: 2 * time.Second}, "failed (exit code 2) in 2.0s"},
		{"canceled", false, job.Result{Canceled: true}, "canceled"},
		{"error", false, job.Result{Err: errors.New("boom")}, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(40, 4, false)
			m.running = tt.running
			m.result = tt.result
			util.CmpStr(t, tt.expected, m.stateText().Raw())
		})
	}
}

func TestModel_Wrap(t *testing.T) {
	m := newTestModel(10, 4, false)
	r := &job.Run{ID: "r"}
	m = update(m, command.StartedJobMsg{Run: r})
	m = update(m, command.GetNewOutputMsg{Run: r, Lines: outputLines("0123456789abcdef", "xyz")})

	lines := viewLines(m)
	util.CmpStr(t, "0123456789", lines[1])
	util.CmpStr(t, "xyz       ", lines[2])

	m = update(m, keyMsg("w"))
	if !m.wrap || !m.viewport.GetWrapText() {
		t.Fatal("expected wrap on")
	}
	lines = viewLines(m)
	util.CmpStr(t, "0123456789", lines[1])
	util.CmpStr(t, "abcdef    ", lines[2])
	util.CmpStr(t, "xyz       ", lines[3])

	m = update(m, keyMsg("w"))
	if m.wrap {
		t.Fatal("expected wrap off")
	}
}

func TestModel_WrapKeepsTopLine(t *testing.T) {
	m := newTestModel(4, 4, false)
	r := &job.Run{ID: "r"}
	m = update(m, command.StartedJobMsg{Run: r})
	m = update(m, command.GetNewOutputMsg{Run: r, Lines: outputLines("aaaaaaaa", "bb", "cc", "dd", "ee", "ff")})

	m.viewport.SetTopRowIdx(1)
	m = update(m, keyMsg("w"))
	if m.topSourceLine() != 1 {
		t.Errorf("expected line 1 at the top, got %d", m.topSourceLine())
	}
	if m.viewport.GetTopRowIdx() != 2 {
		t.Errorf("expected row 2 at the top, got %d", m.viewport.GetTopRowIdx())
	}

	m = update(m, keyMsg("w"))
	if m.viewport.GetTopRowIdx() != 1 {
		t.Errorf("expected row 1 at the top, got %d", m.viewport.GetTopRowIdx())
	}
}

func TestModel_Help(t *testing.T) {
	m := newTestModel(80, 30, false)
	m = update(m, keyMsg("?"))
	if !m.showHelp {
		t.Fatal("expected help to show")
	}
	if !strings.Contains(m.View(), "toggle line wrap") {
		t.Errorf("expected help in view")
	}
	m = update(m, keyMsg("w"))
	if m.showHelp {
		t.Error("expected any key to hide help")
	}
	if m.wrap {
		t.Error("expected the key hiding help to do nothing else")
	}
}

func TestModel_Quit(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		t.Run(k, func(t *testing.T) {
			m := newTestModel(20, 4, false)
			_, cmd := m.Update(keyMsg(k))
			if cmd == nil {
				t.Fatal("expected a command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("expected quit")
			}
			if m.ctx.Err() == nil {
				t.Error("expected context to be canceled")
			}
		})
	}
}

func TestModel_SaveAndCopyWithoutOutput(t *testing.T) {
	for _, k := range []string{"s", "ctrl+y"} {
		t.Run(k, func(t *testing.T) {
			m := newTestModel(30, 4, false)
			m = update(m, keyMsg(k))
			if !m.toast.Visible {
				t.Fatal("expected a toast")
			}
			if !strings.Contains(m.toast.View(30), "No output to") {
				t.Errorf("unexpected toast %q", m.toast.View(30))
			}
		})
	}
}

func TestModel_Toast(t *testing.T) {
	m := newTestModel(30, 3, false)
	m = update(m, fileio.SaveCompleteMsg{FullPath: "/tmp/out.txt", SuccessMessage: "Saved to /tmp/out.txt"})
	lines := viewLines(m)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[2], "Saved to /tmp/out.txt") {
		t.Errorf("expected toast on the last line, got %q", lines[2])
	}

	m = update(m, toast.TimeoutMsg{ID: m.toast.ID})
	if strings.Contains(m.View(), "Saved") {
		t.Error("expected toast to be gone")
	}

	m = update(m, command.ContentCopiedToClipboardMsg{Content: "a\nb"})
	if !strings.Contains(m.View(), "Copied 2 lines to clipboard") {
		t.Errorf("expected copy toast, got %q", m.View())
	}
}

func TestModel_Err(t *testing.T) {
	m := newTestModel(80, 10, false)
	m = update(m, command.StartedWatcherMsg{Err: errors.New("error watching /nope: no such file or directory")})
	if !strings.Contains(m.View(), "no such file") {
		t.Errorf("expected error in view, got %q", m.View())
	}
	m = update(m, keyMsg("w"))
	if m.wrap {
		t.Error("expected keys other than quit to be ignored")
	}
}

func TestWatchDirs(t *testing.T) {
	c := Config{
		Dir: "/tmp/project",
		Job: job.Job{Watch: []string{"../shared", "/abs/dir"}},
	}
	expected := []string{"/tmp/project", filepath.Join("/tmp", "shared"), "/abs/dir"}
	actual := watchDirs(c)
	if len(actual) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
	for i := range expected {
		util.CmpStr(t, expected[i], actual[i])
	}
}
