package command

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robinovitch61/bw/internal/message"
	"github.com/robinovitch61/bw/internal/watch"
	"time"
)

type StartedWatcherMsg struct {
	Watcher *watch.Watcher
	Err     error
}

func StartWatcherCmd(dirs []string, debounce time.Duration) tea.Cmd {
	return func() tea.Msg {
		w, err := watch.New(dirs, debounce)
		return StartedWatcherMsg{Watcher: w, Err: err}
	}
}

type FilesChangedMsg struct {
	Paths []string
}

type WatcherErrMsg struct {
	Err error
}

// WaitForChangeCmd blocks until the next file change or watcher error, or until the watcher is closed
func WaitForChangeCmd(w *watch.Watcher) tea.Cmd {
	return func() tea.Msg {
		select {
		case change := <-w.Changes:
			return FilesChangedMsg{Paths: change.Paths}
		case err := <-w.Errors:
			return WatcherErrMsg{Err: err}
		case <-w.Done():
			return message.CleanupCompleteMsg{}
		}
	}
}
