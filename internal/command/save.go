package command

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robinovitch61/bw/internal/fileio"
	"github.com/robinovitch61/bw/internal/watch"
)

// SaveOutputCmd saves the output of job to fileName, relative to dir. The saved file is kept from triggering the job
// again when the watcher is given
func SaveOutputCmd(dir, jobName, fileName string, content []string, w *watch.Watcher) tea.Cmd {
	save := fileio.SaveCmd(dir, jobName, fileName, content)
	return func() tea.Msg {
		msg := save()
		if saved, ok := msg.(fileio.SaveCompleteMsg); ok && saved.FullPath != "" && w != nil {
			w.Ignore(saved.FullPath)
		}
		return msg
	}
}
