package internal

import (
	"fmt"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robinovitch61/bw/internal/command"
	"github.com/robinovitch61/bw/internal/dev"
	"github.com/robinovitch61/bw/internal/style"
	"path/filepath"
)

// watchDirs is the job directory plus the job's extra watch directories, which are relative to it
func watchDirs(c Config) []string {
	dirs := []string{c.Dir}
	for _, w := range c.Job.Watch {
		if !filepath.IsAbs(w) {
			w = filepath.Join(c.Dir, w)
		}
		dirs = append(dirs, w)
	}
	return dirs
}

func createInitialCommands(m Model) []tea.Cmd {
	dev.Debug("initializing")
	style.DebugColors()
	dirs := watchDirs(m.config)
	dev.Debug(fmt.Sprintf("watching %v with debounce %s", dirs, m.config.Debounce))
	return []tea.Cmd{
		command.StartWatcherCmd(dirs, m.config.Debounce),
		command.StartJobCmd(m.ctx, m.config.Job, m.config.Dir),
	}
}
