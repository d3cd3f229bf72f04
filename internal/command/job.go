package command

import (
	"context"
	"fmt"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robinovitch61/bw/internal/dev"
	"github.com/robinovitch61/bw/internal/job"
	"github.com/robinovitch61/bw/internal/output"
	"time"
)

type StartedJobMsg struct {
	Run *job.Run
	Err error
}

func StartJobCmd(ctx context.Context, j job.Job, dir string) tea.Cmd {
	return func() tea.Msg {
		dev.Debug(fmt.Sprintf("cmd running to start job %s in %s", j.Name, dir))
		r, err := job.Start(ctx, j, dir)
		if err != nil {
			return StartedJobMsg{Err: err}
		}
		return StartedJobMsg{Run: r}
	}
}

type GetNewOutputMsg struct {
	Run    *job.Run
	Lines  []output.Line
	Done   bool
	Result job.Result
}

// Frequent keeps output batches out of the debug log
func (GetNewOutputMsg) Frequent() bool { return true }

func GetNextOutputCmd(r *job.Run, duration time.Duration) tea.Cmd {
	return func() tea.Msg {
		for {
			batch := job.Collect(r, duration)
			if len(batch.Lines) > 0 || batch.Done {
				return GetNewOutputMsg{Run: r, Lines: batch.Lines, Done: batch.Done, Result: batch.Result}
			}
		}
	}
}
