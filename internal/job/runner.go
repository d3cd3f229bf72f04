package job

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/robinovitch61/bw/internal/dev"
	"github.com/robinovitch61/bw/internal/output"
	"golang.org/x/sync/errgroup"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode"
)

// MaxLineBytes is the longest line read from a command. Longer lines end the capture of their stream
const MaxLineBytes = 1024 * 1024

// colorEnv asks tools that check for a terminal to color their output anyway
var colorEnv = []string{
	"CLICOLOR_FORCE=1",
	"CARGO_TERM_COLOR=always",
}

// Result is how a run ended
type Result struct {
	ExitCode int
	// Canceled is set when the run was stopped with Cancel rather than ending on its own
	Canceled bool
	Err      error
	Duration time.Duration
}

func (r Result) Success() bool {
	return r.Err == nil && !r.Canceled && r.ExitCode == 0
}

// Run is one execution of a job. Lines receives the output as it's printed and is closed when the command is done,
// after which Done receives the Result
type Run struct {
	ID      string
	Job     Job
	Started time.Time
	Lines   <-chan output.Line
	Done    <-chan Result

	ctx    context.Context
	cancel context.CancelFunc
}

// Start runs job in dir. The command is killed when ctx is done or the run is canceled
func Start(ctx context.Context, j Job, dir string) (*Run, error) {
	if len(j.Command) == 0 || j.Command[0] == "" {
		return nil, fmt.Errorf("job %q: %w", j.Name, ErrNoCommand)
	}
	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, j.Command[0], j.Command[1:]...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), colorEnv...)
	cmd.WaitDelay = time.Second

	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("error getting stderr of %s: %w", j.Name, err)
	}
	var stdout io.ReadCloser
	if j.NeedStdout {
		stdout, err = cmd.StdoutPipe()
		if err != nil {
			cancel()
			return nil, fmt.Errorf("error getting stdout of %s: %w", j.Name, err)
		}
	}

	started := time.Now()
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("error starting %s: %w", strings.Join(j.Command, " "), err)
	}

	lines := make(chan output.Line, 64)
	done := make(chan Result, 1)
	r := &Run{
		ID:      uuid.New().String(),
		Job:     j,
		Started: started,
		Lines:   lines,
		Done:    done,
		ctx:     ctx,
		cancel:  cancel,
	}
	dev.Debug(fmt.Sprintf("started run %s of job %s: %v", r.ID, j.Name, j.Command))

	go func() {
		<-ctx.Done()
		// children of a killed command can keep the pipes open, closing them here ends the scanners
		_ = stderr.Close()
		if stdout != nil {
			_ = stdout.Close()
		}
	}()

	go func() {
		var g errgroup.Group
		g.Go(func() error { return r.scan(output.Stderr, stderr, lines) })
		if stdout != nil {
			g.Go(func() error { return r.scan(output.Stdout, stdout, lines) })
		}
		scanErr := g.Wait()
		waitErr := cmd.Wait()
		close(lines)

		res := Result{Duration: time.Since(started)}
		var exitErr *exec.ExitError
		switch {
		case ctx.Err() != nil:
			res.Canceled = true
		case errors.As(waitErr, &exitErr):
			res.ExitCode = exitErr.ExitCode()
		case waitErr != nil:
			res.Err = fmt.Errorf("error waiting for %s: %w", j.Name, waitErr)
		}
		if scanErr != nil && !res.Canceled {
			res.Err = errors.Join(res.Err, scanErr)
		}
		dev.Debug(fmt.Sprintf("run %s of job %s done: %+v", r.ID, j.Name, res))
		done <- res
		close(done)
		r.cancel()
	}()
	return r, nil
}

// scan reads lines from one stream of the command until it closes
func (r *Run) scan(stream output.Stream, rd io.Reader, lines chan<- output.Line) error {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	for scanner.Scan() {
		// the scanner reuses its buffer, the parsed line doesn't keep it
		line := output.NewLineFromBytes(stream, CleanLine(scanner.Bytes()))
		select {
		case lines <- line:
		case <-r.ctx.Done():
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		// keep the command from blocking on a full pipe
		_, _ = io.Copy(io.Discard, rd)
		if r.ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("error reading %s: %w", stream, err)
	}
	return nil
}

// CleanLine prepares a raw line of command output for display. Only what follows the last carriage return is kept,
// as a terminal would overwrite what comes before it, and tabs become four spaces. The result may share memory with b
func CleanLine(b []byte) []byte {
	b = bytes.TrimRightFunc(b, unicode.IsSpace)
	if i := bytes.LastIndexByte(b, '\r'); i >= 0 {
		b = b[i+1:]
	}
	if bytes.IndexByte(b, '\t') < 0 {
		return b
	}
	return bytes.ReplaceAll(b, []byte("\t"), []byte("    "))
}

// Cancel kills the command. Lines and Done are still closed once it has exited
func (r *Run) Cancel() {
	if r != nil && r.cancel != nil {
		r.cancel()
	}
}

// Equals is true for the same execution of a job, not another run of the same job
func (r *Run) Equals(other *Run) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.ID == other.ID
}

// Batch is the output a run printed during one collection window
type Batch struct {
	Lines  []output.Line
	Done   bool
	Result Result
}

// Collect gathers the lines a run prints for up to duration, returning early when the run is done
func Collect(r *Run, duration time.Duration) Batch {
	var b Batch
	timeout := time.After(duration)
	for {
		select {
		case l, ok := <-r.Lines:
			if !ok {
				// every line is in, the result follows shortly
				b.Result = <-r.Done
				b.Done = true
				return b
			}
			b.Lines = append(b.Lines, l)
		case <-timeout:
			return b
		}
	}
}
