package output

import (
	"github.com/robinovitch61/bw/internal/tline"
)

// Row is one screen row of wrapped output
type Row struct {
	Content tline.Line
	// Source is the index in CommandOutput.Lines of the line the row comes from
	Source int
}

// Wrapped is a CommandOutput cut into rows no wider than a given width
type Wrapped struct {
	rows    []Row
	width   int
	wrapped int // number of source lines already wrapped
}

func (w Wrapped) Rows() []Row {
	return w.rows
}

func (w Wrapped) Width() int {
	return w.width
}

// Lines is the content of every row
func (w Wrapped) Lines() []tline.Line {
	lines := make([]tline.Line, len(w.rows))
	for i, r := range w.rows {
		lines[i] = r.Content
	}
	return lines
}

// Reset drops all rows, for when the output they were wrapped from is replaced rather than extended
func (w *Wrapped) Reset() {
	w.rows = nil
	w.wrapped = 0
}

// Update brings the rows in line with out at the given width. When the width is unchanged and out only grew since
// the last update, only the new lines are wrapped. A width of 0 or less disables wrapping
func (w *Wrapped) Update(out CommandOutput, width int) {
	if width != w.width || len(out.Lines) < w.wrapped {
		w.rows = nil
		w.wrapped = 0
		w.width = width
	}
	for i := w.wrapped; i < len(out.Lines); i++ {
		w.rows = appendWrapped(w.rows, out.Lines[i].Content, i, width)
	}
	w.wrapped = len(out.Lines)
}

// appendWrapped appends the rows of line l cut to width. A character wider than the whole width is placed alone on
// its row rather than dropped
func appendWrapped(rows []Row, l tline.Line, source, width int) []Row {
	if width <= 0 {
		return append(rows, Row{Content: l, Source: source})
	}
	rest := l
	for rest.Width() > width {
		head := rest
		tail := head.SplitOff(width)
		if head.Width() == 0 {
			wide := tail
			tail = wide.SplitOff(wide.FirstClusterWidth())
			head = tline.Concat(head, wide)
		}
		rows = append(rows, Row{Content: head, Source: source})
		rest = tail
	}
	return append(rows, Row{Content: rest, Source: source})
}
