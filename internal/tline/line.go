package tline

import (
	"io"
	"strings"
)

// Run is a span of text sharing one style
type Run struct {
	Style Style
	Text  string
}

// Line is one row of command output as an ordered list of styled runs. A Line is not modified after it's built
// (SplitOff gives the receiver fresh slices), so it can be shared between goroutines
type Line struct {
	Runs []Run
}

// New parses a single line of terminal output, without its line terminator
func New(raw string) Line {
	var b Builder
	p := NewParser()
	for i := 0; i < len(raw); i++ {
		p.Advance(raw[i], b.Apply)
	}
	p.Flush(b.Apply)
	return b.Line()
}

func FromBytes(raw []byte) Line {
	var b Builder
	p := NewParser()
	for _, c := range raw {
		p.Advance(c, b.Apply)
	}
	p.Flush(b.Apply)
	return b.Line()
}

// Styled builds a single run line, for chrome text that doesn't come from a parsed output
func Styled(style Style, text string) Line {
	return Line{Runs: []Run{{Style: style, Text: text}}}
}

// Concat joins lines into one
func Concat(lines ...Line) Line {
	var n int
	for _, l := range lines {
		n += len(l.Runs)
	}
	runs := make([]Run, 0, n)
	for _, l := range lines {
		runs = append(runs, l.Runs...)
	}
	return Line{Runs: runs}
}

func (r Run) Width() int {
	return StringWidth(r.Text)
}

func (r Run) Draw(w io.Writer) error {
	return r.drawText(w, r.Text)
}

// DrawIn draws the run without taking more than maxCols columns. Returns the number of columns written
func (r Run) DrawIn(w io.Writer, maxCols int) (int, error) {
	offset, width := cutAtWidth(r.Text, maxCols)
	if offset == 0 && r.Text != "" {
		return 0, nil
	}
	return width, r.drawText(w, r.Text[:offset])
}

func (r Run) drawText(w io.Writer, text string) error {
	if r.Style.IsZero() {
		_, err := io.WriteString(w, text)
		return err
	}
	_, err := io.WriteString(w, string(r.Style)+text+string(Reset))
	return err
}

// SplitOff cuts the run at display column col. The receiver keeps the text before col, the returned run has the rest
// with the same style. A wide character straddling col goes to the returned run
func (r *Run) SplitOff(col int) Run {
	offset, _ := cutAtWidth(r.Text, col)
	rest := Run{Style: r.Style, Text: r.Text[offset:]}
	r.Text = r.Text[:offset]
	return rest
}

func (l Line) Empty() bool {
	return len(l.Runs) == 0
}

// Width is the display width of the line in terminal cells
func (l Line) Width() int {
	width := 0
	for _, r := range l.Runs {
		width += r.Width()
	}
	return width
}

// Raw is the text of the line without any styling
func (l Line) Raw() string {
	if len(l.Runs) == 1 {
		return l.Runs[0].Text
	}
	var sb strings.Builder
	for _, r := range l.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// String is the line as drawn
func (l Line) String() string {
	var sb strings.Builder
	_ = l.Draw(&sb)
	return sb.String()
}

func (l Line) Draw(w io.Writer) error {
	for _, r := range l.Runs {
		if err := r.Draw(w); err != nil {
			return err
		}
	}
	return nil
}

// DrawIn draws the line without taking more than maxCols columns. Returns the number of columns written
func (l Line) DrawIn(w io.Writer, maxCols int) (int, error) {
	if maxCols <= 0 {
		return 0, nil
	}
	cols := 0
	for _, r := range l.Runs {
		// zero width runs still fit once the columns are used up
		if cols >= maxCols && r.Width() > 0 {
			break
		}
		n, err := r.DrawIn(w, maxCols-cols)
		cols += n
		if err != nil {
			return cols, err
		}
		if n < r.Width() {
			// a truncated run ends the line, even if a narrower character after it would fit
			break
		}
	}
	return cols, nil
}

// StartsWith is true when the first run has exactly the given style and its text starts with prefix
func (l Line) StartsWith(style Style, prefix string) bool {
	if len(l.Runs) == 0 {
		return false
	}
	return l.Runs[0].Style == style && strings.HasPrefix(l.Runs[0].Text, prefix)
}

// FirstClusterWidth is the width of the first visible character of the line, 0 for an empty line
func (l Line) FirstClusterWidth() int {
	for _, r := range l.Runs {
		if w := firstClusterWidth(r.Text); w > 0 {
			return w
		}
	}
	return 0
}

// SplitOff cuts the line at display column col. The receiver keeps the runs up to col, the returned line holds what
// follows, each run keeping its style. A wide character straddling col goes to the returned line, so the receiver is
// never wider than col
func (l *Line) SplitOff(col int) Line {
	cols := 0
	for i, r := range l.Runs {
		w := r.Width()
		if cols+w <= col {
			cols += w
			continue
		}
		head := make([]Run, 0, i+1)
		head = append(head, l.Runs[:i]...)
		tail := make([]Run, 0, len(l.Runs)-i)

		cut := r
		rest := cut.SplitOff(col - cols)
		if cut.Text != "" {
			head = append(head, cut)
		}
		tail = append(tail, rest)
		tail = append(tail, l.Runs[i+1:]...)

		l.Runs = head
		return Line{Runs: tail}
	}
	return Line{}
}
