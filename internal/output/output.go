package output

import (
	"github.com/robinovitch61/bw/internal/tline"
	"regexp"
	"strings"
)

type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	switch s {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	}
	return "unknown"
}

// Kind is what a line of output means to the user, as far as it can be told from the line alone
type Kind int

const (
	Normal Kind = iota
	Error
	Warning
	Location
)

func (k Kind) String() string {
	switch k {
	case Normal:
		return "normal"
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Location:
		return "location"
	}
	return "unknown"
}

// goDiagnosticRegex matches the uncolored file:line:col diagnostics of the go toolchain
var goDiagnosticRegex = regexp.MustCompile(`^\S+\.go:\d+(:\d+)?: `)

// Classify finds the kind of a line from the style and text of its first run. Compilers that color their output
// (cargo, rustc) are recognized by their palette, the go toolchain by its plain text
func Classify(l tline.Line) Kind {
	switch {
	case l.StartsWith(tline.BoldRed, "error"):
		return Error
	case l.StartsWith(tline.BoldYellow, "warning"):
		return Warning
	case l.StartsWith(tline.BoldBlue, "-->"), l.StartsWith(tline.BoldBlue, "  -->"):
		return Location
	case l.StartsWith("", "--- FAIL"), l.StartsWith("", "FAIL"), l.StartsWith("", "panic: "):
		return Error
	case l.StartsWith("", "# "):
		return Location
	}
	if len(l.Runs) == 1 && l.Runs[0].Style.IsZero() && goDiagnosticRegex.MatchString(l.Runs[0].Text) {
		if strings.Contains(l.Runs[0].Text, ": warning") {
			return Warning
		}
		return Error
	}
	return Normal
}

type Line struct {
	Stream  Stream
	Content tline.Line
	Kind    Kind
}

// NewLine parses raw and classifies the result
func NewLine(stream Stream, raw string) Line {
	content := tline.New(raw)
	return Line{Stream: stream, Content: content, Kind: Classify(content)}
}

// NewLineFromBytes is NewLine for a line read straight from a command's output
func NewLineFromBytes(stream Stream, raw []byte) Line {
	content := tline.FromBytes(raw)
	return Line{Stream: stream, Content: content, Kind: Classify(content)}
}

// CommandOutput is everything a run of a job has printed so far, in order of arrival
type CommandOutput struct {
	Lines []Line
}

func (o *CommandOutput) Push(stream Stream, raw string) {
	o.Lines = append(o.Lines, NewLine(stream, raw))
}

func (o *CommandOutput) Append(lines ...Line) {
	o.Lines = append(o.Lines, lines...)
}

func (o CommandOutput) Len() int {
	return len(o.Lines)
}

// Counts is the number of error and warning lines
func (o CommandOutput) Counts() (errors, warnings int) {
	for _, l := range o.Lines {
		switch l.Kind {
		case Error:
			errors++
		case Warning:
			warnings++
		}
	}
	return errors, warnings
}

// Plain is the text of every line with styling removed
func (o CommandOutput) Plain() []string {
	plain := make([]string, len(o.Lines))
	for i, l := range o.Lines {
		plain[i] = l.Content.Raw()
	}
	return plain
}

// Contents is the styled content of every line, unwrapped
func (o CommandOutput) Contents() []tline.Line {
	contents := make([]tline.Line, len(o.Lines))
	for i, l := range o.Lines {
		contents[i] = l.Content
	}
	return contents
}
