package tline

import (
	"strings"
)

// Builder folds parser events into the runs of a single Line.
//
// This only works because of a few properties of the colored output of compilers like cargo or go vet with a color
// wrapper:
//   - styles are always reset before a different style starts
//   - composite styles arrive as consecutive sequences (bold, then foreground color) before any text
//
// A general terminal would need an attribute state carried across runs. This is not that.
type Builder struct {
	open  bool
	style strings.Builder
	text  strings.Builder
	runs  []Run
}

// Apply advances the builder by one event
func (b *Builder) Apply(e Event) {
	switch e := e.(type) {
	case Print:
		b.open = true
		b.text.WriteRune(e.Rune)
	case Dispatch:
		b.applyDispatch(e)
	case Control:
		// tabs are expanded upstream, other controls carry no text
	}
}

func (b *Builder) applyDispatch(d Dispatch) {
	if !d.IsSGR() {
		return
	}
	if d.IsReset() {
		b.finishRun()
		return
	}
	if b.open && b.text.Len() == 0 {
		// text hasn't started yet: this sequence is part of the same style
		b.style.WriteString(d.Sequence())
		return
	}
	b.finishRun()
	b.open = true
	b.style.WriteString(d.Sequence())
}

func (b *Builder) finishRun() {
	if !b.open {
		return
	}
	b.runs = append(b.runs, Run{
		Style: Style(b.style.String()),
		Text:  b.text.String(),
	})
	b.open = false
	b.style.Reset()
	b.text.Reset()
}

// Line finalizes a possibly still open run, even one without text, and returns the built Line. The builder is empty
// afterward
func (b *Builder) Line() Line {
	b.finishRun()
	l := Line{Runs: b.runs}
	b.runs = nil
	return l
}
