package tline

// Style is the escape sequence text that starts a style, e.g. "\x1b[1m\x1b[38;5;9m". It's kept as written rather
// than decoded into attributes so redrawing reproduces the original bytes. The empty Style means unstyled
type Style string

const (
	// Reset is written after the text of every styled run
	Reset      Style = "\x1b[0m"
	Bold       Style = "\x1b[1m"
	BoldRed    Style = "\x1b[1m\x1b[38;5;9m"
	BoldYellow Style = "\x1b[1m\x1b[33m"
	BoldBlue   Style = "\x1b[1m\x1b[38;5;12m"
)

func (s Style) IsZero() bool {
	return s == ""
}
