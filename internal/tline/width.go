package tline

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// clusterWidth is the number of terminal cells a grapheme cluster occupies
func clusterWidth(cluster string) int {
	return runewidth.StringWidth(cluster)
}

// StringWidth is the display width of s, which must not contain escape sequences
func StringWidth(s string) int {
	width := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		width += clusterWidth(cluster)
	}
	return width
}

// cutAtWidth returns the byte offset at which s must be cut so that s[:offset] is at most maxWidth cells wide, along
// with the width of s[:offset]. A cluster that would straddle maxWidth is left out, zero-width clusters reached once
// the width is filled are kept
func cutAtWidth(s string, maxWidth int) (offset, width int) {
	state := -1
	rest := s
	for len(rest) > 0 {
		cluster, next, _, newState := uniseg.FirstGraphemeClusterInString(rest, state)
		w := clusterWidth(cluster)
		if width+w > maxWidth {
			break
		}
		width += w
		offset += len(cluster)
		rest, state = next, newState
	}
	return offset, width
}

// firstClusterWidth is the display width of the first grapheme cluster of s
func firstClusterWidth(s string) int {
	if s == "" {
		return 0
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(s, -1)
	return clusterWidth(cluster)
}
