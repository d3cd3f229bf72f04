package keymap

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/robinovitch61/bw/internal/viewport"
)

type KeyMap struct {
	Copy  key.Binding
	Help  key.Binding
	Quit  key.Binding
	Rerun key.Binding
	Save  key.Binding
	Wrap  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy output"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "show/hide help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Rerun: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "run job again"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save output to file"),
		),
		Wrap: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "toggle line wrap"),
		),
	}
}

func GlobalKeyBindings(km KeyMap) []key.Binding {
	vp := viewport.DefaultKeyMap()
	return []key.Binding{
		km.Rerun,
		km.Wrap,
		km.Save,
		km.Copy,
		vp.Up,
		vp.Down,
		vp.Left,
		vp.Right,
		WithDesc(WithKeys(vp.PageUp, "b/pgup"), "page up"),
		WithDesc(WithKeys(vp.PageDown, "f/pgdn"), "page down"),
		vp.HalfPageUp,
		vp.HalfPageDown,
		vp.Top,
		vp.Bottom,
		km.Help,
		WithKeys(km.Quit, "q/ctrl+c"),
	}
}

func WithKeys(k key.Binding, keys string) key.Binding {
	newK := k
	newK.SetHelp(keys, k.Help().Desc)
	return newK
}

func WithDesc(k key.Binding, d string) key.Binding {
	newK := k
	newK.SetHelp(newK.Help().Key, d)
	return newK
}
