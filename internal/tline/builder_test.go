package tline

import (
	"github.com/google/go-cmp/cmp"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		expected Line
	}{
		{
			name:     "empty",
			s:        "",
			expected: Line{},
		},
		{
			name:     "plain ascii is a single unstyled run",
			s:        "warning: unused variable `x`",
			expected: Line{Runs: []Run{{Text: "warning: unused variable `x`"}}},
		},
		{
			name: "composite style then reset",
			s:    "\x1b[1m\x1b[38;5;9mERROR\x1b[0m: bad",
			expected: Line{Runs: []Run{
				{Style: BoldRed, Text: "ERROR"},
				{Text: ": bad"},
			}},
		},
		{
			name:     "lone reset is an empty line",
			s:        "\x1b[0m",
			expected: Line{},
		},
		{
			name:     "style text is rebuilt from the parsed params",
			s:        "\x1b[01;033mwarn\x1b[00m",
			expected: Line{Runs: []Run{{Style: "\x1b[1;33m", Text: "warn"}}},
		},
		{
			name:     "short reset",
			s:        "\x1b[1mhi\x1b[m",
			expected: Line{Runs: []Run{{Style: Bold, Text: "hi"}}},
		},
		{
			name: "style after text starts a new run",
			s:    "a\x1b[33mb",
			expected: Line{Runs: []Run{
				{Text: "a"},
				{Style: "\x1b[33m", Text: "b"},
			}},
		},
		{
			name: "style without reset replaces the previous one",
			s:    "\x1b[1m\x1b[33mwarning\x1b[1m\x1b[38;5;12m -->",
			expected: Line{Runs: []Run{
				{Style: BoldYellow, Text: "warning"},
				{Style: BoldBlue, Text: " -->"},
			}},
		},
		{
			name:     "text attaches to the open run",
			s:        "\x1b[1mab\x1b[0m\x1b[0m",
			expected: Line{Runs: []Run{{Style: Bold, Text: "ab"}}},
		},
		{
			name:     "trailing style without text is kept",
			s:        "a\x1b[1m",
			expected: Line{Runs: []Run{{Text: "a"}, {Style: Bold}}},
		},
		{
			name:     "non-sgr sequences don't touch runs",
			s:        "\x1b[1mab\x1b[Kcd\x1b[0m",
			expected: Line{Runs: []Run{{Style: Bold, Text: "abcd"}}},
		},
		{
			name:     "osc hyperlinks are dropped, text kept",
			s:        "\x1b]8;;file:///src/main.rs\x1b\\src/main.rs\x1b]8;;\x1b\\:3:5",
			expected: Line{Runs: []Run{{Text: "src/main.rs:3:5"}}},
		},
		{
			name:     "c0 controls carry no text",
			s:        "a\rb\x07",
			expected: Line{Runs: []Run{{Text: "ab"}}},
		},
		{
			name:     "wide characters",
			s:        "\x1b[1m世界\x1b[0m🌟",
			expected: Line{Runs: []Run{{Style: Bold, Text: "世界"}, {Text: "🌟"}}},
		},
		{
			name: "cargo error header",
			s:    "\x1b[0m\x1b[1m\x1b[38;5;9merror[E0425]\x1b[0m\x1b[0m\x1b[1m: cannot find value `y` in this scope\x1b[0m",
			expected: Line{Runs: []Run{
				{Style: BoldRed, Text: "error[E0425]"},
				{Style: Bold, Text: ": cannot find value `y` in this scope"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := New(tt.s)
			if diff := cmp.Diff(tt.expected, actual); diff != "" {
				t.Errorf("Diff (-expected +actual):\n%s", diff)
			}
			if diff := cmp.Diff(tt.expected, FromBytes([]byte(tt.s))); diff != "" {
				t.Errorf("FromBytes Diff (-expected +actual):\n%s", diff)
			}
		})
	}
}

func TestBuilder_StyleFrozenOnceTextStarts(t *testing.T) {
	var b Builder
	b.Apply(Dispatch{Params: []int{1}, Action: 'm'})
	b.Apply(Dispatch{Params: []int{33}, Action: 'm'})
	b.Apply(Print{Rune: 'w'})
	b.Apply(Dispatch{Params: []int{38, 5, 12}, Action: 'm'})
	b.Apply(Print{Rune: 'x'})

	expected := Line{Runs: []Run{
		{Style: BoldYellow, Text: "w"},
		{Style: "\x1b[38;5;12m", Text: "x"},
	}}
	if diff := cmp.Diff(expected, b.Line()); diff != "" {
		t.Errorf("Diff (-expected +actual):\n%s", diff)
	}

	// the builder can be reused after Line
	b.Apply(Print{Rune: 'y'})
	if diff := cmp.Diff(Line{Runs: []Run{{Text: "y"}}}, b.Line()); diff != "" {
		t.Errorf("Diff (-expected +actual):\n%s", diff)
	}
}

func TestNew_PreservesText(t *testing.T) {
	inputs := map[string]string{
		"\x1b[1m\x1b[38;5;9mERROR\x1b[0m: bad":        "ERROR: bad",
		"   \x1b[1m\x1b[38;5;12m|\x1b[0m  let x = 1;": "   |  let x = 1;",
		"a\x1b[31\x18b\x1b[?25lc":                     "abc",
		"世\x1b[1m界\x1b[0m🌟\x1b]0;t\x07é":         "世界🌟é",
		"\x1b\u00e9 and \x1b(世":                      "\u00e9 and 世",
	}
	for input, expected := range inputs {
		if actual := New(input).Raw(); actual != expected {
			t.Errorf("for %q expected raw %q, got %q", input, expected, actual)
		}
	}
}
