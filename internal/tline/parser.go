package tline

import (
	"unicode/utf8"
)

const (
	maxParams     = 16
	maxParamValue = 65535
)

// Event is a unit decoded from a byte stream by the Parser. The set of events is closed: Print, Dispatch and Control
type Event interface {
	event()
}

// Print is a decoded printable character
type Print struct {
	Rune rune
}

// Dispatch is a complete CSI sequence: ESC [ <intermediates/private markers> <params> <final byte>
type Dispatch struct {
	Params        []int
	Intermediates []byte
	Action        byte
}

// ControlKind tells which kind of ignorable control a Control event represents
type ControlKind int

const (
	Execute ControlKind = iota
	EscDispatch
	StringEnd
)

// Control is anything that is neither printable nor a CSI dispatch: C0 bytes, ESC sequences, the end of OSC/DCS
// strings. Callers are free to ignore it
type Control struct {
	Kind ControlKind
	Byte byte
}

func (Print) event()    {}
func (Dispatch) event() {}
func (Control) event()  {}

// IsSGR is true for select graphic rendition dispatches, i.e. the ones that change colors and weight
func (d Dispatch) IsSGR() bool {
	return d.Action == 'm' && len(d.Intermediates) == 0
}

// IsReset is true for an SGR dispatch with the single parameter 0 (also how ESC[m is reported)
func (d Dispatch) IsReset() bool {
	return d.IsSGR() && len(d.Params) == 1 && d.Params[0] == 0
}

// Sequence returns the escape sequence text of the dispatch, params joined by ';'
func (d Dispatch) Sequence() string {
	buf := make([]byte, 0, 4+len(d.Params)*3+len(d.Intermediates))
	buf = append(buf, '\x1b', '[')
	for i, p := range d.Params {
		if i > 0 {
			buf = append(buf, ';')
		}
		buf = appendInt(buf, p)
	}
	buf = append(buf, d.Intermediates...)
	buf = append(buf, d.Action)
	return string(buf)
}

func appendInt(buf []byte, n int) []byte {
	if n == 0 {
		return append(buf, '0')
	}
	var digits [8]byte
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return append(buf, digits[i:]...)
}

type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateEscapeIntermediate
	stateCSIEntry
	stateCSIParam
	stateCSIIntermediate
	stateCSIIgnore
	stateString
	stateStringEscape
)

// Parser decodes terminal output one byte at a time. It only understands enough of the VT500 grammar to separate
// printable characters from control sequences; it keeps no screen state
type Parser struct {
	state parserState

	params        []int
	param         int
	intermediates []byte

	utf8Buf [utf8.UTFMax]byte
	utf8Len int
}

func NewParser() *Parser {
	return &Parser{
		params: make([]int, 0, maxParams),
	}
}

// Parse decodes a whole buffer and returns its events in order
func Parse(b []byte) []Event {
	var events []Event
	p := NewParser()
	for _, c := range b {
		p.Advance(c, func(e Event) {
			events = append(events, e)
		})
	}
	p.Flush(func(e Event) {
		events = append(events, e)
	})
	return events
}

// Advance feeds a single byte to the parser. dispatch is called for each decoded event, possibly more than once when
// an incomplete UTF-8 sequence gets interrupted
func (p *Parser) Advance(b byte, dispatch func(Event)) {
	if p.state == stateGround {
		p.advanceGround(b, dispatch)
		return
	}

	// CAN and SUB abort any sequence in progress
	if b == 0x18 || b == 0x1a {
		p.state = stateGround
		dispatch(Control{Kind: Execute, Byte: b})
		return
	}

	switch p.state {
	case stateEscape:
		p.advanceEscape(b, dispatch)
	case stateEscapeIntermediate:
		p.advanceEscapeIntermediate(b, dispatch)
	case stateCSIEntry, stateCSIParam, stateCSIIntermediate, stateCSIIgnore:
		p.advanceCSI(b, dispatch)
	case stateString:
		switch b {
		case 0x07:
			p.state = stateGround
			dispatch(Control{Kind: StringEnd, Byte: b})
		case 0x1b:
			p.state = stateStringEscape
		}
	case stateStringEscape:
		// ESC \ is the string terminator, any other ESC sequence ends the string and starts anew
		p.state = stateGround
		dispatch(Control{Kind: StringEnd, Byte: b})
		if b != '\\' {
			p.state = stateEscape
			p.advanceEscape(b, dispatch)
		}
	}
}

// Flush reports an incomplete trailing UTF-8 sequence, if any, and resets the parser
func (p *Parser) Flush(dispatch func(Event)) {
	if p.utf8Len > 0 {
		p.utf8Len = 0
		dispatch(Print{Rune: utf8.RuneError})
	}
	p.state = stateGround
}

func (p *Parser) advanceGround(b byte, dispatch func(Event)) {
	if p.utf8Len > 0 {
		if b >= 0x80 && b < 0xc0 {
			p.utf8Buf[p.utf8Len] = b
			p.utf8Len++
			if utf8.FullRune(p.utf8Buf[:p.utf8Len]) {
				r, _ := utf8.DecodeRune(p.utf8Buf[:p.utf8Len])
				p.utf8Len = 0
				dispatch(Print{Rune: r})
			}
			return
		}
		// sequence cut short, the byte is processed on its own below
		p.utf8Len = 0
		dispatch(Print{Rune: utf8.RuneError})
	}

	switch {
	case b == 0x1b:
		p.state = stateEscape
	case b < 0x20:
		dispatch(Control{Kind: Execute, Byte: b})
	case b < 0x7f:
		dispatch(Print{Rune: rune(b)})
	case b == 0x7f:
		// DEL is ignored
	default:
		p.utf8Buf[0] = b
		p.utf8Len = 1
		if utf8.FullRune(p.utf8Buf[:1]) {
			// invalid lead byte
			p.utf8Len = 0
			dispatch(Print{Rune: utf8.RuneError})
		}
	}
}

func (p *Parser) advanceEscape(b byte, dispatch func(Event)) {
	switch {
	case b == '[':
		p.clearSequence()
		p.state = stateCSIEntry
	case b == ']', b == 'P', b == 'X', b == '^', b == '_':
		// OSC, DCS, SOS, PM, APC: skipped until BEL or ST
		p.state = stateString
	case b == 0x1b:
		p.state = stateEscape
	case b < 0x20:
		dispatch(Control{Kind: Execute, Byte: b})
	case b < 0x30:
		p.clearSequence()
		p.intermediates = append(p.intermediates, b)
		p.state = stateEscapeIntermediate
	case b < 0x7f:
		p.state = stateGround
		dispatch(Control{Kind: EscDispatch, Byte: b})
	case b == 0x7f:
		// DEL is ignored
	default:
		// no sequence starts with a byte above ASCII, it's text and the ESC alone is dropped
		p.state = stateGround
		p.advanceGround(b, dispatch)
	}
}

func (p *Parser) advanceEscapeIntermediate(b byte, dispatch func(Event)) {
	switch {
	case b == 0x1b:
		p.state = stateEscape
	case b < 0x20:
		dispatch(Control{Kind: Execute, Byte: b})
	case b < 0x30:
		p.intermediates = append(p.intermediates, b)
	case b < 0x7f:
		p.state = stateGround
		dispatch(Control{Kind: EscDispatch, Byte: b})
	case b == 0x7f:
		// ignored
	default:
		p.state = stateGround
		p.advanceGround(b, dispatch)
	}
}

func (p *Parser) advanceCSI(b byte, dispatch func(Event)) {
	switch {
	case b == 0x1b:
		p.state = stateEscape
		return
	case b < 0x20:
		// C0 controls are executed without interrupting the sequence
		dispatch(Control{Kind: Execute, Byte: b})
		return
	case b == 0x7f:
		return
	case b >= 0x40 && b < 0x7f:
		ignore := p.state == stateCSIIgnore
		p.state = stateGround
		if ignore {
			p.clearSequence()
			return
		}
		if d, ok := p.finish(b); ok {
			dispatch(d)
		}
		return
	case b >= 0x80:
		p.state = stateCSIIgnore
		return
	}

	if p.state == stateCSIIgnore {
		return
	}

	switch {
	case b >= '0' && b <= '9':
		if p.state == stateCSIIntermediate {
			p.state = stateCSIIgnore
			return
		}
		p.state = stateCSIParam
		p.param = min(p.param*10+int(b-'0'), maxParamValue)
	case b == ';':
		if p.state == stateCSIIntermediate {
			p.state = stateCSIIgnore
			return
		}
		p.state = stateCSIParam
		if !p.pushParam() {
			p.state = stateCSIIgnore
		}
	case b == ':':
		// sub-parameters are not supported
		p.state = stateCSIIgnore
	case b >= 0x3c && b <= 0x3f:
		// private markers are only valid right after the introducer
		if p.state != stateCSIEntry {
			p.state = stateCSIIgnore
			return
		}
		p.intermediates = append(p.intermediates, b)
		p.state = stateCSIParam
	default:
		// intermediate bytes 0x20-0x2f
		p.intermediates = append(p.intermediates, b)
		p.state = stateCSIIntermediate
	}
}

// pushParam finishes the current parameter, returning false if there are too many
func (p *Parser) pushParam() bool {
	if len(p.params) >= maxParams {
		return false
	}
	p.params = append(p.params, p.param)
	p.param = 0
	return true
}

// finish builds the Dispatch for a final byte. The last parameter is always pushed, so ESC[m reports [0] like ESC[0m
func (p *Parser) finish(action byte) (Dispatch, bool) {
	defer p.clearSequence()
	if !p.pushParam() {
		return Dispatch{}, false
	}
	d := Dispatch{
		Params: append([]int(nil), p.params...),
		Action: action,
	}
	if len(p.intermediates) > 0 {
		d.Intermediates = append([]byte(nil), p.intermediates...)
	}
	return d, true
}

func (p *Parser) clearSequence() {
	p.params = p.params[:0]
	p.param = 0
	p.intermediates = p.intermediates[:0]
}
