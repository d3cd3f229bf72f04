package style

import (
	"fmt"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/robinovitch61/bw/internal/dev"
)

var (
	output        = termenv.DefaultOutput()
	foregroundHex = termenv.ConvertToRGB(output.ForegroundColor()).Hex()
	backgroundHex = termenv.ConvertToRGB(output.BackgroundColor()).Hex()
	foreground    = lipgloss.Color(foregroundHex)
	background    = lipgloss.Color(backgroundHex)
)

// DebugColors logs the terminal colors the styles were built from
func DebugColors() {
	dev.Debug(fmt.Sprintf("has dark background: %t", output.HasDarkBackground()))
	dev.Debug(fmt.Sprintf("foreground: %s", foregroundHex))
	dev.Debug(fmt.Sprintf("background: %s", backgroundHex))
}

var (
	Regular             = lipgloss.NewStyle()
	Bold                = Regular.Bold(true)
	Inverse             = Regular.Foreground(background).Background(foreground)
	ViewportFooterStyle = Bold
	ToastStyle          = Inverse
	ErrorStyle          = Bold.Foreground(lipgloss.Color("9"))
	KeyHelpStyle        = Bold.Foreground(background).Background(foreground).Underline(true)
)
