package core

// Color represents a foreground color for a screen cell.
type Color uint8

// Palette used by the board renderer. One color per piece kind, plus chrome.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorOrange
	ColorGray
	ColorBrightWhite
)
