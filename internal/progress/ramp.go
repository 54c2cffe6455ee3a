package progress

import "strings"

// Ramp is the ordered glyph set used to draw sub-cell fill.
// Partial[0] is an empty cell and Partial[len-1] the almost-full one;
// Full is drawn for every completely filled cell.
type Ramp struct {
	Partial []rune
	Full    rune
}

var (
	// Blocks uses the Unicode left-block eighths.
	Blocks = Ramp{Partial: []rune(" ▏▎▍▌▋▊▉"), Full: '█'}
	// ASCII works on terminals without Unicode fonts.
	ASCII = Ramp{Partial: []rune(" 123456789"), Full: '#'}
)

// Len returns the fill resolution of one cell.
func (r Ramp) Len() int {
	return len(r.Partial)
}

// RampByName returns the built-in ramp called name ("blocks" or "ascii").
func RampByName(name string) (Ramp, bool) {
	switch strings.ToLower(name) {
	case "blocks", "unicode":
		return Blocks, true
	case "ascii":
		return ASCII, true
	}
	return Ramp{}, false
}
