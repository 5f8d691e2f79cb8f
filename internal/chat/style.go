package chat

import (
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset      = "\033[0m"
	ansiBold       = "\033[1m"
	ansiDim        = "\033[2m"
	ansiRed        = "\033[31m"
	ansiGreen      = "\033[32m"
	ansiYellow     = "\033[33m"
	ansiCyan       = "\033[36m"
	ansiBrightBlue = "\033[94m"
	ansiBrightCyan = "\033[96m"
)

// ColorEnabled reports whether f is a terminal that should receive ANSI colour.
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type styler struct {
	color bool
}

func (s styler) paint(text string, codes ...string) string {
	if !s.color {
		return text
	}
	var prefix string
	for _, c := range codes {
		prefix += c
	}
	return prefix + text + ansiReset
}

func (s styler) title(text string) string   { return s.paint(text, ansiBrightCyan, ansiBold) }
func (s styler) rule(text string) string    { return s.paint(text, ansiCyan) }
func (s styler) user(text string) string    { return s.paint(text, ansiGreen, ansiBold) }
func (s styler) bot(text string) string     { return s.paint(text, ansiBrightBlue, ansiBold) }
func (s styler) pending(text string) string { return s.paint(text, ansiYellow, ansiDim) }
func (s styler) debug(text string) string   { return s.paint(text, ansiDim) }
func (s styler) err(text string) string     { return s.paint(text, ansiRed) }
func (s styler) bye(text string) string     { return s.paint(text, ansiBrightCyan) }
