package output

import (
	"os"

	"golang.org/x/term"
)

// Width returns the terminal width, defaulting to 80 columns when the
// output is not a terminal.
func Width() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}

	return width
}

// Truncate cuts text to at most width columns.
func Truncate(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	return text[:width]
}
