// Package telnet provides the Telnet transport: an acceptor, IAC-aware line
// connections and ANSI styling for replies.
package telnet

import "fmt"

// ANSI escape sequences used to style server output.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"

	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
)

// Colorize wraps text with the given ANSI color code and a reset suffix.
//
// Precondition: color must be a valid ANSI escape sequence.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf formats according to format and wraps the result with color.
func Colorf(color, format string, args ...any) string {
	return Colorize(color, fmt.Sprintf(format, args...))
}

// StripANSI removes all SGR (\033[...m) sequences from s.
func StripANSI(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			if j < len(s) {
				i = j
				continue
			}
		}
		out = append(out, s[i])
	}
	return string(out)
}
