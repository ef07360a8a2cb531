// Package command provides the argument scanner, typed argument access, and the
// case-insensitive command registry that dispatches raw command lines to handlers.
package command

// MaxArgs is the maximum number of tokens a single Args will materialize.
const MaxArgs = 256

// Args scans the argument tail of a command line lazily, one token at a time.
//
// Tokens are substrings of the scanned buffer; nothing is copied. An Args is
// owned by the dispatch call that created it and must not be retained after the
// handler returns.
//
// Invariant: tokens[0:parsed] are non-empty, whitespace-free substrings of buf in
// left-to-right order; cursor never decreases.
type Args struct {
	buf       string
	tokens    [MaxArgs]string
	parsed int
	cursor int
}

// NewArgs creates an Args over buf without scanning it.
//
// Postcondition: Len() == 0 and Rest() == buf.
func NewArgs(buf string) *Args {
	return &Args{buf: buf}
}

// ParseArgs creates an Args over buf and scans it to the end.
//
// Postcondition: Len() equals the number of tokens in buf, capped at MaxArgs.
func ParseArgs(buf string) *Args {
	a := NewArgs(buf)
	a.ParseAll()
	return a
}

// IsSpace reports whether c is in the ASCII space class that separates tokens
// and command names.
func IsSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// skipSpace returns the first offset at or after i that is not whitespace.
func (a *Args) skipSpace(i int) int {
	for i < len(a.buf) && IsSpace(a.buf[i]) {
		i++
	}
	return i
}

// ParseNext scans the next token.
//
// Postcondition: Returns true and increments Len() if a token was found; returns
// false with no state change once the buffer is exhausted or MaxArgs tokens have
// been parsed. In the latter case Truncated() reports whether input was dropped.
func (a *Args) ParseNext() bool {
	if a.parsed >= MaxArgs {
		return false
	}

	start := a.skipSpace(a.cursor)
	a.cursor = start
	if start >= len(a.buf) {
		return false
	}

	end := start
	for end < len(a.buf) && !IsSpace(a.buf[end]) {
		end++
	}
	a.cursor = end
	a.tokens[a.parsed] = a.buf[start:end]
	a.parsed++
	return true
}

// TryParse scans up to n more tokens.
//
// Postcondition: Returns the number of tokens actually scanned, which is less
// than n only if the input (or capacity) ran out.
func (a *Args) TryParse(n int) int {
	for i := 0; i < n; i++ {
		if !a.ParseNext() {
			return i
		}
	}
	return n
}

// ParseAll scans every remaining token and returns Len().
func (a *Args) ParseAll() int {
	for a.ParseNext() {
	}
	return a.parsed
}

// Len returns the number of tokens scanned so far.
func (a *Args) Len() int { return a.parsed }

// Truncated reports whether MaxArgs tokens have been scanned and non-space input
// remains, however the scanning was driven.
func (a *Args) Truncated() bool {
	return a.parsed == MaxArgs && a.skipSpace(a.cursor) < len(a.buf)
}

// Token returns the raw token at idx. It never triggers scanning.
func (a *Args) Token(idx int) (string, bool) {
	if idx < 0 || idx >= a.parsed {
		return "", false
	}
	return a.tokens[idx], true
}

// Tokens returns the scanned tokens. The slice aliases the Args' storage.
func (a *Args) Tokens() []string {
	return a.tokens[:a.parsed:a.parsed]
}

// Rest returns the unscanned remainder of the buffer, including leading whitespace.
func (a *Args) Rest() string {
	if a.cursor >= len(a.buf) {
		return ""
	}
	return a.buf[a.cursor:]
}

// Tail returns the unscanned remainder with leading whitespace skipped. It is
// intended for free-text arguments such as a chat message body.
func (a *Args) Tail() string {
	start := a.skipSpace(a.cursor)
	if start >= len(a.buf) {
		return ""
	}
	return a.buf[start:]
}

// String returns the entire argument buffer.
func (a *Args) String() string { return a.buf }

// Bytes returns an owned copy of the entire argument buffer.
func (a *Args) Bytes() []byte { return []byte(a.buf) }
