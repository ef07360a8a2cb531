package telnet

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"time"
)

// Telnet IAC (Interpret As Command) constants per RFC 854.
const (
	IAC  byte = 255 // Interpret As Command
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250 // Sub-negotiation Begin
	SE   byte = 240 // Sub-negotiation End
	NOP  byte = 241
	GA   byte = 249 // Go Ahead

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptLinemode        byte = 34
)

// MaxLineLength caps the bytes kept from one input line. Excess bytes up to the
// line terminator are discarded.
const MaxLineLength = 4096

// Conn wraps a TCP connection with Telnet protocol handling: IAC sequences are
// stripped from input, which is read one line at a time. Writes are serialised,
// so a Conn may be shared as a line sink by several goroutines.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader

	mu           sync.Mutex // guards writes
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps a raw TCP connection with Telnet protocol handling.
//
// Precondition: raw must be a valid, open network connection.
// Postcondition: Returns a Conn ready for reading and writing.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate asks the client to suppress go-ahead.
func (c *Conn) Negotiate() error {
	return c.Write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine reads a single line of input without its terminator. IAC sequences
// and control characters other than tab are dropped.
//
// Postcondition: Returns the next line of text input, or an error (including io.EOF).
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var line strings.Builder
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), err
		}

		switch {
		case b == IAC:
			if err := c.skipCommand(); err != nil {
				return line.String(), err
			}
		case b == '\n':
			return line.String(), nil
		case b == '\r':
			// Accept both "\r\n" and a bare "\r".
			if next, err := c.reader.Peek(1); err == nil && next[0] == '\n' {
				_, _ = c.reader.ReadByte()
			}
			return line.String(), nil
		case b < 32 && b != '\t':
		case line.Len() < MaxLineLength:
			line.WriteByte(b)
		}
	}
}

// skipCommand consumes the remainder of an IAC sequence.
func (c *Conn) skipCommand() error {
	cmd, err := c.reader.ReadByte()
	if err != nil {
		return err
	}

	switch cmd {
	case WILL, WONT, DO, DONT:
		_, err = c.reader.ReadByte()
		return err
	case SB:
		for {
			b, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if b != IAC {
				continue
			}
			next, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if next == SE {
				return nil
			}
		}
	}
	return nil
}

// WriteLine sends text followed by \r\n. It satisfies session.Sender.
//
// Precondition: text should not contain trailing newline characters.
func (c *Conn) WriteLine(text string) error {
	return c.Write([]byte(text + "\r\n"))
}

// WritePrompt sends a prompt string without a trailing newline.
func (c *Conn) WritePrompt(prompt string) error {
	return c.Write([]byte(prompt))
}

// Write sends raw bytes to the client under the write timeout.
func (c *Conn) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(data)
	return err
}

// Close closes the underlying TCP connection. A blocked ReadLine returns an error.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the remote network address of the client.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}

// FilterIAC removes Telnet IAC sequences from raw input bytes. An escaped
// IAC IAC pair yields a single 0xFF.
//
// Postcondition: Returns input with all IAC sequences removed.
func FilterIAC(input []byte) []byte {
	result := make([]byte, 0, len(input))
	for i := 0; i < len(input); {
		if input[i] != IAC || i+1 >= len(input) {
			result = append(result, input[i])
			i++
			continue
		}

		switch input[i+1] {
		case WILL, WONT, DO, DONT:
			i += 3
		case SB:
			j := i + 2
			for j < len(input)-1 && !(input[j] == IAC && input[j+1] == SE) {
				j++
			}
			i = j + 2
		case IAC:
			result = append(result, IAC)
			i += 2
		default:
			i += 2
		}
	}
	return result
}
