package telnet

import (
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// pipeConn returns a Conn over one end of an in-memory pipe and the raw peer.
func pipeConn(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return NewConn(server, 2*time.Second, 2*time.Second), client
}

func TestReadLine_Terminators(t *testing.T) {
	conn, peer := pipeConn(t)
	go func() { _, _ = peer.Write([]byte("kick 5\r\nsay hi\nwho\rnext\n")) }()

	for _, want := range []string{"kick 5", "say hi", "who", "next"} {
		line, err := conn.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, want, line)
	}
}

func TestReadLine_StripsIACAndControls(t *testing.T) {
	conn, peer := pipeConn(t)
	go func() {
		_, _ = peer.Write([]byte{IAC, DO, OptEcho, 'r', 'o', 0x07, 'l', 'l', IAC, NOP, '\t', '2', '\r', '\n'})
	}()

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "roll\t2", line)
}

func TestReadLine_SubNegotiation(t *testing.T) {
	conn, peer := pipeConn(t)
	go func() {
		_, _ = peer.Write([]byte{IAC, SB, 24, 0, 'x', 't', IAC, SE, 'h', 'i', '\n'})
	}()

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "hi", line)
}

func TestReadLine_CapsLength(t *testing.T) {
	conn, peer := pipeConn(t)
	go func() { _, _ = peer.Write([]byte(strings.Repeat("a", MaxLineLength+100) + "\nnext\n")) }()

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Len(t, line, MaxLineLength)

	line, err = conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "next", line)
}

func TestReadLine_EOF(t *testing.T) {
	conn, peer := pipeConn(t)
	go func() {
		_, _ = peer.Write([]byte("partial"))
		peer.Close()
	}()

	line, err := conn.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "partial", line)
}

func TestWriteLine_AppendsCRLF(t *testing.T) {
	conn, peer := pipeConn(t)
	go func() { _ = conn.WriteLine("Goodbye.") }()

	buf := make([]byte, 16)
	n, err := io.ReadFull(peer, buf[:len("Goodbye.\r\n")])
	require.NoError(t, err)
	assert.Equal(t, "Goodbye.\r\n", string(buf[:n]))
}

func TestFilterIAC_NoIAC(t *testing.T) {
	input := []byte("hello world")
	assert.Equal(t, input, FilterIAC(input))
}

func TestFilterIAC_OptionCommands(t *testing.T) {
	assert.Equal(t, []byte("hi"), FilterIAC([]byte{IAC, WILL, OptEcho, 'h', 'i'}))
	assert.Equal(t, []byte("ok"), FilterIAC([]byte{IAC, WONT, OptSuppressGoAhead, 'o', 'k'}))
	assert.Equal(t, []byte("ab"), FilterIAC([]byte{'a', IAC, DO, OptLinemode, 'b'}))
	assert.Empty(t, FilterIAC([]byte{IAC, DONT, OptEcho}))
}

func TestFilterIAC_SubNegotiation(t *testing.T) {
	input := []byte{IAC, SB, 24, 0, 'x', 't', 'e', 'r', 'm', IAC, SE, 'z'}
	assert.Equal(t, []byte("z"), FilterIAC(input))
}

func TestFilterIAC_EscapedIAC(t *testing.T) {
	input := []byte{'a', IAC, IAC, 'b'}
	assert.Equal(t, []byte{'a', IAC, 'b'}, FilterIAC(input))
}

func TestFilterIAC_NOP(t *testing.T) {
	assert.Equal(t, []byte("xy"), FilterIAC([]byte{'x', IAC, NOP, 'y'}))
}

func TestPropertyFilterIAC_NoIACBytesPassThrough(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.SliceOfN(rapid.ByteRange(0, 254), 0, 200).Draw(t, "input")
		result := FilterIAC(input)
		if string(result) != string(input) {
			t.Fatalf("FilterIAC(%v) = %v", input, result)
		}
	})
}

func TestPropertyFilterIAC_OutputNeverLongerThanInput(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.SliceOfN(rapid.Byte(), 0, 200).Draw(t, "input")
		if got := FilterIAC(input); len(got) > len(input) {
			t.Fatalf("output %d bytes longer than input %d", len(got), len(input))
		}
	})
}
