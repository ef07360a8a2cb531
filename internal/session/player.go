// Package session tracks connected players: the issuers on whose behalf
// commands are dispatched.
package session

import (
	"fmt"
	"sync"
)

// Sender delivers lines of text to a connected client.
type Sender interface {
	WriteLine(text string) error
}

// Player is a connected command issuer.
type Player struct {
	// ID is the small numeric slot players use to address each other (e.g. "kick 3").
	ID int
	// UID uniquely identifies the connection for logging.
	UID string

	mu           sync.Mutex
	name         string
	out          Sender
	onDisconnect func()
	disconnected bool
}

// Name returns the player's display name.
func (p *Player) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

// SetName changes the player's display name.
//
// Precondition: name must be non-empty.
func (p *Player) SetName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.name = name
}

// Send writes a line to the player's client.
//
// Postcondition: Returns an error if the player has disconnected or the write fails.
func (p *Player) Send(text string) error {
	p.mu.Lock()
	out, gone := p.out, p.disconnected
	p.mu.Unlock()

	if gone {
		return fmt.Errorf("player %d is disconnected", p.ID)
	}
	return out.WriteLine(text)
}

// Sendf formats according to format and sends the result.
func (p *Player) Sendf(format string, args ...any) error {
	return p.Send(fmt.Sprintf(format, args...))
}

// Disconnect marks the player as gone and runs the disconnect hook once.
//
// Postcondition: Disconnected() is true; further calls are no-ops.
func (p *Player) Disconnect() {
	p.mu.Lock()
	if p.disconnected {
		p.mu.Unlock()
		return
	}
	p.disconnected = true
	hook := p.onDisconnect
	p.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// Disconnected reports whether Disconnect has been called.
func (p *Player) Disconnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disconnected
}
