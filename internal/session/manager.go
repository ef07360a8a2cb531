package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrPlayerNotFound is returned when no player holds the requested ID.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrServerFull is returned by Add when every player slot is taken.
	ErrServerFull = errors.New("server is full")
)

// Manager tracks all connected players by numeric ID.
// All methods are safe for concurrent use.
type Manager struct {
	mu         sync.RWMutex
	players    map[int]*Player
	maxPlayers int
}

// NewManager creates an empty Manager holding at most maxPlayers players.
//
// Precondition: maxPlayers >= 1.
func NewManager(maxPlayers int) *Manager {
	return &Manager{
		players:    make(map[int]*Player),
		maxPlayers: maxPlayers,
	}
}

// Add registers a new player under the lowest free ID.
//
// Precondition: name must be non-empty; out must be non-nil. onDisconnect may be nil.
// Postcondition: Returns the new Player, or ErrServerFull if all slots are taken.
func (m *Manager) Add(name string, out Sender, onDisconnect func()) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.players) >= m.maxPlayers {
		return nil, fmt.Errorf("adding player %q: %w", name, ErrServerFull)
	}

	id := 0
	for {
		if _, taken := m.players[id]; !taken {
			break
		}
		id++
	}

	p := &Player{
		ID:           id,
		UID:          uuid.NewString(),
		name:         name,
		out:          out,
		onDisconnect: onDisconnect,
	}
	m.players[id] = p
	return p, nil
}

// Remove drops the player with the given ID.
//
// Postcondition: The ID becomes free for reuse. Returns ErrPlayerNotFound if absent.
func (m *Manager) Remove(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.players[id]; !ok {
		return fmt.Errorf("removing player %d: %w", id, ErrPlayerNotFound)
	}
	delete(m.players, id)
	return nil
}

// Get returns the player with the given ID.
func (m *Manager) Get(id int) (*Player, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[id]
	return p, ok
}

// All returns every connected player ordered by ID.
func (m *Manager) All() []*Player {
	m.mu.RLock()
	result := make([]*Player, 0, len(m.players))
	for _, p := range m.players {
		result = append(result, p)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Count returns the number of connected players.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.players)
}

// Broadcast sends text to every player except those whose IDs are listed.
//
// Postcondition: Returns the number of players the line was delivered to.
func (m *Manager) Broadcast(text string, except ...int) int {
	skip := make(map[int]bool, len(except))
	for _, id := range except {
		skip[id] = true
	}

	delivered := 0
	for _, p := range m.All() {
		if skip[p.ID] {
			continue
		}
		if err := p.Send(text); err == nil {
			delivered++
		}
	}
	return delivered
}
