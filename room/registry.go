// room/registry.go
package room

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrPlayerNotFound   = errors.New("player not in room")
	ErrNotHost          = errors.New("only the host can start the game")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrPlayersNotReady  = errors.New("not all players are ready")
	ErrAlreadyStarted   = errors.New("game already started in this room")
)

// CreateOptions carries the host's room settings. A zero Category means any
// category; a MaxPlayers below the minimum falls back to the default.
type CreateOptions struct {
	Category   int
	Difficulty string
	IsPrivate  bool
	MaxPlayers int
}

// Registry owns every live room. All room lifecycle transitions go through
// it so the room map and the rooms themselves stay consistent.
type Registry struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// Create makes a new room with the host seated as its first player.
func (reg *Registry) Create(hostID, nickname string, opts CreateOptions) *Room {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	id := newRoomID()
	for _, taken := reg.rooms[id]; taken; _, taken = reg.rooms[id] {
		id = newRoomID()
	}

	r := newRoom(id, hostID, opts)
	r.addPlayer(hostID, nickname)
	reg.rooms[id] = r
	return r
}

func (reg *Registry) Get(roomID string) (*Room, error) {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()

	r, exists := reg.rooms[roomID]
	if !exists {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// Join seats a player in an existing room.
func (reg *Registry) Join(roomID, playerID, nickname string) (*Room, error) {
	r, err := reg.Get(roomID)
	if err != nil {
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if err := r.addPlayer(playerID, nickname); err != nil {
		return nil, err
	}
	return r, nil
}

// Leave removes a player. The returned bool is true when the room was
// deleted because its last player left. If the departing player was host,
// the remaining player with the earliest join order is promoted.
func (reg *Registry) Leave(roomID, playerID string) (*Room, bool, error) {
	r, err := reg.Get(roomID)
	if err != nil {
		return nil, false, err
	}

	r.mutex.Lock()
	if _, exists := r.Players[playerID]; !exists {
		r.mutex.Unlock()
		return nil, false, ErrPlayerNotFound
	}
	delete(r.Players, playerID)

	if len(r.Players) == 0 {
		// closing under the room lock makes the emptiness check and the
		// deletion atomic against a racing Join on the same room pointer
		r.closed = true
		r.mutex.Unlock()
		reg.mutex.Lock()
		delete(reg.rooms, roomID)
		reg.mutex.Unlock()
		return nil, true, nil
	}

	if r.HostID == playerID {
		r.HostID = r.earliestPlayer().ID
	}
	r.mutex.Unlock()
	return r, false, nil
}

// SetReady flips a player's ready flag.
func (reg *Registry) SetReady(roomID, playerID string, isReady bool) (*Room, error) {
	r, err := reg.Get(roomID)
	if err != nil {
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	slot, exists := r.Players[playerID]
	if !exists {
		return nil, ErrPlayerNotFound
	}
	slot.IsReady = isReady
	return r, nil
}

// List returns snapshots of every discoverable room. Private rooms are
// excluded from browsing.
func (reg *Registry) List() []Snapshot {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()

	snapshots := make([]Snapshot, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		if r.IsPrivate {
			continue
		}
		snapshots = append(snapshots, r.Snapshot())
	}
	return snapshots
}

func (reg *Registry) Count() int {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()
	return len(reg.rooms)
}

// CanStart checks whether requester may start the game: they must be host,
// the room must still be waiting, and every one of at least MinPlayers
// players must be ready.
func CanStart(r *Room, requesterID string) error {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if r.HostID != requesterID {
		return ErrNotHost
	}
	if r.State != StateWaiting {
		return ErrAlreadyStarted
	}
	if len(r.Players) < MinPlayers {
		return ErrNotEnoughPlayers
	}
	if !r.allReady() {
		return ErrPlayersNotReady
	}
	return nil
}

func newRoomID() string {
	return "room_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}
