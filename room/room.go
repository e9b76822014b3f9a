// room/room.go
package room

import (
	"sync"
	"time"
)

// State 表示房间的业务状态
type State string

const (
	StateWaiting    State = "waiting"
	StateInProgress State = "in_progress"
	StateFinished   State = "finished"
)

const (
	DefaultMaxPlayers = 4
	MinPlayers        = 2
)

// PlayerSlot is one player's seat in the lobby. JoinOrder is a per-room
// monotonic counter assigned at join time; it makes host reassignment and
// end-of-game tie-breaks deterministic where bare map iteration is not.
type PlayerSlot struct {
	ID        string    `json:"userId"`
	Nickname  string    `json:"nickname"`
	IsReady   bool      `json:"isReady"`
	Score     int       `json:"score"`
	JoinedAt  time.Time `json:"joinedAt"`
	JoinOrder int       `json:"-"`
}

// Room 是游戏大厅的核心结构
type Room struct {
	ID         string
	HostID     string
	Category   int
	Difficulty string
	IsPrivate  bool
	MaxPlayers int
	Players    map[string]*PlayerSlot
	State      State
	CreatedAt  time.Time

	nextJoinOrder int
	closed        bool
	mutex         sync.RWMutex
}

func newRoom(id, hostID string, opts CreateOptions) *Room {
	maxPlayers := opts.MaxPlayers
	if maxPlayers < MinPlayers {
		maxPlayers = DefaultMaxPlayers
	}
	return &Room{
		ID:         id,
		HostID:     hostID,
		Category:   opts.Category,
		Difficulty: opts.Difficulty,
		IsPrivate:  opts.IsPrivate,
		MaxPlayers: maxPlayers,
		Players:    make(map[string]*PlayerSlot),
		State:      StateWaiting,
		CreatedAt:  time.Now(),
	}
}

// addPlayer seats a player. Caller must hold the room lock. A closed room
// has already been dropped from the registry; seating anyone there would
// strand them in a room nobody can look up.
func (r *Room) addPlayer(playerID, nickname string) error {
	if r.closed {
		return ErrRoomNotFound
	}
	if len(r.Players) >= r.MaxPlayers {
		return ErrRoomFull
	}
	r.Players[playerID] = &PlayerSlot{
		ID:        playerID,
		Nickname:  nickname,
		JoinedAt:  time.Now(),
		JoinOrder: r.nextJoinOrder,
	}
	r.nextJoinOrder++
	return nil
}

// earliestPlayer returns the remaining player with the smallest join order.
// Caller must hold the room lock.
func (r *Room) earliestPlayer() *PlayerSlot {
	var earliest *PlayerSlot
	for _, slot := range r.Players {
		if earliest == nil || slot.JoinOrder < earliest.JoinOrder {
			earliest = slot
		}
	}
	return earliest
}

func (r *Room) allReady() bool {
	if len(r.Players) == 0 {
		return false
	}
	for _, slot := range r.Players {
		if !slot.IsReady {
			return false
		}
	}
	return true
}

// AllReady reports whether every seated player has readied up.
func (r *Room) AllReady() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.allReady()
}

func (r *Room) PlayerCount() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.Players)
}

func (r *Room) SetState(state State) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.State = state
}

func (r *Room) GetState() State {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.State
}

// PlayerSlots returns a copy of the seats, safe to read without the lock.
func (r *Room) PlayerSlots() []PlayerSlot {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	slots := make([]PlayerSlot, 0, len(r.Players))
	for _, slot := range r.Players {
		slots = append(slots, *slot)
	}
	return slots
}

// Snapshot is the wire representation of a room.
type Snapshot struct {
	RoomID      string                `json:"roomId"`
	HostID      string                `json:"hostId"`
	Category    int                   `json:"category"`
	Difficulty  string                `json:"difficulty"`
	IsPrivate   bool                  `json:"isPrivate"`
	MaxPlayers  int                   `json:"maxPlayers"`
	Players     map[string]PlayerSlot `json:"players"`
	State       State                 `json:"state"`
	CreatedAt   time.Time             `json:"createdAt"`
	PlayerCount int                   `json:"playerCount"`
}

func (r *Room) Snapshot() Snapshot {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	players := make(map[string]PlayerSlot, len(r.Players))
	for id, slot := range r.Players {
		players[id] = *slot
	}
	return Snapshot{
		RoomID:      r.ID,
		HostID:      r.HostID,
		Category:    r.Category,
		Difficulty:  r.Difficulty,
		IsPrivate:   r.IsPrivate,
		MaxPlayers:  r.MaxPlayers,
		Players:     players,
		State:       r.State,
		CreatedAt:   r.CreatedAt,
		PlayerCount: len(r.Players),
	}
}
