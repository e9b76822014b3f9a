// broadcast/broadcast.go
package broadcast

import (
	"github.com/wfunc/triviaserver/room"
	"github.com/wfunc/triviaserver/session"
)

// 广播接口
type Broadcaster interface {
	BroadcastToRoom(roomID string, event string, payload interface{}) error
	SendToSession(sessionID string, event string, payload interface{}) error
}

// RoomBroadcaster fans events out to every connection seated in a room.
// Room player ids are session ids, so delivery goes through the session
// manager.
type RoomBroadcaster struct {
	roomRegistry   *room.Registry
	sessionManager *session.Manager
}

func NewRoomBroadcaster(roomRegistry *room.Registry, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		roomRegistry:   roomRegistry,
		sessionManager: sessionManager,
	}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomID string, event string, payload interface{}) error {
	r, err := b.roomRegistry.Get(roomID)
	if err != nil {
		return err
	}

	for _, slot := range r.PlayerSlots() {
		s, exists := b.sessionManager.Get(slot.ID)
		if !exists {
			continue
		}
		if err := s.Send(event, payload); err != nil {
			// 发送失败的连接由读循环负责清理
			continue
		}
	}

	return nil
}

func (b *RoomBroadcaster) SendToSession(sessionID string, event string, payload interface{}) error {
	s, exists := b.sessionManager.Get(sessionID)
	if !exists {
		return nil
	}
	return s.Send(event, payload)
}
