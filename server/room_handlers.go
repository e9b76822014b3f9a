package server

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wfunc/triviaserver/game"
	"github.com/wfunc/triviaserver/logger"
	"github.com/wfunc/triviaserver/network"
	"github.com/wfunc/triviaserver/room"
	"github.com/wfunc/triviaserver/session"
	"github.com/wfunc/triviaserver/trivia"
)

const maxNicknameLength = 24

type createRoomRequest struct {
	Nickname   string `json:"nickname"`
	Category   int    `json:"category"`
	Difficulty string `json:"difficulty"`
	IsPrivate  bool   `json:"isPrivate"`
	MaxPlayers int    `json:"maxPlayers"`
}

type joinRoomRequest struct {
	RoomID   string `json:"roomId"`
	Nickname string `json:"nickname"`
}

type leaveRoomRequest struct {
	RoomID string `json:"roomId"`
}

type readyRequest struct {
	RoomID  string `json:"roomId"`
	IsReady bool   `json:"isReady"`
}

func (s *GameServer) handleCreateRoom(sess *session.Session, ev *network.Event) {
	var req createRoomRequest
	if err := json.Unmarshal(ev.Data, &req); err != nil {
		s.sendError(sess, network.CodeBadRequest, "malformed room:create payload")
		return
	}

	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" || len(nickname) > maxNicknameLength {
		s.sendError(sess, network.CodeValidationError, "nickname must be 1-24 characters")
		return
	}
	if !trivia.ValidDifficulty(req.Difficulty) {
		s.sendError(sess, network.CodeValidationError, "difficulty must be easy, medium or hard")
		return
	}

	sess.SetNickname(nickname)
	s.ensureUserAsync(sess.GetID(), nickname)

	r := s.roomRegistry.Create(sess.GetID(), nickname, room.CreateOptions{
		Category:   req.Category,
		Difficulty: req.Difficulty,
		IsPrivate:  req.IsPrivate,
		MaxPlayers: req.MaxPlayers,
	})
	sess.SetRoom(r.ID)

	logger.Log.Infof("Session %s created room %s", sess.GetID(), r.ID)
	sess.Send(network.EventRoomCreated, gin.H{
		"roomId": r.ID,
		"room":   r.Snapshot(),
	})

	if s.monitor != nil {
		s.monitor.SetActiveRooms(s.roomRegistry.Count())
	}
}

func (s *GameServer) handleJoinRoom(sess *session.Session, ev *network.Event) {
	var req joinRoomRequest
	if err := json.Unmarshal(ev.Data, &req); err != nil {
		s.sendError(sess, network.CodeBadRequest, "malformed room:join payload")
		return
	}

	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" || len(nickname) > maxNicknameLength {
		s.sendError(sess, network.CodeValidationError, "nickname must be 1-24 characters")
		return
	}

	sess.SetNickname(nickname)
	s.ensureUserAsync(sess.GetID(), nickname)

	r, err := s.roomRegistry.Join(req.RoomID, sess.GetID(), nickname)
	if err != nil {
		s.sendRegistryError(sess, err)
		return
	}
	sess.SetRoom(r.ID)

	logger.Log.Infof("Session %s joined room %s", sess.GetID(), r.ID)
	sess.Send(network.EventRoomJoined, gin.H{"room": r.Snapshot()})
	s.broadcaster.BroadcastToRoom(r.ID, network.EventRoomPlayerJoin, gin.H{
		"player": gin.H{
			"userId":   sess.GetID(),
			"nickname": nickname,
			"isReady":  false,
		},
	})
}

func (s *GameServer) handleLeaveRoom(sess *session.Session, ev *network.Event) {
	var req leaveRoomRequest
	if err := json.Unmarshal(ev.Data, &req); err != nil {
		s.sendError(sess, network.CodeBadRequest, "malformed room:leave payload")
		return
	}

	r, gone, err := s.roomRegistry.Leave(req.RoomID, sess.GetID())
	if err != nil {
		s.sendRegistryError(sess, err)
		return
	}
	sess.SetRoom("")

	logger.Log.Infof("Session %s left room %s", sess.GetID(), req.RoomID)
	if !gone {
		s.broadcaster.BroadcastToRoom(req.RoomID, network.EventRoomPlayerLeft, gin.H{
			"playerId": sess.GetID(),
			"room":     r.Snapshot(),
		})
	}

	if s.monitor != nil {
		s.monitor.SetActiveRooms(s.roomRegistry.Count())
	}
}

func (s *GameServer) handleSetReady(sess *session.Session, ev *network.Event) {
	var req readyRequest
	if err := json.Unmarshal(ev.Data, &req); err != nil {
		s.sendError(sess, network.CodeBadRequest, "malformed room:ready payload")
		return
	}

	r, err := s.roomRegistry.SetReady(req.RoomID, sess.GetID(), req.IsReady)
	if err != nil {
		s.sendRegistryError(sess, err)
		return
	}

	s.broadcaster.BroadcastToRoom(r.ID, network.EventRoomReadyStatus, gin.H{
		"playerId": sess.GetID(),
		"isReady":  req.IsReady,
		"allReady": r.AllReady(),
	})
}

// ensureUserAsync upserts the player's profile off the hot path; profile
// writes are best-effort.
func (s *GameServer) ensureUserAsync(userID, nickname string) {
	go func() {
		if err := s.userService.EnsureUser(userID, nickname); err != nil {
			logger.Log.Warnf("Failed to upsert user %s: %v", userID, err)
		}
	}()
}

func (s *GameServer) sendError(sess *session.Session, code, message string) {
	sess.Send(network.EventError, network.ErrorPayload{Message: message, Code: code})
}

// sendRegistryError maps registry errors to their stable wire codes.
func (s *GameServer) sendRegistryError(sess *session.Session, err error) {
	code := network.CodeBadRequest
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		code = network.CodeRoomNotFound
	case errors.Is(err, room.ErrRoomFull):
		code = network.CodeRoomFull
	case errors.Is(err, room.ErrPlayerNotFound), errors.Is(err, game.ErrPlayerNotInGame):
		code = network.CodeNotFound
	case errors.Is(err, room.ErrNotHost):
		code = network.CodeNotHost
	case errors.Is(err, room.ErrNotEnoughPlayers), errors.Is(err, room.ErrPlayersNotReady),
		errors.Is(err, room.ErrAlreadyStarted):
		code = network.CodeNotEnoughReady
	case errors.Is(err, game.ErrGameNotFound):
		code = network.CodeGameNotFound
	case errors.Is(err, game.ErrDuplicateAnswer):
		code = network.CodeDuplicateAnswer
	case errors.Is(err, trivia.ErrUpstream):
		code = network.CodeUpstreamError
	case errors.Is(err, trivia.ErrInvalidParameter):
		code = network.CodeValidationError
	}
	s.sendError(sess, code, err.Error())
}
