// network/protocol.go
package network

// Inbound events (client -> server).
const (
	EventRoomCreate = "room:create"
	EventRoomJoin   = "room:join"
	EventRoomLeave  = "room:leave"
	EventRoomReady  = "room:ready"
	EventGameStart  = "game:start"
	EventGameAnswer = "game:answer"
	EventGameNext   = "game:next"
)

// Outbound events (server -> client).
const (
	EventWelcome         = "welcome"
	EventRoomCreated     = "room:created"
	EventRoomJoined      = "room:joined"
	EventRoomPlayerJoin  = "room:player-joined"
	EventRoomPlayerLeft  = "room:player-left"
	EventRoomReadyStatus = "room:ready-status"
	EventGameStarted     = "game:started"
	EventGameQuestion    = "game:question"
	EventGameAnswerRes   = "game:answer-result"
	EventGameScores      = "game:scores"
	EventGameFinished    = "game:finished"
	EventError           = "error"
)

// Stable error codes carried on the error event.
const (
	CodeRoomNotFound    = "ROOM_NOT_FOUND"
	CodeRoomFull        = "ROOM_FULL"
	CodeGameNotFound    = "GAME_NOT_FOUND"
	CodeNotFound        = "NOT_FOUND"
	CodeDuplicateAnswer = "DUPLICATE_ANSWER"
	CodeUpstreamError   = "UPSTREAM_ERROR"
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotHost         = "NOT_HOST"
	CodeNotEnoughReady  = "NOT_READY"
	CodeBadRequest      = "BAD_REQUEST"
)

// ErrorPayload is the body of an error event.
type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}
