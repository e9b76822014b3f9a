// game/registry.go
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/triviaserver/room"
	"github.com/wfunc/triviaserver/timer"
	"github.com/wfunc/triviaserver/trivia"
)

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrDuplicateAnswer = errors.New("player already answered this question")
	ErrPlayerNotInGame = errors.New("player not in game")
)

// FinishedGameRetention bounds how long finished games stay queryable in
// memory before eviction.
const FinishedGameRetention = 10 * time.Minute

// QuestionProvider supplies the fixed question sequence for a new game.
type QuestionProvider interface {
	FetchQuestions(ctx context.Context, amount int, categoryID int, difficulty string) ([]trivia.Question, error)
}

// Registry owns every game session and drives the start/answer/advance/
// finish state machine.
type Registry struct {
	games    map[string]*Game
	provider QuestionProvider
	timers   *timer.Manager
	mutex    sync.RWMutex
}

func NewRegistry(provider QuestionProvider, timers *timer.Manager) *Registry {
	return &Registry{
		games:    make(map[string]*Game),
		provider: provider,
		timers:   timers,
	}
}

// Start creates a game from a room: fetches the question sequence, freezes
// the room's players into per-game score sheets and marks the room in
// progress. A provider failure aborts the whole start; no partial game is
// ever registered.
func (reg *Registry) Start(ctx context.Context, r *room.Room) (*Game, error) {
	questions, err := reg.provider.FetchQuestions(ctx, QuestionsPerGame, r.Category, r.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	if len(questions) < QuestionsPerGame {
		return nil, fmt.Errorf("fetch questions: %w: got %d, want %d", trivia.ErrUpstream, len(questions), QuestionsPerGame)
	}

	players := make(map[string]*PlayerState)
	for _, slot := range r.PlayerSlots() {
		players[slot.ID] = &PlayerState{
			ID:        slot.ID,
			Nickname:  slot.Nickname,
			JoinOrder: slot.JoinOrder,
		}
	}

	g := &Game{
		ID:         "game_" + uuid.NewString(),
		RoomID:     r.ID,
		Category:   r.Category,
		Difficulty: r.Difficulty,
		Questions:  questions[:QuestionsPerGame],
		Players:    players,
		StartedAt:  time.Now(),
		answered:   make(map[string]struct{}),
		state:      StateInProgress,
	}

	reg.mutex.Lock()
	reg.games[g.ID] = g
	reg.mutex.Unlock()

	r.SetState(room.StateInProgress)
	return g, nil
}

func (reg *Registry) Get(gameID string) (*Game, error) {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()

	g, exists := reg.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return g, nil
}

// SubmitAnswer routes an answer to its game. The nil/nil stale contract of
// Game.SubmitAnswer passes through.
func (reg *Registry) SubmitAnswer(gameID, playerID, answer string, timeSpent float64) (*AnswerOutcome, error) {
	g, err := reg.Get(gameID)
	if err != nil {
		return nil, err
	}
	return g.SubmitAnswer(playerID, answer, timeSpent)
}

// Retire schedules the eviction of a finished game and disarms its barrier.
func (reg *Registry) Retire(g *Game) {
	if b := g.Barrier(); b != nil {
		b.Disarm()
	}
	reg.timers.Schedule(FinishedGameRetention, 0, func() {
		reg.Remove(g.ID)
	})
}

func (reg *Registry) Remove(gameID string) {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()
	delete(reg.games, gameID)
}

// Count returns the number of games currently held, finished included.
func (reg *Registry) Count() int {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()
	return len(reg.games)
}
