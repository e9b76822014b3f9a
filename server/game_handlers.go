package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wfunc/triviaserver/game"
	"github.com/wfunc/triviaserver/logger"
	"github.com/wfunc/triviaserver/models"
	"github.com/wfunc/triviaserver/network"
	"github.com/wfunc/triviaserver/room"
	"github.com/wfunc/triviaserver/session"
)

const startGameTimeout = 15 * time.Second

type startGameRequest struct {
	RoomID string `json:"roomId"`
}

type answerRequest struct {
	GameID    string  `json:"gameId"`
	Answer    string  `json:"answer"`
	TimeSpent float64 `json:"timeSpent"`
}

type nextQuestionRequest struct {
	GameID string `json:"gameId"`
}

func (s *GameServer) handleStartGame(sess *session.Session, ev *network.Event) {
	var req startGameRequest
	if err := json.Unmarshal(ev.Data, &req); err != nil {
		s.sendError(sess, network.CodeBadRequest, "malformed game:start payload")
		return
	}

	r, err := s.roomRegistry.Get(req.RoomID)
	if err != nil {
		s.sendRegistryError(sess, err)
		return
	}
	if err := room.CanStart(r, sess.GetID()); err != nil {
		s.sendRegistryError(sess, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), startGameTimeout)
	defer cancel()

	g, err := s.gameRegistry.Start(ctx, r)
	if err != nil {
		logger.Log.Errorf("Failed to start game in room %s: %v", r.ID, err)
		s.sendRegistryError(sess, err)
		return
	}

	barrier := game.NewBarrier(s.timers, func(index int) {
		s.advanceGame(g, index)
	})
	g.AttachBarrier(barrier)

	// arm before the broadcast so an answer racing the question frame still
	// lands on the armed index
	barrier.Arm(0)
	first := g.CurrentQuestion()
	s.broadcaster.BroadcastToRoom(r.ID, network.EventGameStarted, gin.H{
		"gameId":         g.ID,
		"firstQuestion":  first.Public(),
		"questionNumber": 1,
		"totalQuestions": len(g.Questions),
	})

	logger.Log.Infof("Game %s started in room %s with %d players", g.ID, r.ID, len(g.Players))
	if s.monitor != nil {
		s.monitor.SetActiveGames(s.gameRegistry.Count())
	}
}

func (s *GameServer) handleSubmitAnswer(sess *session.Session, ev *network.Event) {
	var req answerRequest
	if err := json.Unmarshal(ev.Data, &req); err != nil {
		s.sendError(sess, network.CodeBadRequest, "malformed game:answer payload")
		return
	}

	outcome, err := s.gameRegistry.SubmitAnswer(req.GameID, sess.GetID(), req.Answer, req.TimeSpent)
	if err != nil {
		s.sendRegistryError(sess, err)
		return
	}
	if outcome == nil {
		// stale submission, question already advanced
		return
	}

	if s.monitor != nil {
		s.monitor.IncAnswersSubmitted()
	}

	sess.Send(network.EventGameAnswerRes, outcome)

	g, err := s.gameRegistry.Get(req.GameID)
	if err != nil {
		return
	}
	s.broadcaster.BroadcastToRoom(g.RoomID, network.EventGameScores, gin.H{
		"scores": g.ScoreBoard(),
	})

	if g.AllAnswered() {
		if b := g.Barrier(); b != nil {
			b.Complete(outcome.QuestionIndex)
		}
	}
}

func (s *GameServer) handleNextQuestion(sess *session.Session, ev *network.Event) {
	var req nextQuestionRequest
	if err := json.Unmarshal(ev.Data, &req); err != nil {
		s.sendError(sess, network.CodeBadRequest, "malformed game:next payload")
		return
	}

	g, err := s.gameRegistry.Get(req.GameID)
	if err != nil {
		s.sendRegistryError(sess, err)
		return
	}

	if b := g.Barrier(); b != nil {
		b.Trigger(g.CurrentIndex())
	}
}

// advanceGame is the barrier's release callback: it moves the game forward
// and emits either the next question or the finish sequence.
func (s *GameServer) advanceGame(g *game.Game, index int) {
	next, fin := g.Advance()

	if next != nil {
		if s.monitor != nil {
			s.monitor.IncQuestionsAdvanced()
		}
		if b := g.Barrier(); b != nil {
			b.Arm(g.CurrentIndex())
		}
		s.broadcaster.BroadcastToRoom(g.RoomID, network.EventGameQuestion, gin.H{
			"question":       next.Public(),
			"questionNumber": g.CurrentIndex() + 1,
			"totalQuestions": len(g.Questions),
		})
		return
	}

	if fin == nil {
		return
	}
	s.finishGame(g, fin)
}

func (s *GameServer) finishGame(g *game.Game, fin *game.FinishResult) {
	s.gameRegistry.Retire(g)

	if r, err := s.roomRegistry.Get(g.RoomID); err == nil {
		r.SetState(room.StateFinished)
	}

	s.broadcaster.BroadcastToRoom(g.RoomID, network.EventGameFinished, gin.H{
		"finalScores": fin.Scores,
		"winner":      fin.Winner,
	})

	logger.Log.Infof("Game %s finished, winner: %s", g.ID, fin.Winner)
	if s.monitor != nil {
		s.monitor.IncGamesFinished()
	}

	players := make([]models.PlayerResult, 0, len(fin.Scores))
	for _, score := range fin.Scores {
		players = append(players, models.PlayerResult{
			UserID:         score.UserID,
			Nickname:       score.Nickname,
			Score:          score.Score,
			CorrectAnswers: score.CorrectAnswers,
			TotalQuestions: score.TotalQuestions,
		})
	}
	s.resultService.RecordGameResultAsync(&models.GameResult{
		GameID:     g.ID,
		RoomID:     g.RoomID,
		Category:   g.Category,
		Difficulty: g.Difficulty,
		Players:    players,
		Winner:     fin.Winner,
		StartedAt:  g.StartedAt,
		FinishedAt: g.FinishedAt,
	})
}
