// game/game.go
package game

import (
	"sort"
	"sync"
	"time"

	"github.com/wfunc/triviaserver/trivia"
)

type State string

const (
	StateInProgress State = "in_progress"
	StateFinished   State = "finished"
)

// AnswerRecord is one submitted answer, kept in submission order.
type AnswerRecord struct {
	QuestionID string  `json:"questionId"`
	Answer     string  `json:"answer"`
	IsCorrect  bool    `json:"isCorrect"`
	TimeSpent  float64 `json:"timeSpent"`
	Score      int     `json:"score"`
}

// PlayerState is one player's score sheet. JoinOrder carries the room's
// deterministic ordering into the game snapshot for tie-breaks.
type PlayerState struct {
	ID        string         `json:"userId"`
	Nickname  string         `json:"nickname"`
	Score     int            `json:"score"`
	Answers   []AnswerRecord `json:"answers"`
	JoinOrder int            `json:"-"`
}

// AnswerOutcome is what a successful submission reports back to the sender.
type AnswerOutcome struct {
	IsCorrect     bool   `json:"isCorrect"`
	Score         int    `json:"score"`
	CorrectAnswer string `json:"correctAnswer"`
	TotalScore    int    `json:"totalScore"`

	QuestionIndex int `json:"-"`
}

// PlayerScore is one row of the live score board.
type PlayerScore struct {
	UserID   string `json:"userId"`
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
}

// FinalScore is one row of the end-of-game board.
type FinalScore struct {
	UserID         string `json:"userId"`
	Nickname       string `json:"nickname"`
	Score          int    `json:"score"`
	CorrectAnswers int    `json:"correctAnswers"`
	TotalQuestions int    `json:"totalQuestions"`
}

// FinishResult reports the terminal outcome of a game.
type FinishResult struct {
	Winner string       `json:"winner"`
	Scores []FinalScore `json:"scores"`
}

// Game is one active question sequence. Its player set is a frozen snapshot
// of the room at start time; later room mutations never touch it.
type Game struct {
	ID         string
	RoomID     string
	Category   int
	Difficulty string
	Questions  []trivia.Question
	Players    map[string]*PlayerState
	StartedAt  time.Time
	FinishedAt time.Time
	Winner     string

	current  int
	answered map[string]struct{}
	state    State
	barrier  *Barrier
	mutex    sync.Mutex
}

func (g *Game) GetState() State {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.state
}

// CurrentIndex returns the 0-based index of the open question.
func (g *Game) CurrentIndex() int {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.current
}

// CurrentQuestion returns the open question, or nil once the index has run
// past the sequence.
func (g *Game) CurrentQuestion() *trivia.Question {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.questionAt(g.current)
}

func (g *Game) questionAt(index int) *trivia.Question {
	if index < 0 || index >= len(g.Questions) {
		return nil
	}
	return &g.Questions[index]
}

// AttachBarrier hands the game its advance gate. Done once at start.
func (g *Game) AttachBarrier(b *Barrier) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.barrier = b
}

func (g *Game) Barrier() *Barrier {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.barrier
}

// SubmitAnswer applies one answer as a single atomic step: duplicate check,
// record append, score update and answered-set insertion all happen under
// the game lock. A nil outcome with nil error means the submission was
// stale (the game advanced past the question the caller saw) and must be
// silently ignored.
func (g *Game) SubmitAnswer(playerID, answer string, timeSpent float64) (*AnswerOutcome, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	question := g.questionAt(g.current)
	if question == nil || g.state == StateFinished {
		return nil, nil
	}

	player, exists := g.Players[playerID]
	if !exists {
		return nil, ErrPlayerNotInGame
	}
	if _, already := g.answered[playerID]; already {
		return nil, ErrDuplicateAnswer
	}

	isCorrect := answer == question.CorrectAnswer
	score := Score(timeSpent, g.Difficulty, isCorrect)

	player.Answers = append(player.Answers, AnswerRecord{
		QuestionID: question.ID,
		Answer:     answer,
		IsCorrect:  isCorrect,
		TimeSpent:  timeSpent,
		Score:      score,
	})
	player.Score += score
	g.answered[playerID] = struct{}{}

	return &AnswerOutcome{
		IsCorrect:     isCorrect,
		Score:         score,
		CorrectAnswer: question.CorrectAnswer,
		TotalScore:    player.Score,
		QuestionIndex: g.current,
	}, nil
}

// AllAnswered reports whether every snapshotted player has answered the
// open question.
func (g *Game) AllAnswered() bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return len(g.answered) == len(g.Players)
}

// Advance moves to the next question, clearing the answered set. Exactly
// one of the return values is non-nil: the next question, or the finish
// result once the sequence is exhausted.
func (g *Game) Advance() (*trivia.Question, *FinishResult) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if g.state == StateFinished {
		return nil, nil
	}

	g.current++
	g.answered = make(map[string]struct{})

	if next := g.questionAt(g.current); next != nil {
		return next, nil
	}
	return nil, g.finish()
}

// Finish forcibly ends the game, e.g. on teardown.
func (g *Game) Finish() *FinishResult {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.state == StateFinished {
		return &FinishResult{Winner: g.Winner, Scores: g.finalScores()}
	}
	return g.finish()
}

// finish sets the terminal state. Caller must hold the game lock.
func (g *Game) finish() *FinishResult {
	g.state = StateFinished
	g.FinishedAt = time.Now()

	scores := g.finalScores()
	if len(scores) > 0 {
		g.Winner = scores[0].UserID
	}
	return &FinishResult{Winner: g.Winner, Scores: scores}
}

// finalScores sorts players by score descending, ties broken by the join
// order captured at snapshot time. Caller must hold the game lock.
func (g *Game) finalScores() []FinalScore {
	ordered := g.orderedPlayers()
	scores := make([]FinalScore, 0, len(ordered))
	for _, p := range ordered {
		correct := 0
		for _, a := range p.Answers {
			if a.IsCorrect {
				correct++
			}
		}
		scores = append(scores, FinalScore{
			UserID:         p.ID,
			Nickname:       p.Nickname,
			Score:          p.Score,
			CorrectAnswers: correct,
			TotalQuestions: len(g.Questions),
		})
	}
	return scores
}

// ScoreBoard returns the live standings in deterministic order.
func (g *Game) ScoreBoard() []PlayerScore {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	ordered := g.orderedPlayers()
	board := make([]PlayerScore, 0, len(ordered))
	for _, p := range ordered {
		board = append(board, PlayerScore{UserID: p.ID, Nickname: p.Nickname, Score: p.Score})
	}
	return board
}

func (g *Game) orderedPlayers() []*PlayerState {
	ordered := make([]*PlayerState, 0, len(g.Players))
	for _, p := range g.Players {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].JoinOrder < ordered[j].JoinOrder
	})
	return ordered
}
