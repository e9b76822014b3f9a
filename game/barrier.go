// game/barrier.go
package game

import (
	"sync"
	"time"

	"github.com/wfunc/triviaserver/timer"
)

// AdvanceFunc is invoked exactly once per question when the barrier
// releases. index is the question being left behind.
type AdvanceFunc func(index int)

// Barrier gates the advance to the next question. It releases when every
// player has answered (after the settle delay) or when the per-question
// deadline elapses, whichever comes first. Either way the advance callback
// runs exactly once per armed question.
type Barrier struct {
	timers  *timer.Manager
	advance AdvanceFunc

	deadline time.Duration
	settle   time.Duration

	mutex      sync.Mutex
	index      int
	fired      bool
	disarmed   bool
	deadlineID int64
	settleID   int64
}

func NewBarrier(timers *timer.Manager, advance AdvanceFunc) *Barrier {
	return &Barrier{
		timers:   timers,
		advance:  advance,
		deadline: QuestionDeadline,
		settle:   SettleDelay,
		index:    -1,
	}
}

// Arm readies the barrier for a question and schedules its deadline. The
// deadline guarantees forward progress even if a player never answers.
func (b *Barrier) Arm(index int) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.disarmed {
		return
	}

	b.cancelTimers()
	b.index = index
	b.fired = false
	b.deadlineID = b.timers.Schedule(b.deadline, 0, func() {
		b.release(index)
	})
}

// Complete signals that every player answered question index. The advance
// is scheduled after the settle delay so players see the resolved question
// before the next one arrives.
func (b *Barrier) Complete(index int) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.disarmed || b.fired || index != b.index {
		return
	}

	// the deadline no longer matters once everyone is in
	if b.deadlineID != 0 {
		b.timers.Cancel(b.deadlineID)
		b.deadlineID = 0
	}
	b.settleID = b.timers.Schedule(b.settle, 0, func() {
		b.release(index)
	})
}

// Trigger forces the advance for question index, e.g. on an explicit
// next-question request. Subject to the same exactly-once guard.
func (b *Barrier) Trigger(index int) {
	b.release(index)
}

// Disarm cancels all pending timers. Used when the game finishes or is
// torn down so no events fire for a dead game.
func (b *Barrier) Disarm() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.disarmed = true
	b.cancelTimers()
}

func (b *Barrier) release(index int) {
	b.mutex.Lock()
	if b.disarmed || b.fired || index != b.index {
		b.mutex.Unlock()
		return
	}
	b.fired = true
	b.cancelTimers()
	b.mutex.Unlock()

	b.advance(index)
}

// cancelTimers clears pending tasks. Caller must hold the barrier lock.
func (b *Barrier) cancelTimers() {
	if b.deadlineID != 0 {
		b.timers.Cancel(b.deadlineID)
		b.deadlineID = 0
	}
	if b.settleID != 0 {
		b.timers.Cancel(b.settleID)
		b.settleID = 0
	}
}
