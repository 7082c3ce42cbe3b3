package service

import (
	"time"
)

// CancelReason says why a running timer is being stopped.
type CancelReason int

const (
	// CancelNormal stops the timer because a move superseded the
	// deadline. Stored state is left alone.
	CancelNormal CancelReason = iota
	// CancelShutdown stops the timer because the process is going
	// down. The time already burned is persisted so a restart can
	// resume the countdown.
	CancelShutdown
)

// TimerUnit scales configured timeouts into wall time. Production runs
// on seconds; tests shrink it to milliseconds.
var TimerUnit = time.Second

// turnTimer counts down one registration, turn or vote window. On
// expiry it delivers a single envelope to the room mailbox, unless a
// cancel wins the race.
type turnTimer struct {
	seq    int64
	dur    time.Duration
	cancel chan CancelReason
	done   chan struct{}
}

// newTurnTimer starts the countdown. On expiry the timer hands seq to
// deliver; deliver blocks until the mailbox accepts it or a cancel
// arrives. On CancelShutdown the timer calls persist with the units
// burned since arming.
func newTurnTimer(seq int64, dur time.Duration, deliver chan<- envelope, persist func(elapsed int64)) *turnTimer {
	t := &turnTimer{
		seq:    seq,
		dur:    dur,
		cancel: make(chan CancelReason, 1),
		done:   make(chan struct{}),
	}
	go t.run(deliver, persist)
	return t
}

func (t *turnTimer) run(deliver chan<- envelope, persist func(elapsed int64)) {
	defer close(t.done)
	started := time.Now()
	tm := time.NewTimer(t.dur)
	defer tm.Stop()

	select {
	case <-tm.C:
		// Expired. The worker may still cancel while the mailbox is
		// busy; whoever is ready first wins.
		select {
		case deliver <- envelope{timerSeq: t.seq}:
		case reason := <-t.cancel:
			if reason == CancelShutdown {
				persist(elapsedUnits(started))
			}
		}
	case reason := <-t.cancel:
		if reason == CancelShutdown {
			persist(elapsedUnits(started))
		}
	}
}

// Cancel stops the timer. With CancelShutdown it blocks until the
// elapsed time has been persisted.
func (t *turnTimer) Cancel(reason CancelReason) {
	select {
	case t.cancel <- reason:
	default:
		// Timer already cancelled or past delivery.
	}
	if reason == CancelShutdown {
		<-t.done
	}
}

// Duration reports the window this timer was armed with.
func (t *turnTimer) Duration() time.Duration {
	return t.dur
}

// elapsedUnits converts the wall time since started into timeout units.
func elapsedUnits(started time.Time) int64 {
	return int64(time.Since(started) / TimerUnit)
}
