package digging

import (
	"context"
	"time"

	"voxelpilot.ai/internal/pilot/fail"
	"voxelpilot.ai/internal/pilot/space"
	"voxelpilot.ai/internal/pilot/tuning"
	"voxelpilot.ai/internal/pilot/world"
)

// Monitor bounds one otherwise open-ended break action: it starts the dig,
// then races a poll timer against the completion channel. Whichever resolves
// first, the timer is stopped before Watch returns.
type Monitor struct {
	act world.Actuator
	cfg tuning.Tuning

	// now is swappable for deterministic tests.
	now func() time.Time
}

func NewMonitor(act world.Actuator, cfg tuning.Tuning) *Monitor {
	return &Monitor{act: act, cfg: cfg, now: time.Now}
}

type verdict int

const (
	verdictContinue verdict = iota
	verdictNeverStarted
	verdictTooSlow
	verdictTimeout
	verdictIdleDone
)

// session is the ephemeral state of one watched break. It lives only for the
// duration of a single Watch call.
type session struct {
	start time.Time

	started   bool
	target    space.BlockPos
	sameSince time.Time
	activeAt  time.Time
}

func newSession(now time.Time) *session {
	return &session{start: now}
}

// observe folds one poll sample into the session. The ordering matters:
// "too slow" on the same block is more specific than the elapsed-time
// timeout, so it is checked first.
func (s *session) observe(now time.Time, breaking *world.Block, timeout, startGrace, idleGrace time.Duration) verdict {
	switch {
	case breaking != nil:
		if !s.started || breaking.Pos != s.target {
			s.started = true
			s.target = breaking.Pos
			s.sameSince = now
		}
		s.activeAt = now
		if now.Sub(s.sameSince) > timeout {
			return verdictTooSlow
		}
	case !s.started:
		if now.Sub(s.start) > startGrace {
			return verdictNeverStarted
		}
	default:
		if now.Sub(s.activeAt) > idleGrace {
			return verdictIdleDone
		}
	}
	if now.Sub(s.start) > timeout {
		return verdictTimeout
	}
	return verdictContinue
}

// Watch starts breaking b and supervises it until completion or a watchdog
// failure. On success exactly one block was mined. The returned error is a
// *fail.Failure for watchdog verdicts; anything else came out of the dig
// channel itself.
func (m *Monitor) Watch(ctx context.Context, b *world.Block, timeout time.Duration) (int, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	poll := m.cfg.DigPoll()
	if poll <= 0 {
		poll = 500 * time.Millisecond
	}

	done := m.act.DigStart(b)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	sess := newSession(m.now())
	for {
		select {
		case err := <-done:
			if err != nil {
				return 0, err
			}
			return 1, nil

		case <-ctx.Done():
			m.act.DigAbort()
			return 0, fail.New(fail.ErrDigAborted, "dig canceled: %v", ctx.Err())

		case <-ticker.C:
			now := m.now()
			switch sess.observe(now, m.act.CurrentlyBreaking(), timeout, m.cfg.DigStartGrace(), m.cfg.DigIdleGrace()) {
			case verdictNeverStarted:
				m.act.DigAbort()
				return 0, fail.New(fail.ErrDigNeverStarted, "break never started within %s (unreachable or obstructed)", m.cfg.DigStartGrace())
			case verdictTooSlow:
				m.act.DigAbort()
				return 0, fail.New(fail.ErrDigTooSlow, "still breaking the same block after %s (wrong tool?)", timeout)
			case verdictTimeout:
				m.act.DigAbort()
				return 0, fail.New(fail.ErrDigTimeout, "dig exceeded %s", timeout)
			case verdictIdleDone:
				// Break activity ceased: natural completion. Stop polling
				// and wait for the dig channel to settle on its own, with
				// the full timeout as the residual budget.
				ticker.Stop()
				return m.awaitResolve(ctx, done, timeout)
			}
		}
	}
}

func (m *Monitor) awaitResolve(ctx context.Context, done <-chan error, budget time.Duration) (int, error) {
	fallback := time.NewTimer(budget)
	defer fallback.Stop()
	select {
	case err := <-done:
		if err != nil {
			return 0, err
		}
		return 1, nil
	case <-ctx.Done():
		m.act.DigAbort()
		return 0, fail.New(fail.ErrDigAborted, "dig canceled: %v", ctx.Err())
	case <-fallback.C:
		m.act.DigAbort()
		return 0, fail.New(fail.ErrDigTimeout, "dig exceeded %s", budget)
	}
}
