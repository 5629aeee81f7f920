package step

import (
	"context"
	"fmt"

	"voxelpilot.ai/internal/pilot/digging"
	"voxelpilot.ai/internal/pilot/fail"
	"voxelpilot.ai/internal/pilot/obstacle"
	"voxelpilot.ai/internal/pilot/space"
	"voxelpilot.ai/internal/pilot/world"
)

// minHorizontalDistance below which the horizontal strategies stand aside
// for the vertical ones.
const minHorizontalDistance = 0.5

// tryWalk faces dir and, when both cells ahead are clear, applies a forward
// input pulse. A clear walk counts as progress unconditionally.
func (c *Controller) tryWalk(ctx context.Context, req Request, start space.Pos, dir space.Dir) (Outcome, *fail.Failure) {
	if start.DistanceXZ(req.Target) < minHorizontalDistance {
		return Outcome{}, fail.New(fail.ErrBlocked, "no horizontal distance to close")
	}
	if err := c.act.LookAt(ctx, start.Add(float64(dir.X), 0, float64(dir.Z)), true); err != nil {
		return Outcome{}, fail.New(fail.ErrBlocked, "face %s: %v", dir, err)
	}

	view := obstacle.Ahead(c.sensor, start, dir)
	if !view.FeetPassable || !view.HeadPassable {
		return Outcome{}, fail.New(fail.ErrBlocked, "path %s blocked (feet=%s head=%s)",
			dir, obstacle.Name(view.Feet), obstacle.Name(view.Head))
	}

	if err := c.pulse(world.ControlForward, c.cfg.WalkPulse()); err != nil {
		return Outcome{}, fail.New(fail.ErrBlocked, "forward pulse: %v", err)
	}

	end := c.sensor.Position()
	delta := progressToward(req.Target, start, end)
	return Outcome{
		ProgressDelta: delta,
		Narrative:     fmt.Sprintf("walk %s: advanced %.2f", dir, delta),
	}, nil
}

// tryJump hops a one-high obstacle: feet-ahead blocked, head-ahead clear,
// headroom above the agent clear, and the landing cell clear.
func (c *Controller) tryJump(ctx context.Context, req Request, start space.Pos, dir space.Dir) (Outcome, *fail.Failure) {
	if start.DistanceXZ(req.Target) < minHorizontalDistance {
		return Outcome{}, fail.New(fail.ErrBlocked, "no horizontal distance to close")
	}

	view := obstacle.Ahead(c.sensor, start, dir)
	base := start.Floor()
	above := c.sensor.BlockAt(base.Offset(0, 2, 0))
	landing := c.sensor.BlockAt(base.Step(dir).Offset(0, 2, 0))

	situation := fmt.Sprintf("feet=%s head=%s above=%s landing=%s",
		obstacle.Name(view.Feet), obstacle.Name(view.Head), obstacle.Name(above), obstacle.Name(landing))

	if view.FeetPassable {
		return Outcome{}, fail.New(fail.ErrBlocked, "nothing to jump over (%s)", situation)
	}
	if !view.HeadPassable || !obstacle.IsPassable(above) || !obstacle.IsPassable(landing) {
		return Outcome{}, fail.New(fail.ErrBlocked, "no jump clearance (%s)", situation)
	}

	// Simultaneous forward+jump, then release both.
	if err := c.act.SetControl(world.ControlForward, true); err != nil {
		return Outcome{}, fail.New(fail.ErrBlocked, "jump pulse: %v", err)
	}
	if err := c.act.SetControl(world.ControlJump, true); err != nil {
		_ = c.act.SetControl(world.ControlForward, false)
		return Outcome{}, fail.New(fail.ErrBlocked, "jump pulse: %v", err)
	}
	c.sleep(c.cfg.JumpPulse())
	_ = c.act.SetControl(world.ControlForward, false)
	_ = c.act.SetControl(world.ControlJump, false)

	end := c.sensor.Position()
	delta := progressToward(req.Target, start, end)
	if delta < c.cfg.JumpMinProgress {
		return Outcome{}, fail.New(fail.ErrBlocked, "jump gained only %.2f (%s)", delta, situation)
	}
	return Outcome{
		ProgressDelta: delta,
		Narrative:     fmt.Sprintf("jump %s: advanced %.2f", dir, delta),
	}, nil
}

// tryMineForward excavates the two cells ahead (head first, then feet).
// Applicable only when both are blocked; aborts the pair on the first
// failure but still reports the partial count.
func (c *Controller) tryMineForward(ctx context.Context, req Request, start space.Pos, dir space.Dir) (Outcome, *fail.Failure) {
	view := obstacle.Ahead(c.sensor, start, dir)
	if view.FeetPassable || view.HeadPassable {
		return Outcome{}, fail.New(fail.ErrBlocked, "forward cells not both blocked (feet=%s head=%s)",
			obstacle.Name(view.Feet), obstacle.Name(view.Head))
	}

	opts := digging.Options{Allow: req.ToolAllow, Timeout: req.DigTimeout}
	mined := 0

	if view.Head != nil {
		r := c.miner.MineBlock(ctx, view.Head, opts)
		mined += r.BlocksMined
		if !r.Success {
			return Outcome{BlocksMined: mined}, r.Failure
		}
	}
	if view.Feet != nil {
		r := c.miner.MineBlock(ctx, view.Feet, opts)
		mined += r.BlocksMined
		if !r.Success {
			return Outcome{BlocksMined: mined}, r.Failure
		}
	}

	return Outcome{
		BlocksMined: mined,
		Narrative:   fmt.Sprintf("mined %d block(s) toward %s", mined, dir),
	}, nil
}
