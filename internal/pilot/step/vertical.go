package step

import (
	"context"
	"fmt"
	"time"

	"voxelpilot.ai/internal/pilot/digging"
	"voxelpilot.ai/internal/pilot/fail"
	"voxelpilot.ai/internal/pilot/obstacle"
	"voxelpilot.ai/internal/pilot/space"
	"voxelpilot.ai/internal/pilot/world"
)

// pillarAboveMargin: pillaring applies when the target is more than about
// one block above the agent.
const pillarAboveMargin = 1.0

// tryPillarUp ascends one block: clear headroom, jump, place the held
// building block beneath the feet mid-air, land on it.
func (c *Controller) tryPillarUp(ctx context.Context, req Request, start space.Pos) (Outcome, *fail.Failure) {
	if req.Target.Y <= start.Y+pillarAboveMargin {
		return Outcome{}, fail.New(fail.ErrBlocked, "target not above")
	}

	material := c.pickPillarMaterial(req.PillarMaterials)
	if material == "" {
		return Outcome{}, fail.New(fail.ErrPillarNoMaterial, "no pillar material in inventory (acceptable: %v)", req.PillarMaterials)
	}

	// Clear the cells above, nearest first. Y+1 is already head space.
	base := start.Floor()
	opts := digging.Options{Allow: req.ToolAllow, Timeout: req.DigTimeout}
	mined := 0
	for i := 2; i < 2+c.cfg.PillarClearanceCells; i++ {
		b := c.sensor.BlockAt(base.Offset(0, i, 0))
		if obstacle.IsPassable(b) {
			continue
		}
		r := c.miner.MineBlock(ctx, b, opts)
		mined += r.BlocksMined
		if !r.Success {
			return Outcome{BlocksMined: mined}, fail.New(fail.ErrPillarBlocked, "clearing %s at +%d: %v", b.Name, i, r.Failure)
		}
	}

	if f := c.strafer.Center(ctx); f != nil {
		return Outcome{BlocksMined: mined}, f
	}

	// Mining may have swapped the held item; hold the building block again.
	if err := c.act.Equip(ctx, material); err != nil {
		return Outcome{BlocksMined: mined}, fail.New(fail.ErrPillarNoMaterial, "equip %q: %v", material, err)
	}

	ref := c.sensor.BlockAt(base.Offset(0, -1, 0))
	if ref == nil || obstacle.IsPassable(ref) {
		return Outcome{BlocksMined: mined}, fail.New(fail.ErrPillarBlocked, "no placement reference below feet")
	}

	if err := c.act.SetControl(world.ControlJump, true); err != nil {
		return Outcome{BlocksMined: mined}, fail.New(fail.ErrPillarBlocked, "jump: %v", err)
	}
	airborne := c.waitFor(func(p space.Pos) bool { return p.Y > start.Y+0.5 })
	if !airborne {
		_ = c.act.SetControl(world.ControlJump, false)
		return Outcome{BlocksMined: mined}, fail.New(fail.ErrPillarBlocked, "never became airborne")
	}

	// Place into the cell vacated beneath the feet, against the top face of
	// the block below it.
	placeErr := c.act.PlaceBlock(ctx, ref, space.BlockPos{Y: 1})
	_ = c.act.SetControl(world.ControlJump, false)
	if placeErr != nil {
		return Outcome{BlocksMined: mined}, fail.New(fail.ErrPillarBlocked, "place %q: %v", material, placeErr)
	}

	c.waitSettled()

	end := c.sensor.Position()
	if end.Floor().Y <= base.Y {
		return Outcome{BlocksMined: mined}, fail.New(fail.ErrPillarBlocked, "y did not increase (%.2f -> %.2f)", start.Y, end.Y)
	}
	return Outcome{
		BlocksMined:    mined,
		BlocksPillared: 1,
		ProgressDelta:  progressToward(req.Target, start, end),
		Narrative:      fmt.Sprintf("pillared up to y=%d on %s", end.Floor().Y, material),
	}, nil
}

func (c *Controller) pickPillarMaterial(acceptable []string) string {
	items := c.sensor.Items()
	for _, name := range acceptable {
		for _, it := range items {
			if it.Name == name && it.Count > 0 {
				return name
			}
		}
	}
	return ""
}

// tryDigDown excavates the cell beneath the agent. It refuses without solid
// support two (guarded: three) cells below, so the agent cannot fall through
// a multi-cell air pocket it just opened.
func (c *Controller) tryDigDown(ctx context.Context, req Request, start space.Pos) (Outcome, *fail.Failure) {
	if !req.AllowDigDown {
		return Outcome{}, fail.New(fail.ErrBlocked, "digging down not permitted")
	}

	base := start.Floor()
	below := c.sensor.BlockAt(base.Offset(0, -1, 0))
	if obstacle.IsPassable(below) {
		return Outcome{}, fail.New(fail.ErrBlocked, "no block beneath to dig")
	}

	if obstacle.IsPassable(c.sensor.BlockAt(base.Offset(0, -2, 0))) {
		return Outcome{}, fail.New(fail.ErrUnsafeDigDown, "no solid support two cells below %s", base)
	}
	if req.GuardedDigDown && obstacle.IsPassable(c.sensor.BlockAt(base.Offset(0, -3, 0))) {
		return Outcome{}, fail.New(fail.ErrUnsafeDigDown, "no solid support three cells below %s", base)
	}

	if f := c.strafer.Center(ctx); f != nil {
		return Outcome{}, f
	}

	r := c.miner.MineBlock(ctx, below, digging.Options{Allow: req.ToolAllow, Timeout: req.DigTimeout})
	if !r.Success {
		return Outcome{BlocksMined: r.BlocksMined}, r.Failure
	}

	c.waitSettled()
	end := c.sensor.Position()
	return Outcome{
		BlocksMined:   r.BlocksMined,
		ProgressDelta: progressToward(req.Target, start, end),
		Narrative:     fmt.Sprintf("dug down to y=%d", end.Floor().Y),
	}, nil
}

// waitFor polls the agent position until cond holds or the airborne wait
// budget runs out.
func (c *Controller) waitFor(cond func(space.Pos) bool) bool {
	deadline := time.Now().Add(c.cfg.AirborneWait())
	for {
		if cond(c.sensor.Position()) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		c.sleep(c.cfg.AirbornePoll())
	}
}

// waitSettled waits until the agent's vertical position stops changing
// between two consecutive polls.
func (c *Controller) waitSettled() {
	deadline := time.Now().Add(c.cfg.AirborneWait())
	prev := c.sensor.Position().Y
	for {
		c.sleep(c.cfg.AirbornePoll())
		cur := c.sensor.Position().Y
		if cur == prev || time.Now().After(deadline) {
			return
		}
		prev = cur
	}
}
