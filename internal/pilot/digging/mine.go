package digging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voxelpilot.ai/internal/pilot/fail"
	"voxelpilot.ai/internal/pilot/tools"
	"voxelpilot.ai/internal/pilot/tuning"
	"voxelpilot.ai/internal/pilot/world"
)

// Miner performs single-block mining: safety check, tool resolution, orient,
// diggability check, then the watchdog-supervised break.
type Miner struct {
	sensor world.Sensor
	act    world.Actuator
	cfg    tuning.Tuning
	mon    *Monitor
}

func NewMiner(sensor world.Sensor, act world.Actuator, cfg tuning.Tuning) *Miner {
	return &Miner{
		sensor: sensor,
		act:    act,
		cfg:    cfg,
		mon:    NewMonitor(act, cfg),
	}
}

type Options struct {
	// Allow is the caller's tool allow-list; empty means auto-select.
	Allow []tools.Rule

	// Timeout bounds the break action itself.
	Timeout time.Duration

	// AllowDiagonal permits mining a block offset on both horizontal axes.
	AllowDiagonal bool
}

// Result reports one mining attempt. Narrative is a human-readable step log
// and may be set on success; it is never a failure signal.
type Result struct {
	Success     bool
	BlocksMined int
	Failure     *fail.Failure
	Narrative   string
}

func (m *Miner) heldName() string {
	if it := m.sensor.HeldItem(); it != nil {
		return it.Name
	}
	return ""
}

// failure attaches the diagnostic payload every mining failure carries:
// block name, cell, held item, distance.
func (m *Miner) failure(f *fail.Failure, target *world.Block) Result {
	dist := m.sensor.Position().DistanceTo(target.Pos.Center())
	f.WithBlockContext(target.Name, target.Pos.X, target.Pos.Y, target.Pos.Z, m.heldName(), dist)
	return Result{Failure: f}
}

// MineBlock breaks exactly one block or explains why it could not.
func (m *Miner) MineBlock(ctx context.Context, target *world.Block, opts Options) Result {
	if target == nil {
		return Result{Success: true, Narrative: "no block to mine"}
	}

	// Horizontally diagonal targets are silently unsafe to swing at;
	// vertical-only offsets are fine.
	agentCell := m.sensor.Position().Floor()
	dx := target.Pos.X - agentCell.X
	dz := target.Pos.Z - agentCell.Z
	if dx != 0 && dz != 0 && !opts.AllowDiagonal {
		return m.failure(fail.New(fail.ErrUnreachable, "block is diagonal to the agent (dx=%d dz=%d)", dx, dz), target)
	}

	choice, f := tools.Resolve(target.Name, opts.Allow, m.sensor.Items())
	if f != nil {
		return m.failure(f, target)
	}
	if choice.Item != nil {
		if err := m.act.Equip(ctx, choice.Item.Name); err != nil {
			return m.failure(fail.New(fail.ErrMissingTool, "equip %q: %v", choice.Item.Name, err), target)
		}
	} else {
		// Resolved to bare hands: make sure nothing else is held.
		if err := m.act.Unequip(ctx); err != nil {
			return m.failure(fail.New(fail.ErrMissingTool, "unequip: %v", err), target)
		}
	}

	if err := m.act.LookAt(ctx, target.Pos.Center(), true); err != nil {
		return m.failure(fail.New(fail.ErrUnreachable, "look at block: %v", err), target)
	}

	if !m.act.CanDig(target) {
		return m.failure(fail.New(fail.ErrNotDiggable, "block cannot be dug from here"), target)
	}

	mined, err := m.mon.Watch(ctx, target, opts.Timeout)
	if err != nil {
		var wf *fail.Failure
		if !errors.As(err, &wf) {
			wf = fail.New(fail.ErrDigAborted, "dig interrupted: %v", err)
		}
		r := m.failure(wf, target)
		r.BlocksMined = mined
		return r
	}

	return Result{
		Success:     true,
		BlocksMined: mined,
		Narrative:   fmt.Sprintf("mined %s at %s", target.Name, target.Pos),
	}
}
