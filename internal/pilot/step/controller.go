// Package step is the central state machine: one call decides and performs
// one physical step toward a target, trying a fixed cascade of strategies
// (walk, jump, mine forward, pillar up, dig down) until one succeeds.
package step

import (
	"context"
	"strings"
	"time"

	"voxelpilot.ai/internal/pilot/digging"
	"voxelpilot.ai/internal/pilot/fail"
	"voxelpilot.ai/internal/pilot/space"
	"voxelpilot.ai/internal/pilot/steer"
	"voxelpilot.ai/internal/pilot/tools"
	"voxelpilot.ai/internal/pilot/tuning"
	"voxelpilot.ai/internal/pilot/world"
)

type Controller struct {
	sensor  world.Sensor
	act     world.Actuator
	cfg     tuning.Tuning
	miner   *digging.Miner
	strafer *steer.Strafer

	sleep func(time.Duration)
}

func NewController(sensor world.Sensor, act world.Actuator, cfg tuning.Tuning) *Controller {
	return &Controller{
		sensor:  sensor,
		act:     act,
		cfg:     cfg,
		miner:   digging.NewMiner(sensor, act, cfg),
		strafer: steer.NewStrafer(sensor, act, cfg),
		sleep:   time.Sleep,
	}
}

// Request carries the caller-supplied constraints for one step.
type Request struct {
	Target space.Pos

	// PillarMaterials is the ordered list of block item names acceptable
	// for pillaring; the first one present in inventory is used.
	PillarMaterials []string

	// ToolAllow is the exhaustive tool allow-list; empty means auto-select.
	ToolAllow []tools.Rule

	// DigTimeout bounds each single-block break.
	DigTimeout time.Duration

	AllowDigDown bool

	// GuardedDigDown additionally requires solid ground three cells below
	// before digging straight down.
	GuardedDigDown bool
}

// Outcome is the structured result of one step. Failure and Narrative are
// independent: a successful step may still carry a narrative for logging.
type Outcome struct {
	BlocksMined    int     `json:"blocks_mined"`
	BlocksPillared int     `json:"blocks_pillared"`
	ProgressDelta  float64 `json:"progress_delta"`

	Failure   *fail.Failure `json:"failure,omitempty"`
	Narrative string        `json:"narrative,omitempty"`
}

func (o Outcome) Success() bool { return o.Failure == nil }

// Step attempts the strategy cascade in fixed priority; the first success
// wins. When every strategy fails, the outcome's failure message is the
// semicolon-joined list of each strategy's reason in attempted order;
// callers pick their next high-level action off that narrative.
func (c *Controller) Step(ctx context.Context, req Request) Outcome {
	start := c.sensor.Position()
	dir := space.NextDirection(start, req.Target)

	strategies := []struct {
		name string
		run  func() (Outcome, *fail.Failure)
	}{
		{"walk", func() (Outcome, *fail.Failure) { return c.tryWalk(ctx, req, start, dir) }},
		{"jump", func() (Outcome, *fail.Failure) { return c.tryJump(ctx, req, start, dir) }},
		{"mine", func() (Outcome, *fail.Failure) { return c.tryMineForward(ctx, req, start, dir) }},
		{"pillar", func() (Outcome, *fail.Failure) { return c.tryPillarUp(ctx, req, start) }},
		{"digdown", func() (Outcome, *fail.Failure) { return c.tryDigDown(ctx, req, start) }},
	}

	var reasons []string
	mined, pillared := 0, 0
	for _, s := range strategies {
		out, f := s.run()
		// Partial work from a failed strategy still counts.
		mined += out.BlocksMined
		pillared += out.BlocksPillared
		if f == nil {
			out.BlocksMined = mined
			out.BlocksPillared = pillared
			if len(reasons) > 0 {
				out.Narrative = strings.Join(append(reasons, out.Narrative), "; ")
			}
			return out
		}
		reasons = append(reasons, s.name+": "+f.Error())
	}

	joined := strings.Join(reasons, "; ")
	return Outcome{
		BlocksMined:    mined,
		BlocksPillared: pillared,
		Failure:        fail.New(fail.ErrNoProgress, "%s", joined),
		Narrative:      joined,
	}
}

// pulse holds a control for d and releases it.
func (c *Controller) pulse(ctrl world.Control, d time.Duration) error {
	if err := c.act.SetControl(ctrl, true); err != nil {
		return err
	}
	c.sleep(d)
	return c.act.SetControl(ctrl, false)
}

// progressToward is the scalar distance closed toward the target between
// two positions; negative means the step moved away.
func progressToward(target, before, after space.Pos) float64 {
	return before.DistanceTo(target) - after.DistanceTo(target)
}
