// Package steer aligns the agent to block center before precision actions
// (straight-down digging, mid-air placement).
package steer

import (
	"context"
	"math"
	"time"

	"voxelpilot.ai/internal/pilot/fail"
	"voxelpilot.ai/internal/pilot/space"
	"voxelpilot.ai/internal/pilot/tuning"
	"voxelpilot.ai/internal/pilot/world"
)

type Strafer struct {
	sensor world.Sensor
	act    world.Actuator
	cfg    tuning.Tuning

	sleep func(time.Duration)
}

func NewStrafer(sensor world.Sensor, act world.Actuator, cfg tuning.Tuning) *Strafer {
	return &Strafer{sensor: sensor, act: act, cfg: cfg, sleep: time.Sleep}
}

// Offset is the agent's signed fractional position on the axis perpendicular
// to facing, normalized to [-0.5, 0.5]. Zero means dead center.
func Offset(pos space.Pos, facing space.Dir) float64 {
	if facing.X != 0 {
		return frac(pos.Z) - 0.5
	}
	return frac(pos.X) - 0.5
}

func frac(v float64) float64 {
	return v - math.Floor(v)
}

// strafeControl maps facing and offset sign to a strafe direction. All eight
// cases are spelled out: an inverted case drives the agent further
// off-center instead of correcting it.
func strafeControl(facing space.Dir, offset float64) world.Control {
	switch {
	case facing == space.East && offset > 0:
		return world.ControlLeft
	case facing == space.East && offset <= 0:
		return world.ControlRight
	case facing == space.West && offset > 0:
		return world.ControlRight
	case facing == space.West && offset <= 0:
		return world.ControlLeft
	case facing == space.South && offset > 0:
		return world.ControlRight
	case facing == space.South && offset <= 0:
		return world.ControlLeft
	case facing == space.North && offset > 0:
		return world.ControlLeft
	default: // facing north, offset <= 0
		return world.ControlRight
	}
}

// Center strafes in bounded pulses until the perpendicular offset is inside
// the accept band. Already-centered agents return immediately.
func (s *Strafer) Center(ctx context.Context) *fail.Failure {
	facing, err := space.FacingFromYaw(s.sensor.Yaw())
	if err != nil {
		return fail.New(fail.ErrNotAxisAligned, "cannot center: %v", err)
	}

	off := Offset(s.sensor.Position(), facing)
	if math.Abs(off) <= s.cfg.CenterTrigger {
		return nil
	}

	for attempt := 0; attempt < s.cfg.MaxStrafeAttempts; attempt++ {
		if ctx.Err() != nil {
			return fail.New(fail.ErrCenteringFailed, "canceled: %v", ctx.Err())
		}
		ctrl := strafeControl(facing, off)
		if err := s.act.SetControl(ctrl, true); err != nil {
			return fail.New(fail.ErrCenteringFailed, "strafe %s: %v", ctrl, err)
		}
		s.sleep(s.cfg.StrafePulse())
		if err := s.act.SetControl(ctrl, false); err != nil {
			return fail.New(fail.ErrCenteringFailed, "strafe %s: %v", ctrl, err)
		}

		off = Offset(s.sensor.Position(), facing)
		if math.Abs(off) <= s.cfg.CenterAccept {
			return nil
		}
	}
	return fail.New(fail.ErrCenteringFailed, "offset %.2f after %d strafe pulses", off, s.cfg.MaxStrafeAttempts)
}
