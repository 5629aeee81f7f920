package tuning

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Tuning holds the empirically tuned movement constants. The defaults are
// the values the engine was calibrated with; a yaml file can override any
// subset of them.
type Tuning struct {
	WalkPulseMs   int `yaml:"walk_pulse_ms"`
	JumpPulseMs   int `yaml:"jump_pulse_ms"`
	StrafePulseMs int `yaml:"strafe_pulse_ms"`

	DigPollMs       int `yaml:"dig_poll_ms"`
	DigStartGraceMs int `yaml:"dig_start_grace_ms"`
	DigIdleGraceMs  int `yaml:"dig_idle_grace_ms"`

	JumpMinProgress float64 `yaml:"jump_min_progress"`
	CenterTrigger   float64 `yaml:"center_trigger"`
	CenterAccept    float64 `yaml:"center_accept"`

	MaxStrafeAttempts int `yaml:"max_strafe_attempts"`

	AirbornePollMs int `yaml:"airborne_poll_ms"`
	AirborneWaitMs int `yaml:"airborne_wait_ms"`

	PillarClearanceCells int `yaml:"pillar_clearance_cells"`

	ArriveRadius float64 `yaml:"arrive_radius"`
}

func Default() Tuning {
	return Tuning{
		WalkPulseMs:   200,
		JumpPulseMs:   350,
		StrafePulseMs: 50,

		DigPollMs:       500,
		DigStartGraceMs: 3000,
		DigIdleGraceMs:  2000,

		JumpMinProgress: 0.3,
		CenterTrigger:   0.1,
		CenterAccept:    0.2,

		MaxStrafeAttempts: 3,

		AirbornePollMs: 25,
		AirborneWaitMs: 600,

		PillarClearanceCells: 3,

		ArriveRadius: 1.4,
	}
}

// Load reads a yaml override file on top of the defaults.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) WalkPulse() time.Duration   { return time.Duration(t.WalkPulseMs) * time.Millisecond }
func (t Tuning) JumpPulse() time.Duration   { return time.Duration(t.JumpPulseMs) * time.Millisecond }
func (t Tuning) StrafePulse() time.Duration { return time.Duration(t.StrafePulseMs) * time.Millisecond }

func (t Tuning) DigPoll() time.Duration { return time.Duration(t.DigPollMs) * time.Millisecond }
func (t Tuning) DigStartGrace() time.Duration {
	return time.Duration(t.DigStartGraceMs) * time.Millisecond
}
func (t Tuning) DigIdleGrace() time.Duration {
	return time.Duration(t.DigIdleGraceMs) * time.Millisecond
}

func (t Tuning) AirbornePoll() time.Duration {
	return time.Duration(t.AirbornePollMs) * time.Millisecond
}
func (t Tuning) AirborneWait() time.Duration {
	return time.Duration(t.AirborneWaitMs) * time.Millisecond
}
