package fail

import "fmt"

// Failure codes. Step strategies and mining helpers return these as values;
// the step controller joins them into an ordered narrative, it never panics
// on them.
const (
	// Target geometry / allow-list refusals.
	ErrUnreachable    = "E_UNREACHABLE"
	ErrNotAxisAligned = "E_NOT_AXIS_ALIGNED"

	// Tooling.
	ErrMissingTool = "E_MISSING_TOOL"
	ErrNotDiggable = "E_NOT_DIGGABLE"

	// Excavation watchdog.
	ErrDigNeverStarted = "E_DIG_NEVER_STARTED"
	ErrDigTooSlow      = "E_DIG_TOO_SLOW"
	ErrDigTimeout      = "E_DIG_TIMEOUT"
	ErrDigAborted      = "E_DIG_ABORTED"

	// Vertical strategies.
	ErrPillarBlocked    = "E_PILLAR_BLOCKED"
	ErrPillarNoMaterial = "E_PILLAR_NO_MATERIAL"
	ErrUnsafeDigDown    = "E_UNSAFE_DIG_DOWN"

	// Alignment.
	ErrCenteringFailed = "E_CENTERING_FAILED"

	// Strategy not applicable in the current block situation.
	ErrBlocked = "E_BLOCKED"

	// Step level: every applicable strategy was exhausted.
	ErrNoProgress = "E_NO_PROGRESS"
)

var knownCodes = map[string]struct{}{
	ErrUnreachable:      {},
	ErrNotAxisAligned:   {},
	ErrMissingTool:      {},
	ErrNotDiggable:      {},
	ErrDigNeverStarted:  {},
	ErrDigTooSlow:       {},
	ErrDigTimeout:       {},
	ErrDigAborted:       {},
	ErrPillarBlocked:    {},
	ErrPillarNoMaterial: {},
	ErrUnsafeDigDown:    {},
	ErrCenteringFailed:  {},
	ErrBlocked:          {},
	ErrNoProgress:       {},
}

func IsKnownCode(code string) bool {
	_, ok := knownCodes[code]
	return ok
}

// Failure is a value-level domain error. The block context fields are a
// diagnostic contract for mining failures: block name, cell, held item and
// distance must survive to the caller.
type Failure struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	Block    string  `json:"block,omitempty"`
	BlockX   int     `json:"block_x,omitempty"`
	BlockY   int     `json:"block_y,omitempty"`
	BlockZ   int     `json:"block_z,omitempty"`
	Held     string  `json:"held,omitempty"`
	Distance float64 `json:"distance,omitempty"`
}

func New(code, format string, args ...any) *Failure {
	return &Failure{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithBlockContext attaches the mining diagnostic payload.
func (f *Failure) WithBlockContext(block string, x, y, z int, held string, distance float64) *Failure {
	f.Block = block
	f.BlockX, f.BlockY, f.BlockZ = x, y, z
	f.Held = held
	f.Distance = distance
	return f
}

func (f *Failure) Error() string {
	if f == nil {
		return "<nil>"
	}
	if f.Block != "" {
		return fmt.Sprintf("%s: %s [block=%s at (%d,%d,%d) held=%s dist=%.2f]",
			f.Code, f.Message, f.Block, f.BlockX, f.BlockY, f.BlockZ, heldOrHand(f.Held), f.Distance)
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

func heldOrHand(held string) string {
	if held == "" {
		return "hand"
	}
	return held
}
