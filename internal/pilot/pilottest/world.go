// Package pilottest provides an in-memory world fake implementing the
// Sensor and Actuator interfaces, with simple deterministic kinematics:
// movement happens when a control pulse is released.
package pilottest

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"voxelpilot.ai/internal/pilot/catalogs"
	"voxelpilot.ai/internal/pilot/space"
	"voxelpilot.ai/internal/pilot/world"
)

type World struct {
	mu sync.Mutex

	Blocks map[space.BlockPos]string
	// NoBox marks block names without a collision box (flora).
	NoBox map[string]bool

	AgentPos space.Pos
	AgentYaw float64
	Inv      []world.Item
	Held     *world.Item
	Entities []world.Entity

	// Kinematics per released pulse.
	WalkAdvance   float64
	StrafeAdvance float64

	// Dig behavior. DigStartFn/BreakingFn override the default script.
	DigTime    time.Duration
	DigStartFn func(*world.Block) <-chan error
	BreakingFn func() *world.Block
	Undiggable map[string]bool
	EquipErr   error

	// BreakingCalls counts CurrentlyBreaking polls; monitor tests assert it
	// stops growing after Watch returns.
	BreakingCalls int

	controls map[world.Control]bool
	airborne bool
	breaking *world.Block
	digTimer *time.Timer
}

func NewWorld() *World {
	return &World{
		Blocks:        make(map[space.BlockPos]string),
		NoBox:         make(map[string]bool),
		Undiggable:    make(map[string]bool),
		controls:      make(map[world.Control]bool),
		WalkAdvance:   1.0,
		StrafeAdvance: 0.25,
	}
}

func (w *World) SetBlock(x, y, z int, name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Blocks[space.BlockPos{X: x, Y: y, Z: z}] = name
}

// Fill sets a cuboid of blocks, inclusive on both corners.
func (w *World) Fill(x1, y1, z1, x2, y2, z2 int, name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for x := x1; x <= x2; x++ {
		for y := y1; y <= y2; y++ {
			for z := z1; z <= z2; z++ {
				w.Blocks[space.BlockPos{X: x, Y: y, Z: z}] = name
			}
		}
	}
}

func (w *World) Give(name string, count int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.Inv {
		if w.Inv[i].Name == name {
			w.Inv[i].Count += count
			return
		}
	}
	w.Inv = append(w.Inv, world.Item{Name: name, Count: count, Slot: len(w.Inv)})
}

// Sensor.

func (w *World) BlockAt(pos space.BlockPos) *world.Block {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.blockAtLocked(pos)
}

func (w *World) blockAtLocked(pos space.BlockPos) *world.Block {
	name, ok := w.Blocks[pos]
	if !ok {
		return nil
	}
	return &world.Block{Name: name, Pos: pos, Empty: w.NoBox[name]}
}

func (w *World) NearestEntity(match func(world.Entity) bool) *world.Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	var best *world.Entity
	bestDist := math.MaxFloat64
	for i := range w.Entities {
		if !match(w.Entities[i]) {
			continue
		}
		if d := w.AgentPos.DistanceTo(w.Entities[i].Pos); d < bestDist {
			bestDist = d
			best = &w.Entities[i]
		}
	}
	return best
}

func (w *World) Items() []world.Item {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]world.Item, len(w.Inv))
	copy(out, w.Inv)
	return out
}

func (w *World) HeldItem() *world.Item {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Held == nil {
		return nil
	}
	cp := *w.Held
	return &cp
}

func (w *World) Position() space.Pos {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.AgentPos
}

func (w *World) Yaw() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.AgentYaw
}

// Actuator.

func (w *World) SetControl(c world.Control, on bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	was := w.controls[c]
	w.controls[c] = on

	switch {
	case c == world.ControlJump && on && !was:
		w.airborne = true
		w.AgentPos.Y += 1.2
	case c == world.ControlJump && !on && was:
		w.airborne = false
		w.landLocked()
	case c == world.ControlForward && !on && was:
		w.forwardLocked()
	case (c == world.ControlLeft || c == world.ControlRight) && !on && was:
		w.strafeLocked(c)
	}
	return nil
}

func (w *World) forwardLocked() {
	dir, err := space.FacingFromYaw(w.AgentYaw)
	if err != nil {
		return
	}
	base := w.AgentPos.Floor()
	if w.airborne {
		// Mid-jump: advance if the cell at the elevated foot level is clear.
		foot := base.Step(dir)
		if w.passableLocked(foot) && w.passableLocked(foot.Offset(0, 1, 0)) {
			w.AgentPos.X += float64(dir.X) * w.WalkAdvance
			w.AgentPos.Z += float64(dir.Z) * w.WalkAdvance
		}
		return
	}
	feet := base.Step(dir)
	head := feet.Offset(0, 1, 0)
	if w.passableLocked(feet) && w.passableLocked(head) {
		w.AgentPos.X += float64(dir.X) * w.WalkAdvance
		w.AgentPos.Z += float64(dir.Z) * w.WalkAdvance
	}
}

func (w *World) strafeLocked(c world.Control) {
	dir, err := space.FacingFromYaw(w.AgentYaw)
	if err != nil {
		return
	}
	side := dir.Left()
	if c == world.ControlRight {
		side = dir.Right()
	}
	w.AgentPos.X += float64(side.X) * w.StrafeAdvance
	w.AgentPos.Z += float64(side.Z) * w.StrafeAdvance
}

// landLocked drops the agent onto the first solid block below.
func (w *World) landLocked() {
	cell := w.AgentPos.Floor()
	for y := cell.Y - 1; y >= cell.Y-64; y-- {
		probe := space.BlockPos{X: cell.X, Y: y, Z: cell.Z}
		if !w.passableLocked(probe) {
			w.AgentPos.Y = float64(y + 1)
			return
		}
	}
}

func (w *World) passableLocked(pos space.BlockPos) bool {
	name, ok := w.Blocks[pos]
	if !ok {
		return true
	}
	if catalogs.IsPassableName(name) {
		return true
	}
	return w.NoBox[name]
}

func (w *World) LookAt(ctx context.Context, target space.Pos, immediate bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	dx := target.X - w.AgentPos.X
	dz := target.Z - w.AgentPos.Z
	if math.Abs(dx) < 1e-9 && math.Abs(dz) < 1e-9 {
		return nil // straight up/down keeps the current yaw
	}
	w.AgentYaw = math.Atan2(-dx, dz)
	return nil
}

func (w *World) Equip(ctx context.Context, itemName string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.EquipErr != nil {
		return w.EquipErr
	}
	for i := range w.Inv {
		if w.Inv[i].Name == itemName && w.Inv[i].Count > 0 {
			cp := w.Inv[i]
			w.Held = &cp
			return nil
		}
	}
	return fmt.Errorf("no %q in inventory", itemName)
}

func (w *World) Unequip(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Held = nil
	return nil
}

func (w *World) PlaceBlock(ctx context.Context, ref *world.Block, face space.BlockPos) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ref == nil {
		return fmt.Errorf("nil reference block")
	}
	if w.Held == nil {
		return fmt.Errorf("nothing held to place")
	}
	cell := ref.Pos.Offset(face.X, face.Y, face.Z)
	if _, occupied := w.Blocks[cell]; occupied {
		return fmt.Errorf("cell %s occupied", cell)
	}
	w.Blocks[cell] = w.Held.Name
	for i := range w.Inv {
		if w.Inv[i].Name == w.Held.Name {
			w.Inv[i].Count--
			if w.Inv[i].Count <= 0 {
				w.Held = nil
			}
			break
		}
	}
	return nil
}

func (w *World) DigStart(b *world.Block) <-chan error {
	if w.DigStartFn != nil {
		return w.DigStartFn(b)
	}
	ch := make(chan error, 1)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.DigTime <= 0 {
		delete(w.Blocks, b.Pos)
		ch <- nil
		return ch
	}
	w.breaking = b
	w.digTimer = time.AfterFunc(w.DigTime, func() {
		w.mu.Lock()
		delete(w.Blocks, b.Pos)
		w.breaking = nil
		w.mu.Unlock()
		ch <- nil
	})
	return ch
}

func (w *World) DigAbort() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.digTimer != nil {
		w.digTimer.Stop()
		w.digTimer = nil
	}
	w.breaking = nil
}

func (w *World) CanDig(b *world.Block) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return b != nil && !w.Undiggable[b.Name]
}

func (w *World) CurrentlyBreaking() *world.Block {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.BreakingCalls++
	if w.BreakingFn != nil {
		return w.BreakingFn()
	}
	return w.breaking
}

// PollCount is BreakingCalls under the lock, for assertions.
func (w *World) PollCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.BreakingCalls
}
