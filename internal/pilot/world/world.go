// Package world defines the sensing/actuation boundary the step engine
// drives. Implementations live elsewhere (the websocket client, the test
// fake); the engine only ever sees these interfaces.
package world

import (
	"context"

	"voxelpilot.ai/internal/pilot/space"
)

// Block is a read-only snapshot of one cell, returned by Sensor queries.
// The engine never mutates it.
type Block struct {
	Name string
	Pos  space.BlockPos

	// Empty marks a block with no collision box (flora and the like).
	Empty bool
}

type Item struct {
	Name  string
	Count int
	Slot  int
}

type Entity struct {
	Name string
	Pos  space.Pos
}

// Control names for SetControl.
type Control string

const (
	ControlForward Control = "forward"
	ControlJump    Control = "jump"
	ControlLeft    Control = "left"
	ControlRight   Control = "right"
)

// Sensor exposes the world as the agent currently observes it. Reads are
// cheap; the engine re-reads position each call and never caches across
// steps.
type Sensor interface {
	BlockAt(pos space.BlockPos) *Block
	NearestEntity(match func(Entity) bool) *Entity
	Items() []Item
	HeldItem() *Item
	Position() space.Pos
	Yaw() float64
}

// Actuator issues physical actions. Methods taking a context block until the
// underlying action settles; DigStart is the one deliberately asynchronous
// call, its channel resolves when the break completes or is aborted.
type Actuator interface {
	SetControl(c Control, on bool) error
	LookAt(ctx context.Context, target space.Pos, immediate bool) error
	Equip(ctx context.Context, itemName string) error
	Unequip(ctx context.Context) error
	PlaceBlock(ctx context.Context, ref *Block, face space.BlockPos) error

	DigStart(b *Block) <-chan error
	DigAbort()
	CanDig(b *Block) bool
	CurrentlyBreaking() *Block
}
