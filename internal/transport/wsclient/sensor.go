package wsclient

import (
	"voxelpilot.ai/internal/pilot/space"
	"voxelpilot.ai/internal/pilot/world"
	"voxelpilot.ai/internal/protocol"
)

// Sensor reads answer from the latest cached OBS, except BlockAt and CanDig
// which round-trip a QUERY so the engine always sees the current cell.

func (c *Client) Position() space.Pos {
	obs, _ := c.snapshot()
	return space.Pos{X: obs.Self.Pos[0], Y: obs.Self.Pos[1], Z: obs.Self.Pos[2]}
}

func (c *Client) Yaw() float64 {
	obs, _ := c.snapshot()
	return obs.Self.Yaw
}

func (c *Client) Items() []world.Item {
	obs, ok := c.snapshot()
	if !ok {
		return nil
	}
	items := make([]world.Item, 0, len(obs.Inventory))
	for _, s := range obs.Inventory {
		items = append(items, world.Item{Name: s.Item, Count: s.Count, Slot: s.Slot})
	}
	return items
}

func (c *Client) HeldItem() *world.Item {
	obs, ok := c.snapshot()
	if !ok || obs.Self.Held == "" {
		return nil
	}
	for _, s := range obs.Inventory {
		if s.Item == obs.Self.Held {
			return &world.Item{Name: s.Item, Count: s.Count, Slot: s.Slot}
		}
	}
	return &world.Item{Name: obs.Self.Held, Count: 1}
}

func (c *Client) NearestEntity(match func(world.Entity) bool) *world.Entity {
	obs, ok := c.snapshot()
	if !ok {
		return nil
	}
	self := space.Pos{X: obs.Self.Pos[0], Y: obs.Self.Pos[1], Z: obs.Self.Pos[2]}

	var best *world.Entity
	bestDist := 0.0
	for _, e := range obs.Entities {
		ent := world.Entity{Name: e.Name, Pos: space.Pos{X: e.Pos[0], Y: e.Pos[1], Z: e.Pos[2]}}
		if !match(ent) {
			continue
		}
		d := self.DistanceTo(ent.Pos)
		if best == nil || d < bestDist {
			ent := ent
			best = &ent
			bestDist = d
		}
	}
	return best
}

func (c *Client) BlockAt(pos space.BlockPos) *world.Block {
	blk, err := c.query(protocol.QueryBlockAt, [3]int{pos.X, pos.Y, pos.Z})
	if err != nil {
		c.log.Printf("block_at (%d,%d,%d): %v", pos.X, pos.Y, pos.Z, err)
		return nil
	}
	return toBlock(blk.Block)
}

func toBlock(b *protocol.BlockState) *world.Block {
	if b == nil {
		return nil
	}
	return &world.Block{
		Name:  b.Name,
		Pos:   space.BlockPos{X: b.Pos[0], Y: b.Pos[1], Z: b.Pos[2]},
		Empty: b.Empty,
	}
}
