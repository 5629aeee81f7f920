// Package obstacle classifies the cells around the agent as passable or not.
package obstacle

import (
	"voxelpilot.ai/internal/pilot/catalogs"
	"voxelpilot.ai/internal/pilot/space"
	"voxelpilot.ai/internal/pilot/world"
)

// IsPassable reports whether the agent's body may occupy the cell: unloaded
// (nil), air variants, liquids, or anything without a collision box.
func IsPassable(b *world.Block) bool {
	if b == nil {
		return true
	}
	if catalogs.IsPassableName(b.Name) {
		return true
	}
	return b.Empty
}

// View is the pair of cells directly ahead of the agent: feet height and
// head height.
type View struct {
	Feet *world.Block
	Head *world.Block

	FeetPassable bool
	HeadPassable bool
}

// Ahead samples the two cells one step along dir from pos.
func Ahead(s world.Sensor, pos space.Pos, dir space.Dir) View {
	feetCell := pos.Floor().Step(dir)
	headCell := feetCell.Offset(0, 1, 0)

	v := View{
		Feet: s.BlockAt(feetCell),
		Head: s.BlockAt(headCell),
	}
	v.FeetPassable = IsPassable(v.Feet)
	v.HeadPassable = IsPassable(v.Head)
	return v
}

// Name renders a block for diagnostics; nil cells read as air.
func Name(b *world.Block) string {
	if b == nil {
		return "air"
	}
	return b.Name
}
