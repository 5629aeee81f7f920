package space

import (
	"fmt"
	"math"
)

// Pos is a continuous world position with sub-block precision.
type Pos struct {
	X float64
	Y float64
	Z float64
}

// BlockPos is an integer cell coordinate (the floor of a Pos).
type BlockPos struct {
	X int
	Y int
	Z int
}

// Dir is an axis-aligned horizontal unit direction: exactly one of X/Z is
// nonzero, Y is always zero.
type Dir struct {
	X int
	Z int
}

var (
	East  = Dir{X: 1}
	West  = Dir{X: -1}
	South = Dir{Z: 1}
	North = Dir{Z: -1}
)

func (p Pos) Floor() BlockPos {
	return BlockPos{
		X: int(math.Floor(p.X)),
		Y: int(math.Floor(p.Y)),
		Z: int(math.Floor(p.Z)),
	}
}

func (p Pos) Add(dx, dy, dz float64) Pos {
	return Pos{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
}

func (p Pos) DistanceTo(q Pos) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	dz := p.Z - q.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// DistanceXZ ignores the vertical axis.
func (p Pos) DistanceXZ(q Pos) float64 {
	dx := p.X - q.X
	dz := p.Z - q.Z
	return math.Sqrt(dx*dx + dz*dz)
}

func (p Pos) String() string {
	return fmt.Sprintf("(%.2f,%.2f,%.2f)", p.X, p.Y, p.Z)
}

func (b BlockPos) Offset(dx, dy, dz int) BlockPos {
	return BlockPos{X: b.X + dx, Y: b.Y + dy, Z: b.Z + dz}
}

func (b BlockPos) Step(d Dir) BlockPos {
	return BlockPos{X: b.X + d.X, Y: b.Y, Z: b.Z + d.Z}
}

// Center is the middle of the cell, used as a look/placement target.
func (b BlockPos) Center() Pos {
	return Pos{X: float64(b.X) + 0.5, Y: float64(b.Y) + 0.5, Z: float64(b.Z) + 0.5}
}

func (b BlockPos) ToPos() Pos {
	return Pos{X: float64(b.X), Y: float64(b.Y), Z: float64(b.Z)}
}

func (b BlockPos) String() string {
	return fmt.Sprintf("(%d,%d,%d)", b.X, b.Y, b.Z)
}

func (d Dir) IsZero() bool { return d.X == 0 && d.Z == 0 }

func (d Dir) String() string {
	switch d {
	case East:
		return "+x"
	case West:
		return "-x"
	case South:
		return "+z"
	case North:
		return "-z"
	}
	return fmt.Sprintf("(%d,%d)", d.X, d.Z)
}

// Left is the horizontal direction 90 degrees to the left of d
// (facing south/+z, left is east/+x).
func (d Dir) Left() Dir { return Dir{X: d.Z, Z: -d.X} }

// Right is the horizontal direction 90 degrees to the right of d.
func (d Dir) Right() Dir { return Dir{X: -d.Z, Z: d.X} }

// NextDirection picks the axis-aligned unit direction from cur toward target:
// the axis with the strictly larger |delta| wins, ties go to the z axis, and
// the sign follows the delta.
func NextDirection(cur, target Pos) Dir {
	dx := target.X - cur.X
	dz := target.Z - cur.Z
	if math.Abs(dx) > math.Abs(dz) {
		if dx > 0 {
			return East
		}
		return West
	}
	if dz >= 0 {
		return South
	}
	return North
}

// maxFacingDeviationDeg bounds how far off a cardinal the yaw may be before
// we refuse to call it a facing.
const maxFacingDeviationDeg = 1.0

// FacingFromYaw maps a yaw in radians to the nearest cardinal direction.
// Yaw follows the usual convention: 0 faces +z, increasing clockwise viewed
// from above (90 degrees faces -x). Fails when the yaw deviates from the
// nearest cardinal by more than one degree.
func FacingFromYaw(yaw float64) (Dir, error) {
	norm := math.Mod(yaw, 2*math.Pi)
	if norm < 0 {
		norm += 2 * math.Pi
	}
	deg := norm * 180 / math.Pi
	quarter := math.Round(deg/90) * 90
	if math.Abs(deg-quarter) > maxFacingDeviationDeg {
		return Dir{}, fmt.Errorf("yaw %.1f deg is not axis aligned", deg)
	}
	switch int(quarter) % 360 {
	case 0:
		return South, nil
	case 90:
		return West, nil
	case 180:
		return North, nil
	case 270:
		return East, nil
	}
	return Dir{}, fmt.Errorf("yaw %.1f deg is not axis aligned", deg)
}

// YawFor is the inverse of FacingFromYaw for exact cardinals.
func YawFor(d Dir) float64 {
	return math.Atan2(float64(-d.X), float64(d.Z))
}
