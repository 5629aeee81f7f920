package obstacle_test

import (
	"testing"

	"voxelpilot.ai/internal/pilot/obstacle"
	"voxelpilot.ai/internal/pilot/pilottest"
	"voxelpilot.ai/internal/pilot/space"
	"voxelpilot.ai/internal/pilot/world"
)

func TestIsPassable(t *testing.T) {
	cases := []struct {
		name  string
		block *world.Block
		want  bool
	}{
		{"nil cell", nil, true},
		{"air", &world.Block{Name: "air"}, true},
		{"cave air", &world.Block{Name: "cave_air"}, true},
		{"void air", &world.Block{Name: "void_air"}, true},
		{"water", &world.Block{Name: "water"}, true},
		{"lava", &world.Block{Name: "lava"}, true},
		{"flora without box", &world.Block{Name: "tall_grass", Empty: true}, true},
		{"stone", &world.Block{Name: "stone"}, false},
		{"dirt", &world.Block{Name: "dirt"}, false},
	}
	for _, tc := range cases {
		if got := obstacle.IsPassable(tc.block); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestAhead(t *testing.T) {
	w := pilottest.NewWorld()
	w.SetBlock(1, 64, 0, "stone")
	// head cell (1,65,0) left empty

	v := obstacle.Ahead(w, space.Pos{X: 0.5, Y: 64, Z: 0.5}, space.East)
	if v.Feet == nil || v.Feet.Name != "stone" {
		t.Fatalf("feet block: got %v want stone", v.Feet)
	}
	if v.FeetPassable {
		t.Fatal("stone at feet should not be passable")
	}
	if v.Head != nil || !v.HeadPassable {
		t.Fatalf("head cell should be empty and passable, got %v", v.Head)
	}
}
