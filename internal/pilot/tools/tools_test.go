package tools_test

import (
	"testing"

	"voxelpilot.ai/internal/pilot/fail"
	"voxelpilot.ai/internal/pilot/tools"
	"voxelpilot.ai/internal/pilot/world"
)

func TestResolve_HandSentinelSkipsInventory(t *testing.T) {
	rules := []tools.Rule{{Tool: tools.Hand, Blocks: []string{"dirt"}}}
	// nil inventory: the hand sentinel must never consult it.
	choice, f := tools.Resolve("dirt", rules, nil)
	if f != nil {
		t.Fatalf("resolve: %v", f)
	}
	if choice.Item != nil {
		t.Fatalf("hand sentinel resolved to %v", choice.Item)
	}
}

func TestResolve_MissingTool(t *testing.T) {
	rules := []tools.Rule{{Tool: "iron_pickaxe", Blocks: []string{"stone"}}}
	_, f := tools.Resolve("stone", rules, nil)
	if f == nil || f.Code != fail.ErrMissingTool {
		t.Fatalf("got %v want %s", f, fail.ErrMissingTool)
	}
}

func TestResolve_UncoveredBlockIsRefused(t *testing.T) {
	rules := []tools.Rule{{Tool: "iron_pickaxe", Blocks: []string{"stone"}}}
	inv := []world.Item{{Name: "iron_shovel", Count: 1}}
	// A non-empty allow-list is exhaustive: no auto-fallback for dirt.
	_, f := tools.Resolve("dirt", rules, inv)
	if f == nil || f.Code != fail.ErrUnreachable {
		t.Fatalf("got %v want %s", f, fail.ErrUnreachable)
	}
}

func TestResolve_FirstRuleWins(t *testing.T) {
	rules := []tools.Rule{
		{Tool: tools.Hand, Blocks: []string{"stone"}},
		{Tool: "iron_pickaxe", Blocks: []string{"stone"}},
	}
	inv := []world.Item{{Name: "iron_pickaxe", Count: 1}}
	choice, f := tools.Resolve("stone", rules, inv)
	if f != nil {
		t.Fatalf("resolve: %v", f)
	}
	if choice.Item != nil {
		t.Fatalf("first rule is hand, got %v", choice.Item)
	}
}

func TestResolve_AutoSelectBestTier(t *testing.T) {
	inv := []world.Item{
		{Name: "wooden_pickaxe", Count: 1},
		{Name: "diamond_shovel", Count: 1},
		{Name: "iron_pickaxe", Count: 1},
		{Name: "stone_pickaxe", Count: 1},
	}
	choice, f := tools.Resolve("stone", nil, inv)
	if f != nil {
		t.Fatalf("resolve: %v", f)
	}
	if choice.Item == nil || choice.Item.Name != "iron_pickaxe" {
		t.Fatalf("got %v want iron_pickaxe", choice.Item)
	}
}

func TestResolve_AutoSelectTierOrdering(t *testing.T) {
	// gold outranks iron in the tier ordering even though it digs worse in
	// other respects; the ranking is fixed.
	inv := []world.Item{
		{Name: "iron_axe", Count: 1},
		{Name: "golden_axe", Count: 1},
	}
	choice, f := tools.Resolve("oak_log", nil, inv)
	if f != nil {
		t.Fatalf("resolve: %v", f)
	}
	if choice.Item == nil || choice.Item.Name != "golden_axe" {
		t.Fatalf("got %v want golden_axe", choice.Item)
	}
}

func TestResolve_AutoSelectShovelFamily(t *testing.T) {
	inv := []world.Item{
		{Name: "netherite_pickaxe", Count: 1},
		{Name: "wooden_shovel", Count: 1},
	}
	choice, f := tools.Resolve("gravel", nil, inv)
	if f != nil {
		t.Fatalf("resolve: %v", f)
	}
	if choice.Item == nil || choice.Item.Name != "wooden_shovel" {
		t.Fatalf("got %v want wooden_shovel", choice.Item)
	}
}

func TestResolve_AutoSelectNoCandidateMeansHand(t *testing.T) {
	choice, f := tools.Resolve("stone", nil, []world.Item{{Name: "bread", Count: 3}})
	if f != nil {
		t.Fatalf("resolve: %v", f)
	}
	if choice.Item != nil {
		t.Fatalf("got %v want bare hands", choice.Item)
	}
}

func TestResolve_UnknownBlockAutoSelectsHand(t *testing.T) {
	inv := []world.Item{{Name: "iron_pickaxe", Count: 1}}
	choice, f := tools.Resolve("sponge", nil, inv)
	if f != nil {
		t.Fatalf("resolve: %v", f)
	}
	if choice.Item != nil {
		t.Fatalf("block outside family tables should resolve to hands, got %v", choice.Item)
	}
}
