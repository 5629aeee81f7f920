// Package catalogs holds the static block/tool domain tables. The family
// membership lists are ground truth carried over from the dig calibration
// runs; they are data, not matching logic.
package catalogs

type ToolFamily int

const (
	FamilyNone ToolFamily = iota
	FamilyShovel
	FamilyPickaxe
	FamilyAxe
)

func (f ToolFamily) String() string {
	switch f {
	case FamilyShovel:
		return "shovel"
	case FamilyPickaxe:
		return "pickaxe"
	case FamilyAxe:
		return "axe"
	}
	return "none"
}

// ShovelBlocks are soil-type blocks best broken with a shovel.
var ShovelBlocks = []string{
	"dirt",
	"grass_block",
	"coarse_dirt",
	"rooted_dirt",
	"dirt_path",
	"farmland",
	"podzol",
	"mycelium",
	"mud",
	"muddy_mangrove_roots",
	"sand",
	"red_sand",
	"gravel",
	"clay",
	"soul_sand",
	"soul_soil",
	"snow",
	"snow_block",
	"powder_snow",
}

// PickaxeBlocks are stone-type blocks best broken with a pickaxe.
var PickaxeBlocks = []string{
	"stone",
	"cobblestone",
	"mossy_cobblestone",
	"stone_bricks",
	"granite",
	"diorite",
	"andesite",
	"deepslate",
	"cobbled_deepslate",
	"deepslate_bricks",
	"tuff",
	"calcite",
	"dripstone_block",
	"sandstone",
	"red_sandstone",
	"netherrack",
	"basalt",
	"blackstone",
	"end_stone",
	"obsidian",
	"terracotta",
	"coal_ore",
	"deepslate_coal_ore",
	"copper_ore",
	"deepslate_copper_ore",
	"iron_ore",
	"deepslate_iron_ore",
	"gold_ore",
	"deepslate_gold_ore",
	"redstone_ore",
	"deepslate_redstone_ore",
	"lapis_ore",
	"deepslate_lapis_ore",
	"diamond_ore",
	"deepslate_diamond_ore",
	"emerald_ore",
	"deepslate_emerald_ore",
	"nether_quartz_ore",
	"nether_gold_ore",
	"ancient_debris",
}

// AxeBlocks are wood-type blocks best broken with an axe.
var AxeBlocks = []string{
	"oak_log",
	"spruce_log",
	"birch_log",
	"jungle_log",
	"acacia_log",
	"dark_oak_log",
	"mangrove_log",
	"cherry_log",
	"crimson_stem",
	"warped_stem",
	"oak_wood",
	"spruce_wood",
	"birch_wood",
	"jungle_wood",
	"acacia_wood",
	"dark_oak_wood",
	"oak_planks",
	"spruce_planks",
	"birch_planks",
	"jungle_planks",
	"acacia_planks",
	"dark_oak_planks",
	"mangrove_planks",
	"cherry_planks",
	"crimson_planks",
	"warped_planks",
	"bookshelf",
	"crafting_table",
	"barrel",
	"chest",
	"ladder",
	"fence",
	"campfire",
}

var familyByBlock map[string]ToolFamily

func init() {
	familyByBlock = make(map[string]ToolFamily, len(ShovelBlocks)+len(PickaxeBlocks)+len(AxeBlocks))
	for _, n := range ShovelBlocks {
		familyByBlock[n] = FamilyShovel
	}
	for _, n := range PickaxeBlocks {
		familyByBlock[n] = FamilyPickaxe
	}
	for _, n := range AxeBlocks {
		familyByBlock[n] = FamilyAxe
	}
}

// FamilyForBlock classifies a block name into the tool family that mines it,
// or FamilyNone for blocks outside the three tables (hand-diggable or
// unbreakable either way).
func FamilyForBlock(blockName string) ToolFamily {
	return familyByBlock[blockName]
}

// Tool tiers, worst to best. Item names follow the usual
// "<tier>_<family>" shape ("iron_pickaxe", "wooden_shovel").
var tierByPrefix = map[string]int{
	"wooden":    1,
	"stone":     2,
	"iron":      3,
	"golden":    4,
	"diamond":   5,
	"netherite": 6,
}

// ToolTier returns the tier of an item name for the given family, or 0 when
// the item is not a tool of that family.
func ToolTier(itemName string, family ToolFamily) int {
	suffix := "_" + family.String()
	if len(itemName) <= len(suffix) || itemName[len(itemName)-len(suffix):] != suffix {
		return 0
	}
	return tierByPrefix[itemName[:len(itemName)-len(suffix)]]
}

// PassableBlocks are cell contents the agent's body may occupy.
var PassableBlocks = []string{
	"air",
	"cave_air",
	"void_air",
	"water",
	"lava",
}

var passableByName map[string]struct{}

func init() {
	passableByName = make(map[string]struct{}, len(PassableBlocks))
	for _, n := range PassableBlocks {
		passableByName[n] = struct{}{}
	}
}

func IsPassableName(blockName string) bool {
	_, ok := passableByName[blockName]
	return ok
}
