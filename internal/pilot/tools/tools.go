// Package tools resolves which tool to hold before breaking a block.
package tools

import (
	"voxelpilot.ai/internal/pilot/catalogs"
	"voxelpilot.ai/internal/pilot/fail"
	"voxelpilot.ai/internal/pilot/world"
)

// Hand is the sentinel tool name meaning "mine bare-handed".
const Hand = "hand"

// Rule maps one tool name to the blocks it is allowed to break. Rules are
// ordered: the first rule covering a block wins.
type Rule struct {
	Tool   string   `json:"tool" yaml:"tool"`
	Blocks []string `json:"blocks" yaml:"blocks"`
}

func (r Rule) covers(blockName string) bool {
	for _, b := range r.Blocks {
		if b == blockName {
			return true
		}
	}
	return false
}

// Choice is the resolved equipment decision. Item nil means bare hands.
type Choice struct {
	Item *world.Item
}

// Resolve picks the tool for blockName.
//
// A non-empty rule list is an exhaustive allow-list: a block no rule covers
// is a refusal, never a fallback to auto-selection. An empty rule list
// auto-selects by family tables and tier ranking.
func Resolve(blockName string, rules []Rule, items []world.Item) (Choice, *fail.Failure) {
	for _, r := range rules {
		if !r.covers(blockName) {
			continue
		}
		if r.Tool == Hand {
			return Choice{}, nil
		}
		for i := range items {
			if items[i].Name == r.Tool && items[i].Count > 0 {
				return Choice{Item: &items[i]}, nil
			}
		}
		return Choice{}, fail.New(fail.ErrMissingTool, "allow-list requires %q for %q but inventory has none", r.Tool, blockName)
	}
	if len(rules) > 0 {
		return Choice{}, fail.New(fail.ErrUnreachable, "block %q not covered by tool allow-list", blockName)
	}
	return autoSelect(blockName, items), nil
}

// autoSelect ranks inventory tools of the block's family by tier and takes
// the best; no candidate means bare hands.
func autoSelect(blockName string, items []world.Item) Choice {
	family := catalogs.FamilyForBlock(blockName)
	if family == catalogs.FamilyNone {
		return Choice{}
	}
	best := -1
	bestTier := 0
	for i := range items {
		if items[i].Count <= 0 {
			continue
		}
		tier := catalogs.ToolTier(items[i].Name, family)
		if tier > bestTier {
			bestTier = tier
			best = i
		}
	}
	if best < 0 {
		return Choice{}
	}
	return Choice{Item: &items[best]}
}
