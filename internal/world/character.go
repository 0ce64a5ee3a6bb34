package world

import "github.com/vovakirdan/tilerules/internal/core"

// Characters maps character ids to their definitions.
type Characters map[string]*Character

// Character is an authored behavior template shared by actors.
type Character struct {
	ID          string
	Name        string
	Spritesheet Spritesheet
	Variables   map[string]VariableDecl
	Rules       []Node
}

// Spritesheet carries the appearance metadata the engine needs: display
// names and optional footprint geometry. Pixel data is not modeled.
type Spritesheet struct {
	Appearances    map[string]string         // appearance id -> display name
	AppearanceInfo map[string]AppearanceInfo // appearance id -> footprint
}

// AppearanceInfo describes a multi-cell footprint. Filled lists the occupied
// cells in appearance-local coordinates; Anchor is the cell placed at the
// actor's position.
type AppearanceInfo struct {
	Width  int
	Height int
	Anchor core.Position
	Filled []core.Position
}

// VariableDecl declares a per-actor variable and its default value.
type VariableDecl struct {
	ID           string
	Name         string
	DefaultValue string
}

// AppearanceName returns the display name of an appearance, falling back to
// the id when unnamed.
func (c *Character) AppearanceName(id string) string {
	if name, ok := c.Spritesheet.Appearances[id]; ok && name != "" {
		return name
	}
	return id
}

// DefaultAppearance returns the first appearance id in sorted order, or "".
func (c *Character) DefaultAppearance() string {
	best := ""
	for id := range c.Spritesheet.Appearances {
		if best == "" || id < best {
			best = id
		}
	}
	return best
}

// Footprint returns the footprint info for an appearance, if declared.
func (c *Character) Footprint(appearance string) (AppearanceInfo, bool) {
	info, ok := c.Spritesheet.AppearanceInfo[appearance]
	if !ok || info.Width <= 0 || info.Height <= 0 || len(info.Filled) == 0 {
		return AppearanceInfo{}, false
	}
	return info, true
}

// FindRule searches the rule tree depth-first for a rule with the given id.
func (c *Character) FindRule(id string) (*Rule, bool) {
	return findRule(c.Rules, id)
}

func findRule(nodes []Node, id string) (*Rule, bool) {
	for _, n := range nodes {
		switch node := n.(type) {
		case *Rule:
			if node.ID == id {
				return node, true
			}
		case *EventGroup:
			if r, ok := findRule(node.Rules, id); ok {
				return r, true
			}
		case *FlowGroup:
			if r, ok := findRule(node.Rules, id); ok {
				return r, true
			}
		}
	}
	return nil, false
}
