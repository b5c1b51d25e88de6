package state

import (
	"sort"
	"strings"
)

// Definition is the immutable template a physical card is created from.
// Definitions are shared read-only by every match.
type Definition struct {
	ID         string         `yaml:"id"`
	Title      string         `yaml:"title"`
	Side       string         `yaml:"side"`
	Type       string         `yaml:"type"`
	Subtype    string         `yaml:"subtype,omitempty"`
	Attributes map[string]int `yaml:"attributes,omitempty"`
	GameText   string         `yaml:"game_text,omitempty"`
	Abilities  []string       `yaml:"abilities,omitempty"`
}

// Attribute returns a base numeric attribute.
func (d *Definition) Attribute(name string) (int, bool) {
	if d == nil || d.Attributes == nil {
		return 0, false
	}
	v, ok := d.Attributes[name]
	return v, ok
}

// Card is one physical instance of a Definition within a match.
type Card struct {
	ID         string
	Def        *Definition
	Owner      string
	Controller string
	Zone       ZoneID
	Host       string // Card this one is stacked beneath, if any
	FaceDown   bool
	Tags       map[string]struct{}
}

// Title returns the definition title.
func (c *Card) Title() string {
	if c.Def == nil {
		return ""
	}
	return c.Def.Title
}

// HasTitle compares titles ignoring case and surrounding space.
func (c *Card) HasTitle(title string) bool {
	return strings.EqualFold(strings.TrimSpace(c.Title()), strings.TrimSpace(title))
}

// InPlay reports whether the card is on the table.
func (c *Card) InPlay() bool {
	return c.Zone.Kind == ZoneTable
}

// OutOfPlay reports whether the card reached its terminal zone.
func (c *Card) OutOfPlay() bool {
	return c.Zone.Kind == ZoneOutOfPlay
}

// HasTag reports whether the tag is set.
func (c *Card) HasTag(tag string) bool {
	_, ok := c.Tags[tag]
	return ok
}

// TagList returns the tags in sorted order.
func (c *Card) TagList() []string {
	tags := make([]string, 0, len(c.Tags))
	for tag := range c.Tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func (c *Card) clone() *Card {
	clone := *c
	clone.Tags = make(map[string]struct{}, len(c.Tags))
	for tag := range c.Tags {
		clone.Tags[tag] = struct{}{}
	}
	return &clone
}
