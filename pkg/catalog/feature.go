package catalog

import "slices"

// Icon is a symbolic icon tag. Presentation layers map it to a concrete
// glyph; the catalog never references a renderer.
type Icon string

// Known icon tags.
const (
	IconNone           Icon = ""
	IconHardDrive      Icon = "hard-drive"
	IconNetwork        Icon = "network"
	IconServer         Icon = "server"
	IconDisc           Icon = "disc"
	IconBox            Icon = "box"
	IconContainer      Icon = "container"
	IconBoxes          Icon = "boxes"
	IconShield         Icon = "shield"
	IconDatabase       Icon = "database"
	IconRefresh        Icon = "refresh-cw"
	IconFileText       Icon = "file-text"
	IconGlobe          Icon = "globe"
	IconLock           Icon = "lock"
	IconKeyRound       Icon = "key-round"
	IconAlertCircle    Icon = "alert-circle"
	IconArrowLeftRight Icon = "arrow-left-right"
)

var knownIcons = []Icon{
	IconNone, IconHardDrive, IconNetwork, IconServer, IconDisc, IconBox,
	IconContainer, IconBoxes, IconShield, IconDatabase, IconRefresh,
	IconFileText, IconGlobe, IconLock, IconKeyRound, IconAlertCircle,
	IconArrowLeftRight,
}

// Valid reports whether i is a known icon tag. The empty tag is valid.
func (i Icon) Valid() bool { return slices.Contains(knownIcons, i) }

// Link points to a related documentation page.
type Link struct {
	Label string `toml:"label" json:"label" yaml:"label" bson:"label"`
	Href  string `toml:"href" json:"href" yaml:"href" bson:"href"`
}

// Feature is a node in the catalog: a named unit of infrastructure
// functionality with narrative fields and directed relations.
type Feature struct {
	ID               string   `toml:"id" json:"id" yaml:"id" bson:"id"`
	Name             string   `toml:"name" json:"name" yaml:"name" bson:"name"`
	Layer            Layer    `toml:"layer" json:"layer" yaml:"layer" bson:"layer"`
	Icon             Icon     `toml:"icon" json:"icon,omitempty" yaml:"icon,omitempty" bson:"icon,omitempty"`
	ShortDescription string   `toml:"short_description" json:"shortDescription" yaml:"shortDescription" bson:"short_description"`
	WhatItIs         string   `toml:"what_it_is" json:"whatItIs" yaml:"whatItIs" bson:"what_it_is"`
	WhyExists        string   `toml:"why_exists" json:"whyExists" yaml:"whyExists" bson:"why_exists"`
	HowItFits        string   `toml:"how_it_fits" json:"howItFits" yaml:"howItFits" bson:"how_it_fits"`
	Capabilities     []string `toml:"capabilities" json:"capabilities" yaml:"capabilities" bson:"capabilities"`
	DependsOn        []string `toml:"depends_on" json:"dependsOn" yaml:"dependsOn" bson:"depends_on"`
	FeedsInto        []string `toml:"feeds_into" json:"feedsInto" yaml:"feedsInto" bson:"feeds_into"`
	Keywords         []string `toml:"keywords" json:"keywords" yaml:"keywords" bson:"keywords"`
	Links            []Link   `toml:"link" json:"links" yaml:"links" bson:"links"`
}

// clone returns a deep copy so callers can never reach catalog storage.
func (f Feature) clone() Feature {
	f.Capabilities = slices.Clone(f.Capabilities)
	f.DependsOn = slices.Clone(f.DependsOn)
	f.FeedsInto = slices.Clone(f.FeedsInto)
	f.Keywords = slices.Clone(f.Keywords)
	f.Links = slices.Clone(f.Links)
	return f
}

// normalized returns a deep copy in which absent lists are empty, so that a
// feature reads the same whether a list was omitted or written as [].
func (f Feature) normalized() Feature {
	f = f.clone()
	for _, s := range []*[]string{&f.Capabilities, &f.DependsOn, &f.FeedsInto, &f.Keywords} {
		if *s == nil {
			*s = []string{}
		}
	}
	if f.Links == nil {
		f.Links = []Link{}
	}
	return f
}
