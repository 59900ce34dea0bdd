package data

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ChoppableDef: chopping Type leaves Result on the tile and drops Drop nearby.
type ChoppableDef struct {
	Type   string `yaml:"type"`
	Result string `yaml:"result"`
	Drop   string `yaml:"drop"`
}

// AmbushDef spawns Count hostiles of Type around an opened container.
type AmbushDef struct {
	Type  string `yaml:"type"`
	Count int    `yaml:"count"`
}

// OpenableDef: opening Type swaps it to Result and credits Drop.
type OpenableDef struct {
	Type    string     `yaml:"type"`
	Result  string     `yaml:"result"`
	Drop    string     `yaml:"drop"`
	Message string     `yaml:"message"`
	Ambush  *AmbushDef `yaml:"ambush"`
}

type interactionListFile struct {
	Choppables []ChoppableDef `yaml:"choppables"`
	Openables  []OpenableDef  `yaml:"openables"`
}

type InteractionTable struct {
	choppables map[string]*ChoppableDef
	openables  map[string]*OpenableDef
}

func (t *InteractionTable) Choppable(typ string) *ChoppableDef { return t.choppables[typ] }
func (t *InteractionTable) Openable(typ string) *OpenableDef   { return t.openables[typ] }

// LoadInteractionTable parses interaction_list.yaml.
func LoadInteractionTable(raw []byte) (*InteractionTable, error) {
	var f interactionListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse interaction_list: %w", err)
	}
	t := &InteractionTable{
		choppables: make(map[string]*ChoppableDef, len(f.Choppables)),
		openables:  make(map[string]*OpenableDef, len(f.Openables)),
	}
	for i := range f.Choppables {
		c := &f.Choppables[i]
		if c.Result == "" {
			return nil, fmt.Errorf("choppable %s: missing result", c.Type)
		}
		t.choppables[c.Type] = c
	}
	for i := range f.Openables {
		o := &f.Openables[i]
		if o.Result == "" {
			return nil, fmt.Errorf("openable %s: missing result", o.Type)
		}
		if o.Ambush != nil && o.Ambush.Count <= 0 {
			o.Ambush = nil
		}
		t.openables[o.Type] = o
	}
	return t, nil
}
