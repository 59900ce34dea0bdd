package data

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Dialogue choice actions.
const (
	ActionOpenShop = "open_shop"
	ActionSay      = "say"
	ActionClose    = "close"
)

// MaxChoices is how many choices one dialogue node can offer.
const MaxChoices = 3

// ChoiceDef is one entry of a greeting's choice list.
type ChoiceDef struct {
	Text   string `yaml:"text"`
	Action string `yaml:"action"`
	Shop   string `yaml:"shop"` // open_shop
	Line   string `yaml:"line"` // say
}

// DialogueDef is the conversation attached to a talkable NPC type.
type DialogueDef struct {
	Type     string      `yaml:"type"`
	Greeting string      `yaml:"greeting"`
	Choices  []ChoiceDef `yaml:"choices"`
	Quests   []string    `yaml:"quests"` // offered in order, before Choices
}

// Messages are the fixed lines shown by shops and quests.
type Messages struct {
	Insufficient  string `yaml:"insufficient"`
	Purchased     string `yaml:"purchased"` // %s = item name
	NoShop        string `yaml:"no_shop"`
	Acknowledge   string `yaml:"acknowledge"`
	Back          string `yaml:"back"`
	QuestAccept   string `yaml:"quest_accept"`   // %s = quest title
	QuestAccepted string `yaml:"quest_accepted"` // %s = quest title
	QuestTurnIn   string `yaml:"quest_turn_in"`  // %s = quest title
	QuestProgress string `yaml:"quest_progress"` // %s = quest title, %s = progress
	QuestReward   string `yaml:"quest_reward"`   // %s = reward
	AllQuestsDone string `yaml:"all_quests_done"`
}

type npcListFile struct {
	Messages Messages      `yaml:"messages"`
	Npcs     []DialogueDef `yaml:"npcs"`
}

// NpcTable holds dialogue trees indexed by NPC type.
type NpcTable struct {
	npcs     map[string]*DialogueDef
	messages Messages
}

// Get returns the dialogue for an NPC type, or nil if not found.
func (t *NpcTable) Get(typ string) *DialogueDef {
	return t.npcs[typ]
}

func (t *NpcTable) Messages() Messages { return t.messages }

// Count returns the number of NPC types loaded.
func (t *NpcTable) Count() int {
	return len(t.npcs)
}

// LoadNpcTable parses npc_list.yaml.
func LoadNpcTable(raw []byte) (*NpcTable, error) {
	var f npcListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse npc_list: %w", err)
	}
	t := &NpcTable{npcs: make(map[string]*DialogueDef, len(f.Npcs)), messages: f.Messages}
	for i := range f.Npcs {
		d := &f.Npcs[i]
		for _, c := range d.Choices {
			switch c.Action {
			case ActionOpenShop, ActionSay, ActionClose:
			default:
				return nil, fmt.Errorf("npc %s: unknown choice action %q", d.Type, c.Action)
			}
		}
		slots := len(d.Choices)
		if len(d.Quests) > 0 {
			slots++
		}
		if slots > MaxChoices {
			return nil, fmt.Errorf("npc %s: %d choices, at most %d fit", d.Type, slots, MaxChoices)
		}
		t.npcs[d.Type] = d
	}
	return t, nil
}
