package data

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// QuestDef is a collect-and-return quest.
type QuestDef struct {
	ID      string `yaml:"id"`
	Title   string `yaml:"title"`
	Require Bundle `yaml:"require"`
	Reward  Bundle `yaml:"reward"`
}

type questListFile struct {
	Quests []QuestDef `yaml:"quests"`
}

type QuestTable struct {
	quests map[string]*QuestDef
}

func (t *QuestTable) Get(id string) *QuestDef { return t.quests[id] }
func (t *QuestTable) Count() int              { return len(t.quests) }

// LoadQuestTable parses quest_list.yaml.
func LoadQuestTable(raw []byte) (*QuestTable, error) {
	var f questListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse quest_list: %w", err)
	}
	t := &QuestTable{quests: make(map[string]*QuestDef, len(f.Quests))}
	for i := range f.Quests {
		q := &f.Quests[i]
		if q.ID == "" || len(q.Require) == 0 {
			return nil, fmt.Errorf("quest %q needs an id and requirements", q.Title)
		}
		t.quests[q.ID] = q
	}
	return t, nil
}
