package system

import (
	"github.com/grokyworld/server/internal/data"
	"go.uber.org/zap"
)

func (s *InteractionSystem) startTalk(a *interaction) bool {
	dlg := s.deps.Catalog.Npcs.Get(a.typ)
	if dlg == nil {
		s.deps.Log.Warn("talk: no dialogue", zap.String("npc", a.typ))
		return false
	}
	s.active = a
	s.greet(a, dlg)
	return true
}

// greet shows the NPC's greeting: the current quest offer first, then the
// fixed choices.
func (s *InteractionSystem) greet(a *interaction, dlg *data.DialogueDef) {
	a.message = dlg.Greeting
	a.choices = nil
	if len(dlg.Quests) > 0 {
		if c, ok := s.questChoice(a, dlg); ok {
			a.choices = append(a.choices, c)
		} else {
			a.message = s.deps.Catalog.Npcs.Messages().AllQuestsDone
		}
	}
	for _, cd := range dlg.Choices {
		cd := cd
		c := choice{text: cd.Text}
		switch cd.Action {
		case data.ActionOpenShop:
			c.run = func() { s.openShop(a, dlg, cd.Shop) }
		case data.ActionSay:
			c.run = func() { s.say(a, cd.Line) }
		default:
			c.run = func() { s.Close() }
		}
		a.choices = append(a.choices, c)
	}
}

// say replaces the message and offers a single acknowledgement that ends
// the conversation.
func (s *InteractionSystem) say(a *interaction, line string) {
	a.message = line
	a.choices = []choice{{
		text: s.deps.Catalog.Npcs.Messages().Acknowledge,
		run:  func() { s.Close() },
	}}
}
