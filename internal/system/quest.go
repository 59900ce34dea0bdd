package system

import (
	"fmt"
	"strings"

	"github.com/grokyworld/server/internal/core/event"
	"github.com/grokyworld/server/internal/data"
	"github.com/grokyworld/server/internal/handler"
	"github.com/grokyworld/server/internal/world"
	"go.uber.org/zap"
)

// Quest markers shown over quest givers.
const (
	QuestMarkerAvailable = "?"
	QuestMarkerReady     = "!"
)

// currentQuest returns the first quest of dlg the player has not finished.
func (s *InteractionSystem) currentQuest(dlg *data.DialogueDef) *data.QuestDef {
	p := s.deps.World.Player()
	for _, id := range dlg.Quests {
		if p.Quests[id] != world.QuestDone {
			return s.deps.Catalog.Quests.Get(id)
		}
	}
	return nil
}

// questChoice builds the accept or turn-in choice for the current quest.
func (s *InteractionSystem) questChoice(a *interaction, dlg *data.DialogueDef) (choice, bool) {
	q := s.currentQuest(dlg)
	if q == nil {
		return choice{}, false
	}
	msgs := s.deps.Catalog.Npcs.Messages()
	if s.deps.World.Player().Quests[q.ID] == world.QuestNone {
		return choice{
			text: fmt.Sprintf(msgs.QuestAccept, q.Title),
			run:  func() { s.acceptQuest(a, q) },
		}, true
	}
	return choice{
		text: fmt.Sprintf(msgs.QuestTurnIn, q.Title),
		run:  func() { s.turnInQuest(a, q) },
	}, true
}

func (s *InteractionSystem) acceptQuest(a *interaction, q *data.QuestDef) {
	s.deps.World.Player().Quests[q.ID] = world.QuestActive
	s.deps.Log.Info("quest accepted", zap.String("quest", q.ID))
	s.say(a, fmt.Sprintf(s.deps.Catalog.Npcs.Messages().QuestAccepted, q.Title))
}

// turnInQuest swaps the requirements for the reward in one step, or shows
// the progress line when something is missing.
func (s *InteractionSystem) turnInQuest(a *interaction, q *data.QuestDef) {
	msgs := s.deps.Catalog.Npcs.Messages()
	p := s.deps.World.Player()
	if !p.Inventory.Debit(q.Require) {
		s.say(a, fmt.Sprintf(msgs.QuestProgress, q.Title, questProgress(p.Inventory, q.Require)))
		return
	}
	handler.CreditBundle(s.deps, q.Reward, "quest")
	p.Quests[q.ID] = world.QuestDone
	event.Emit(s.deps.Bus, event.QuestCompleted{Quest: q.ID, Reward: q.Reward.Describe()})
	s.deps.Log.Info("quest completed", zap.String("quest", q.ID))
	s.say(a, fmt.Sprintf(msgs.QuestReward, q.Reward.Describe()))
}

// QuestMarker returns the marker to show over an NPC type, or "".
func (s *InteractionSystem) QuestMarker(npcType string) string {
	dlg := s.deps.Catalog.Npcs.Get(npcType)
	if dlg == nil || len(dlg.Quests) == 0 {
		return ""
	}
	q := s.currentQuest(dlg)
	if q == nil {
		return ""
	}
	p := s.deps.World.Player()
	switch p.Quests[q.ID] {
	case world.QuestNone:
		return QuestMarkerAvailable
	case world.QuestActive:
		if p.Inventory.Has(q.Require) {
			return QuestMarkerReady
		}
	}
	return ""
}

// questProgress renders "2/5 Rock, 1/5 Wood".
func questProgress(inv world.Inventory, req data.Bundle) string {
	parts := make([]string, 0, len(req))
	for _, ic := range req {
		have := inv.Count(ic.Item)
		if have > ic.Count {
			have = ic.Count
		}
		parts = append(parts, fmt.Sprintf("%d/%d %s", have, ic.Count, data.DisplayName(ic.Item)))
	}
	return strings.Join(parts, ", ")
}
