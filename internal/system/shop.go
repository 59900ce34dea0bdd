package system

import (
	"fmt"
	"strings"

	"github.com/grokyworld/server/internal/core/event"
	"github.com/grokyworld/server/internal/data"
	"github.com/grokyworld/server/internal/handler"
	"go.uber.org/zap"
)

// openShop switches the conversation to a shop's price list.
func (s *InteractionSystem) openShop(a *interaction, dlg *data.DialogueDef, shopID string) {
	msgs := s.deps.Catalog.Npcs.Messages()
	shop := s.deps.Catalog.Shops.Get(shopID)
	if shop == nil || len(shop.Items) == 0 {
		s.deps.Log.Warn("shop not found", zap.String("npc", a.typ), zap.String("shop", shopID))
		s.say(a, msgs.NoShop)
		return
	}

	lines := make([]string, 0, len(shop.Items))
	choices := make([]choice, 0, len(shop.Items)+1)
	for _, it := range shop.Items {
		it := it
		lines = append(lines, fmt.Sprintf("%s – %s", it.Name, it.Cost.Describe()))
		choices = append(choices, choice{
			text: "Buy " + it.Name,
			run:  func() { s.buy(a, shop.ID, it) },
		})
	}
	if len(choices) < maxChoiceSlots && msgs.Back != "" {
		choices = append(choices, choice{text: msgs.Back, run: func() { s.greet(a, dlg) }})
	}
	a.message = strings.Join(lines, "\n")
	a.choices = choices
}

// buy debits the full cost or nothing at all.
func (s *InteractionSystem) buy(a *interaction, shopID string, it data.ShopItem) {
	msgs := s.deps.Catalog.Npcs.Messages()
	inv := s.deps.World.Player().Inventory
	if !inv.Debit(it.Cost) {
		s.deps.Log.Debug("purchase refused: insufficient", zap.String("item", it.Item))
		s.say(a, msgs.Insufficient)
		return
	}
	handler.Credit(s.deps, it.Item, 1, "purchase")
	event.Emit(s.deps.Bus, event.ItemPurchased{
		Shop: shopID, Item: it.Item, Name: it.Name, Cost: it.Cost.Describe(),
	})
	s.deps.Log.Info("item purchased", zap.String("shop", shopID), zap.String("item", it.Item))
	s.say(a, fmt.Sprintf(msgs.Purchased, it.Name))
}
