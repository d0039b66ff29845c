package game

import (
	"errors"
	"log"
	"sort"
	"time"

	"github.com/torcida/torcida/internal/domain"
	"github.com/torcida/torcida/internal/table"
)

// Shop holds the immutable cosmetic catalog and the purchase ledger.
// The catalog itself is behavior-agnostic; Features is the only place
// item ids become gameplay-visible capability flags.
type Shop struct {
	log       *log.Logger
	registry  *Registry
	items     []domain.ShopItem
	purchases *table.Table[domain.Purchase]
	now       func() time.Time
}

// NewShop seeds the catalog and creates an empty purchase ledger.
func NewShop(registry *Registry, purchaseCapacity int, logger *log.Logger) *Shop {
	return &Shop{
		log:       logger,
		registry:  registry,
		items:     defaultItems(),
		purchases: table.New[domain.Purchase](purchaseCapacity),
		now:       time.Now,
	}
}

func defaultItems() []domain.ShopItem {
	return []domain.ShopItem{
		{ID: 1, Name: "Giant votes", Description: "Your crest grows bigger every time you vote.", Image: "https://placehold.co/120", Price: 100},
		{ID: 2, Name: "More confetti", Description: "Your votes burst into extra confetti for everyone to see.", Image: "https://placehold.co/120", Price: 200},
		{ID: 3, Name: "Confetti storm", Description: "Even more confetti on every vote.", Image: "https://placehold.co/120", Price: 300},
		{ID: 4, Name: "Emojis", Description: "Unlocked at the end of each match.", Image: "https://placehold.co/120", Price: 400},
		{ID: 5, Name: "Admin", Description: "Become a server administrator.", Image: "https://placehold.co/120", Price: 500},
	}
}

// Purchase buys itemID for the player bound to fd. An unknown item,
// an already-owned item, or an insufficient balance fails without side
// effects. The (player, item) pair is claimed in the ledger as one
// atomic operation before the charge, so two concurrent purchases of
// the same item cannot both pass the owned check and double-charge.
func (s *Shop) Purchase(fd int64, itemID int64) error {
	item, ok := s.item(itemID)
	if !ok {
		return ErrItemNotFound
	}

	player, err := s.registry.FindByFD(fd)
	if err != nil {
		return err
	}

	key := domain.PurchaseKey(player.ID, itemID)
	if _, err := s.purchases.Upsert(key, func(p *domain.Purchase, exists bool) error {
		if exists {
			return ErrOwned
		}
		p.PlayerID = player.ID
		p.ItemID = itemID
		p.CreatedAt = s.now().Unix()
		return nil
	}); err != nil {
		if errors.Is(err, table.ErrCapacity) {
			s.log.Printf("[shop] purchase ledger full, rejecting player %s", player.ID)
		}
		return err
	}

	if err := s.registry.RemoveBalance(fd, item.Price); err != nil {
		// Release the claim; nothing is owned that was not paid for.
		s.purchases.Delete(key)
		return err
	}

	s.log.Printf("[shop] player %s purchased item %d for %d points", player.ID, itemID, item.Price)
	return nil
}

// IsPurchased reports whether the player already owns the item.
func (s *Shop) IsPurchased(playerID string, itemID int64) bool {
	_, ok := s.purchases.Get(domain.PurchaseKey(playerID, itemID))
	return ok
}

// Items returns the catalog.
func (s *Shop) Items() []domain.ShopItem {
	return s.items
}

// ItemsFor returns the catalog with the purchased flag set for the
// given player.
func (s *Shop) ItemsFor(playerID string) []domain.ShopItemView {
	views := make([]domain.ShopItemView, 0, len(s.items))
	for _, item := range s.items {
		views = append(views, domain.ShopItemView{
			ShopItem:  item,
			Purchased: playerID != "" && s.IsPurchased(playerID, item.ID),
		})
	}
	return views
}

// featureFlags maps catalog ids to the capability flags clients render.
var featureFlags = map[int64]string{
	1: "big",
	2: "count",
	3: "count-2",
}

// Features returns the capability flags for the items a player owns, in
// catalog id order.
func (s *Shop) Features(playerID string) []string {
	var owned []int64
	s.purchases.ForEach(func(_ string, p domain.Purchase) bool {
		if p.PlayerID == playerID {
			owned = append(owned, p.ItemID)
		}
		return true
	})
	sort.Slice(owned, func(i, j int) bool { return owned[i] < owned[j] })

	features := make([]string, 0, len(owned))
	for _, id := range owned {
		if flag, ok := featureFlags[id]; ok {
			features = append(features, flag)
		}
	}
	return features
}

func (s *Shop) item(id int64) (domain.ShopItem, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return domain.ShopItem{}, false
}
