package domain

import "fmt"

// ShopItem is one entry of the immutable cosmetic catalog.
type ShopItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Price       int64  `json:"price"`
}

// ShopItemView is a catalog entry with the purchased flag for the
// requesting connection.
type ShopItemView struct {
	ShopItem
	Purchased bool `json:"purchased"`
}

// Purchase records that a player owns an item. Keyed by (playerID,
// itemID) so re-purchases are detectable.
type Purchase struct {
	PlayerID  string `json:"userId"`
	ItemID    int64  `json:"itemId"`
	CreatedAt int64  `json:"createdAt"`
}

// PurchaseKey is the ledger key for a (player, item) pair.
func PurchaseKey(playerID string, itemID int64) string {
	return fmt.Sprintf("%s:%d", playerID, itemID)
}
