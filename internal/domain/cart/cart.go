package cart

import "github.com/shopspring/decimal"

// Item is a client-owned product snapshot. It is never persisted as-is;
// order items copy its fields at commit time.
type Item struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	StoreID   string          `json:"store_id"`
	StoreName string          `json:"store_name"`
	ImageURLs []string        `json:"image_urls,omitempty"`
}

// StoreGroup is the per-store partition of a multi-vendor cart. Each group
// becomes exactly one order.
type StoreGroup struct {
	StoreID   string
	StoreName string
	Items     []Item
}

// Subtotal sums price*quantity over the group's items.
func (g StoreGroup) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range g.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// PartitionByStore groups cart items by store id. Grouping is stable: stores
// appear in first-seen order and items keep their relative order, so the
// union of all groups equals the input cart exactly.
func PartitionByStore(items []Item) []StoreGroup {
	index := make(map[string]int)
	var groups []StoreGroup

	for _, item := range items {
		i, ok := index[item.StoreID]
		if !ok {
			i = len(groups)
			index[item.StoreID] = i
			groups = append(groups, StoreGroup{
				StoreID:   item.StoreID,
				StoreName: item.StoreName,
			})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// StoreIDs returns the distinct store ids present in the cart, in
// first-seen order.
func StoreIDs(items []Item) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, item := range items {
		if _, ok := seen[item.StoreID]; ok {
			continue
		}
		seen[item.StoreID] = struct{}{}
		ids = append(ids, item.StoreID)
	}
	return ids
}
