package catalog_sync

import (
	"strings"
	"time"

	"github.com/cosmetic-storefront/internal/domain/catalog"
)

// fallbackPrices maps cosmetic type to per-rarity prices used when the shop
// feed carries no price for an item
var fallbackPrices = map[string]map[string]int64{
	"outfit":        {"common": 800, "uncommon": 800, "rare": 1200, "epic": 1500, "legendary": 2000, "mythic": 2000},
	"emote":         {"common": 200, "uncommon": 200, "rare": 500, "epic": 800, "legendary": 800, "mythic": 800},
	"pickaxe":       {"common": 500, "uncommon": 500, "rare": 800, "epic": 1200, "legendary": 1200, "mythic": 1200},
	"glider":        {"common": 500, "uncommon": 500, "rare": 800, "epic": 1200, "legendary": 1500, "mythic": 1500},
	"wrap":          {"common": 300, "uncommon": 300, "rare": 500, "epic": 700, "legendary": 700, "mythic": 700},
	"backpack":      {"common": 400, "uncommon": 400, "rare": 600, "epic": 800, "legendary": 1200, "mythic": 1200},
	"music":         {"common": 200, "uncommon": 200, "rare": 400, "epic": 600, "legendary": 600, "mythic": 600},
	"loadingscreen": {"common": 200, "uncommon": 200, "rare": 200, "epic": 200, "legendary": 200, "mythic": 200},
	"spray":         {"common": 200, "uncommon": 200, "rare": 300, "epic": 300, "legendary": 300, "mythic": 300},
	"banner":        {"common": 200, "uncommon": 200, "rare": 200, "epic": 200, "legendary": 200, "mythic": 200},
}

// rarityOnlyPrices covers types the table above does not know
var rarityOnlyPrices = map[string]int64{
	"common": 300, "uncommon": 300, "rare": 500, "epic": 800, "legendary": 1200, "mythic": 1500,
}

// fallbackPrice estimates a reasonable credit price for a cosmetic that never
// appears in the shop feed, keyed on type and rarity
func fallbackPrice(cosmeticType, rarity string) int64 {
	cosmeticType = strings.ToLower(cosmeticType)
	rarity = strings.ToLower(rarity)

	if byRarity, ok := fallbackPrices[cosmeticType]; ok {
		if price, ok := byRarity[rarity]; ok {
			return price
		}
		return byRarity["rare"]
	}
	if price, ok := rarityOnlyPrices[rarity]; ok {
		return price
	}
	return 500
}

// normalizeItem converts an upstream feed item into a catalog row, filling
// the feed's frequent gaps with defaults. Returns false when the item has no
// ID and cannot be stored.
func normalizeItem(item FeedItem) (*catalog.Cosmetic, bool) {
	if item.ID == "" {
		return nil, false
	}

	c := &catalog.Cosmetic{
		ID:     item.ID,
		Name:   item.Name,
		Type:   strings.ToLower(item.Type.Value),
		Rarity: strings.ToLower(item.Rarity.Value),
	}
	if c.Name == "" {
		c.Name = "Unknown"
	}
	if c.Type == "" {
		c.Type = "unknown"
	}
	if c.Rarity == "" {
		c.Rarity = "common"
	}

	if item.Added != "" {
		if added, err := time.Parse(time.RFC3339, item.Added); err == nil {
			c.AddedDate = &added
		}
	}

	c.ImageURL = item.Images.Icon
	if c.ImageURL == "" {
		c.ImageURL = item.Images.SmallIcon
	}

	if item.Bundle != nil && item.Bundle.ID != "" {
		bundleID := item.Bundle.ID
		c.BundleID = &bundleID
	}

	return c, true
}
