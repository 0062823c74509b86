package graphql

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/slothpixel/sloth/internal/cache"
	"github.com/slothpixel/sloth/internal/model"
	"github.com/slothpixel/sloth/internal/util"
	"github.com/slothpixel/sloth/internal/util/slotherr"
)

func (r *Resolver) skyblockFields() fieldTable {
	return fieldTable{
		"all_auctions":  r.allAuctions,
		"auctions":      r.auctions,
		"auction_stats": r.auctionStats,
		"items":         r.items,
		"profiles":      r.profiles,
		"profile":       r.profile,
		"bazaar":        r.bazaar,
	}
}

func (r *Resolver) allAuctions(ctx context.Context, _ interface{}, args map[string]interface{}) (interface{}, error) {
	params := make(map[string]interface{}, len(args))
	for k, v := range args {
		params[k] = v
	}
	return value(r.src.QueryAuctionsByFilter(ctx, params))
}

func (r *Resolver) auctions(ctx context.Context, _ interface{}, args map[string]interface{}) (interface{}, error) {
	return value(r.auctionsByID(ctx, args))
}

func (r *Resolver) auctionsByID(ctx context.Context, args map[string]interface{}) ([]model.Auction, error) {
	itemID, err := requireString(args, "item_id")
	if err != nil {
		return nil, err
	}
	from, _, err := argInt64(args, "from")
	if err != nil {
		return nil, err
	}
	to, _, err := argInt64(args, "to")
	if err != nil {
		return nil, err
	}
	return r.src.QueryAuctionByID(ctx, from, to, itemID)
}

// auctionStats summarizes the highest bids of the sold auctions in the range.
func (r *Resolver) auctionStats(ctx context.Context, _ interface{}, args map[string]interface{}) (interface{}, error) {
	auctions, err := r.auctionsByID(ctx, args)
	if err != nil {
		return nil, err
	}
	prices := make([]int64, 0, len(auctions))
	for _, a := range auctions {
		if a.HighestBid > 0 {
			prices = append(prices, a.HighestBid)
		}
	}
	return &model.AuctionStats{
		AveragePrice:      present(util.Average(prices)),
		MedianPrice:       present(util.Median(prices)),
		StandardDeviation: present(util.StdDev(prices)),
		MinPrice:          present(util.Min(prices)),
		MaxPrice:          present(util.Max(prices)),
		Sold:              len(prices),
	}, nil
}

func present(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func (r *Resolver) items(ctx context.Context, _ interface{}, _ map[string]interface{}) (interface{}, error) {
	return r.cachedJSON(ctx, cache.SkyblockItemsKey)
}

func (r *Resolver) profiles(ctx context.Context, _ interface{}, args map[string]interface{}) (interface{}, error) {
	name, err := requireString(args, "player_name")
	if err != nil {
		return nil, err
	}
	uuid, err := r.src.ResolveUUID(ctx, name)
	if err != nil {
		return nil, err
	}
	return r.cachedJSON(ctx, cache.SkyblockProfilesKey(uuid))
}

// cachedJSON decodes a cached document. A missing entry reads as an empty object.
func (r *Resolver) cachedJSON(ctx context.Context, key string) (interface{}, error) {
	raw, ok, err := r.src.FetchCachedValue(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return map[string]interface{}{}, nil
	}
	v, err := decodeJSON(strings.NewReader(raw))
	if err != nil {
		return nil, slotherr.UpstreamE("cached "+key, err)
	}
	if v == nil {
		return map[string]interface{}{}, nil
	}
	return v, nil
}

func (r *Resolver) profile(ctx context.Context, _ interface{}, args map[string]interface{}) (interface{}, error) {
	name, err := requireString(args, "player_name")
	if err != nil {
		return nil, err
	}
	profileID, _ := argString(args, "profile_id")
	uuid, err := r.src.ResolveUUID(ctx, name)
	if err != nil {
		return nil, err
	}
	profile, err := r.src.BuildSkyblockProfile(ctx, uuid, profileID, true)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, slotherr.NotFoundF("no skyblock profile for %s", name)
	}

	refs := make([]model.PlayerRef, 0, len(profile.Members))
	for id := range profile.Members {
		refs = append(refs, model.PlayerRef{UUID: id})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].UUID < refs[j].UUID })
	players, err := r.src.FetchPlayersBatch(ctx, refs)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return mergeMembers(profile, players), nil
}

// mergeMembers attaches each populated player to the member with the same uuid.
// The profile given is not modified.
func mergeMembers(profile *model.SkyblockProfile, players []model.PopulatedPlayer) *model.SkyblockProfile {
	ret := *profile
	ret.Members = make(map[string]*model.ProfileMember, len(profile.Members))
	for id, m := range profile.Members {
		member := model.ProfileMember{UUID: id}
		if m != nil {
			member = *m
		}
		ret.Members[id] = &member
	}
	for _, p := range players {
		if p.Profile == nil {
			continue
		}
		member, ok := ret.Members[p.Profile.UUID]
		if !ok {
			logger.WarnF("Populated player %s is not a member of profile %s", p.Profile.UUID, profile.ID)
			continue
		}
		member.Player = p.Profile
	}
	for id, m := range ret.Members {
		if m.Player == nil {
			logger.WarnF("No player data for member %s of profile %s", id, profile.ID)
		}
	}
	return &ret
}

// bazaar validates a single item id against the cached id list before the product fetch.
func (r *Resolver) bazaar(ctx context.Context, _ interface{}, args map[string]interface{}) (interface{}, error) {
	filter, err := ParseItemFilter(args["item_id"])
	if err != nil {
		return nil, err
	}
	ids, err := r.bazaarIDs(ctx)
	if err != nil {
		return nil, err
	}
	if filter.Kind == SingleItem && !contains(ids, filter.single()) {
		return nil, slotherr.Validation("Invalid item_id")
	}
	products, err := r.src.FetchBazaarSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	switch filter.Kind {
	case SingleItem:
		p, ok := products[filter.single()]
		if !ok {
			return nil, nil
		}
		return p, nil
	case ItemSet:
		ret := make(map[string]model.BazaarProduct, len(filter.IDs))
		for _, id := range filter.IDs {
			if p, ok := products[id]; ok {
				ret[id] = p
			}
		}
		return ret, nil
	}
	return products, nil
}

func (r *Resolver) bazaarIDs(ctx context.Context) ([]string, error) {
	raw, ok, err := r.src.FetchCachedValue(ctx, cache.SkyblockBazaarKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, slotherr.UpstreamE("cached bazaar ids", err)
	}
	return ids, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
