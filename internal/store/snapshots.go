package store

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/tidwall/gjson"

	"github.com/slothpixel/sloth/internal/cache"
	"github.com/slothpixel/sloth/internal/games"
	"github.com/slothpixel/sloth/internal/hypixel"
	"github.com/slothpixel/sloth/internal/model"
	"github.com/slothpixel/sloth/internal/util/slothlog"
	"github.com/slothpixel/sloth/internal/util/slotherr"
	"github.com/slothpixel/sloth/internal/util/timer"
)

var (
	boostersTimer = timer.NewMilli("store_boosters")
	bansTimer     = timer.NewMilli("store_bans")
	bazaarTimer   = timer.NewMilli("store_bazaar")
)

// FetchBoosterSnapshot groups the booster queue by game. Games keep the order of their
// first booster in the queue.
func (s *Store) FetchBoosterSnapshot(ctx context.Context) (*model.BoosterSnapshot, error) {
	defer boostersTimer.One()()
	body, err := s.FetchJobPayload(ctx, hypixel.GenerateJob(hypixel.BoostersJob, ""))
	if err != nil {
		return nil, err
	}
	return buildBoosters(body), nil
}

func buildBoosters(body []byte) *model.BoosterSnapshot {
	ret := &model.BoosterSnapshot{Boosters: []model.GameBoosters{}}
	index := map[string]int{}
	gjson.GetBytes(body, "boosters").ForEach(func(_, b gjson.Result) bool {
		game, ok := games.ByID(int(b.Get("gameType").Int()))
		if !ok {
			logger.DebugT(slothlog.Int64("game_type", b.Get("gameType").Int()), "Booster for unknown game")
			return true
		}
		booster := model.Booster{
			UUID:           b.Get("purchaserUuid").String(),
			Multiplier:     b.Get("amount").Float(),
			Activated:      b.Get("dateActivated").Int(),
			OriginalLength: b.Get("originalLength").Int(),
			Length:         b.Get("length").Int(),
		}
		booster.Active = booster.Length < booster.OriginalLength
		b.Get("stacked").ForEach(func(_, v gjson.Result) bool {
			booster.Stacked = append(booster.Stacked, v.String())
			return true
		})

		i, ok := index[game.StandardName]
		if !ok {
			i = len(ret.Boosters)
			index[game.StandardName] = i
			ret.Boosters = append(ret.Boosters, model.GameBoosters{Game: game.StandardName, Boosters: []model.Booster{}})
		}
		ret.Boosters[i].Boosters = append(ret.Boosters[i].Boosters, booster)
		return true
	})
	return ret
}

func (s *Store) FetchBanSnapshot(ctx context.Context) (*model.Bans, error) {
	defer bansTimer.One()()
	body, err := s.FetchJobPayload(ctx, hypixel.GenerateJob(hypixel.PunishmentStatsJob, ""))
	if err != nil {
		return nil, err
	}
	r := gjson.ParseBytes(body)
	return &model.Bans{
		Watchdog: model.BanCounts{
			LastMinute: r.Get("watchdog_lastMinute").Int(),
			Daily:      r.Get("watchdog_rollingDaily").Int(),
			Total:      r.Get("watchdog_total").Int(),
		},
		Staff: model.BanCounts{
			Daily: r.Get("staff_rollingDaily").Int(),
			Total: r.Get("staff_total").Int(),
		},
	}, nil
}

// FetchBazaarSnapshot also stores the sorted product ids as the list of valid item ids.
func (s *Store) FetchBazaarSnapshot(ctx context.Context) (map[string]model.BazaarProduct, error) {
	defer bazaarTimer.One()()
	body, err := s.FetchJobPayload(ctx, hypixel.GenerateJob(hypixel.BazaarJob, ""))
	if err != nil {
		return nil, err
	}
	var payload struct {
		Products map[string]json.RawMessage `json:"products"`
	}
	if err := decodeUpstream("bazaar payload", body, &payload); err != nil {
		return nil, err
	}
	if payload.Products == nil {
		return nil, slotherr.UpstreamF("bazaar payload has no products")
	}

	ret := make(map[string]model.BazaarProduct, len(payload.Products))
	ids := make([]string, 0, len(payload.Products))
	for id, p := range payload.Products {
		ret[id] = p
		ids = append(ids, id)
	}
	sort.Strings(ids)
	list, err := json.Marshal(ids)
	if err != nil {
		return nil, slotherr.InternalErrE(err)
	}
	if err := s.Cache.Set(ctx, cache.SkyblockBazaarKey, list, 0); err != nil {
		logger.WarnT(slothlog.Err(err), "Bazaar id list not stored")
	}
	return ret, nil
}
