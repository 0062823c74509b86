package graphql

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"

	"github.com/99designs/gqlgen/client"
	"github.com/stretchr/testify/require"

	"github.com/slothpixel/sloth/internal/cache"
	"github.com/slothpixel/sloth/internal/hypixel"
	"github.com/slothpixel/sloth/internal/model"
	"github.com/slothpixel/sloth/internal/util/slotherr"
)

var testGames = []string{"Quake", "Walls", "BedWars"}

// calls counts adapter invocations by adapter name.
type calls struct {
	bazaar   int32
	boosters int32
	player   int32
	batch    int32
}

// fakeSources returns adapters over fixed data. Tests override single fields.
func fakeSources(c *calls) Sources {
	return Sources{
		FetchPlayer: func(ctx context.Context, name string) (*model.Player, error) {
			atomic.AddInt32(&c.player, 1)
			if name == "nobody" {
				return nil, slotherr.NotFoundF("player %s not found", name)
			}
			return &model.Player{
				UUID:         "uuid-" + name,
				Username:     name,
				Level:        12.5,
				Achievements: map[string]interface{}{"general_wins": 3},
				Quests:       map[string]interface{}{"daily": true},
			}, nil
		},
		FetchPlayersBatch: func(ctx context.Context, refs []model.PlayerRef) ([]model.PopulatedPlayer, error) {
			atomic.AddInt32(&c.batch, 1)
			ret := make([]model.PopulatedPlayer, len(refs))
			for i, ref := range refs {
				ret[i] = model.PopulatedPlayer{Profile: &model.Player{UUID: ref.UUID, Username: "name-" + ref.UUID}}
			}
			return ret, nil
		},
		FetchBazaarSnapshot: func(ctx context.Context) (map[string]model.BazaarProduct, error) {
			atomic.AddInt32(&c.bazaar, 1)
			return map[string]model.BazaarProduct{
				"A": model.BazaarProduct("1"),
				"B": model.BazaarProduct("2"),
			}, nil
		},
		FetchBanSnapshot: func(ctx context.Context) (*model.Bans, error) {
			return &model.Bans{
				Watchdog: model.BanCounts{LastMinute: 1, Daily: 10, Total: 100},
				Staff:    model.BanCounts{Daily: 2, Total: 20},
			}, nil
		},
		FetchBoosterSnapshot: func(ctx context.Context) (*model.BoosterSnapshot, error) {
			atomic.AddInt32(&c.boosters, 1)
			return &model.BoosterSnapshot{Boosters: []model.GameBoosters{
				{Game: "Walls", Boosters: []model.Booster{{UUID: "b1", Multiplier: 2, Length: 3600}}},
				{Game: "Quake", Boosters: []model.Booster{}},
			}}, nil
		},
		QueryAuctionsByFilter: func(ctx context.Context, args map[string]interface{}) ([]model.Auction, error) {
			return []model.Auction{{UUID: "a1", ItemID: "HYPERION"}}, nil
		},
		QueryAuctionByID: func(ctx context.Context, from, to int64, itemID string) ([]model.Auction, error) {
			return []model.Auction{
				{UUID: "a1", ItemID: itemID, HighestBid: 100, End: from},
				{UUID: "a2", ItemID: itemID, HighestBid: 300, End: to},
				{UUID: "a3", ItemID: itemID},
			}, nil
		},
		BuildSkyblockProfile: func(ctx context.Context, uuid, profileID string, populate bool) (*model.SkyblockProfile, error) {
			return &model.SkyblockProfile{
				ID:       "p1",
				CuteName: "Mango",
				Members: map[string]*model.ProfileMember{
					uuid:   {UUID: uuid, CoinPurse: 10},
					"coop": {UUID: "coop", CoinPurse: 5},
				},
			}, nil
		},
		FetchGuildForPlayer: func(ctx context.Context, name string, populatePlayers bool) (*model.Guild, error) {
			g := &model.Guild{ID: "g1", Name: "Sloths", Members: []model.GuildMember{{UUID: "uuid-" + name, Rank: "Guild Master"}}}
			if populatePlayers {
				g.Members[0].Profile = &model.Player{UUID: "uuid-" + name, Username: name}
			}
			return g, nil
		},
		ComputeLeaderboard: func(ctx context.Context, params map[string]interface{}, template *string) ([]model.LeaderboardRow, error) {
			if template != nil {
				return []model.LeaderboardRow{{"template": *template}}, nil
			}
			return []model.LeaderboardRow{{"type": params["type"], "sortBy": params["sortBy"]}}, nil
		},
		ResolveUUID: func(ctx context.Context, name string) (string, error) {
			if name == "nobody" {
				return "", slotherr.NotFoundF("player %s not found", name)
			}
			return "uuid-" + name, nil
		},
		FetchCachedValue: func(ctx context.Context, key string) (string, bool, error) {
			switch key {
			case cache.SkyblockBazaarKey:
				return `["A","B"]`, true, nil
			case cache.SkyblockItemsKey:
				return `{"HYPERION":{"name":"Hyperion"}}`, true, nil
			}
			return "", false, nil
		},
		FetchJobPayload: func(ctx context.Context, job hypixel.Job) (json.RawMessage, error) {
			return json.RawMessage(`{"games":[
				{"date":1,"gameType":"BEDWARS","mode":"EIGHT_ONE"},
				{"date":2,"gameType":"UNKNOWN_GAME"},
				{"date":3,"gameType":"QUAKECRAFT"}]}`), nil
		},
		FetchMetadata: func(ctx context.Context, selector *string) (*model.Metadata, error) {
			return &model.Metadata{Version: "test", Counts: map[string]int{"players": 2}}, nil
		},
	}
}

func newClient(t *testing.T, src Sources) *client.Client {
	return newClientFromTemplate(t, schemaTemplate, src)
}

func newClientFromTemplate(t *testing.T, template string, src Sources) *client.Client {
	schema, _, err := BuildSchema(template, testGames)
	require.NoError(t, err)
	es := NewExecutable(schema, NewResolver(src, testGames))
	require.NoError(t, es.CheckBindings())
	return client.New(NewHandler(es, 0))
}

type queryError struct {
	Message    string                 `json:"message"`
	Path       []interface{}          `json:"path"`
	Extensions map[string]interface{} `json:"extensions"`
}

// run returns the data member as JSON and the decoded errors.
func run(t *testing.T, c *client.Client, query string, options ...client.Option) (string, []queryError) {
	resp, err := c.RawPost(query, options...)
	require.NoError(t, err)
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var errs []queryError
	if len(resp.Errors) != 0 {
		require.NoError(t, json.Unmarshal(resp.Errors, &errs))
	}
	return string(data), errs
}
