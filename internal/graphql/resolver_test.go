package graphql

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/99designs/gqlgen/client"
	"github.com/stretchr/testify/require"

	"github.com/slothpixel/sloth/internal/model"
	"github.com/slothpixel/sloth/internal/util/slotherr"
)

func TestBazaar(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		expected string
	}{
		{"no filter", `{ skyblock { bazaar } }`, `{"A":1,"B":2}`},
		{"single item", `{ skyblock { bazaar(item_id: "A") } }`, `1`},
		{"separated items", `{ skyblock { bazaar(item_id: "A,B") } }`, `{"A":1,"B":2}`},
		{"item list", `{ skyblock { bazaar(item_id: ["A"]) } }`, `{"A":1}`},
		{"unknown ids in list", `{ skyblock { bazaar(item_id: ["B", "Z"]) } }`, `{"B":2}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var c calls
			data, errs := run(t, newClient(t, fakeSources(&c)), tc.query)
			require.Empty(t, errs)
			require.JSONEq(t, `{"skyblock":{"bazaar":`+tc.expected+`}}`, data)
			require.Equal(t, int32(1), c.bazaar)
		})
	}
}

func TestBazaarVariable(t *testing.T) {
	var c calls
	data, errs := run(t, newClient(t, fakeSources(&c)),
		`query($ids: ItemFilter) { skyblock { bazaar(item_id: $ids) } }`,
		client.Var("ids", []string{"B"}))
	require.Empty(t, errs)
	require.JSONEq(t, `{"skyblock":{"bazaar":{"B":2}}}`, data)
}

func TestBazaarInvalidItem(t *testing.T) {
	var c calls
	data, errs := run(t, newClient(t, fakeSources(&c)), `{ skyblock { bazaar(item_id: "C") } }`)
	require.JSONEq(t, `{"skyblock":{"bazaar":null}}`, data)
	require.Len(t, errs, 1)
	require.Equal(t, "Invalid item_id", errs[0].Message)
	require.Equal(t, []interface{}{"skyblock", "bazaar"}, errs[0].Path)
	require.Equal(t, "BAD_USER_INPUT", errs[0].Extensions["code"])
	require.Equal(t, int32(0), c.bazaar)
}

func TestBazaarWithoutIDList(t *testing.T) {
	var c calls
	src := fakeSources(&c)
	src.FetchCachedValue = func(ctx context.Context, key string) (string, bool, error) {
		return "", false, nil
	}
	cl := newClient(t, src)

	_, errs := run(t, cl, `{ skyblock { bazaar(item_id: "A") } }`)
	require.Len(t, errs, 1)
	require.Equal(t, int32(0), c.bazaar)

	data, errs := run(t, cl, `{ skyblock { bazaar } }`)
	require.Empty(t, errs)
	require.JSONEq(t, `{"skyblock":{"bazaar":{"A":1,"B":2}}}`, data)
}

func TestBoosters(t *testing.T) {
	var c calls
	data, errs := run(t, newClient(t, fakeSources(&c)), `{
		boosters {
			all { game boosters { uuid multiplier } }
			Walls { uuid length }
			Quake { uuid }
			BedWars { uuid }
		}
	}`)
	require.Empty(t, errs)
	require.JSONEq(t, `{"boosters":{
		"all":[
			{"game":"Walls","boosters":[{"uuid":"b1","multiplier":2}]},
			{"game":"Quake","boosters":[]}],
		"Walls":[{"uuid":"b1","length":3600}],
		"Quake":[],
		"BedWars":null}}`, data)
	require.Equal(t, int32(1), c.boosters)
}

func TestRecentGames(t *testing.T) {
	var c calls
	data, errs := run(t, newClient(t, fakeSources(&c)),
		`{ players { recent_games(player_name: "sloth") { date gameType mode } } }`)
	require.Empty(t, errs)
	require.JSONEq(t, `{"players":{"recent_games":[
		{"date":1,"gameType":"BedWars","mode":"EIGHT_ONE"},
		{"date":2,"gameType":"UNKNOWN_GAME","mode":null},
		{"date":3,"gameType":"Quake","mode":null}]}}`, data)
}

func TestPlayerFieldsFetchSeparately(t *testing.T) {
	var c calls
	data, errs := run(t, newClient(t, fakeSources(&c)), `{
		players {
			player(player_name: "sloth") { username level }
			achievements(player_name: "sloth")
			quests(player_name: "sloth")
		}
	}`)
	require.Empty(t, errs)
	require.JSONEq(t, `{"players":{
		"player":{"username":"sloth","level":12.5},
		"achievements":{"general_wins":3},
		"quests":{"daily":true}}}`, data)
	require.Equal(t, int32(3), c.player)
}

func TestProfileMerge(t *testing.T) {
	var c calls
	data, errs := run(t, newClient(t, fakeSources(&c)),
		`{ skyblock { profile(player_name: "sloth") { id cute_name members } } }`)
	require.Empty(t, errs)

	var result struct {
		Skyblock struct {
			Profile struct {
				ID      string                            `json:"id"`
				Members map[string]map[string]interface{} `json:"members"`
			} `json:"profile"`
		} `json:"skyblock"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &result))
	require.Equal(t, "p1", result.Skyblock.Profile.ID)
	require.Len(t, result.Skyblock.Profile.Members, 2)
	for id, member := range result.Skyblock.Profile.Members {
		player, ok := member["player"].(map[string]interface{})
		require.True(t, ok, "member %s has no player", id)
		require.Equal(t, "name-"+id, player["username"])
	}
	require.Equal(t, int32(1), c.batch)
}

func TestProfileMergeMissingMember(t *testing.T) {
	var c calls
	src := fakeSources(&c)
	src.FetchPlayersBatch = func(ctx context.Context, refs []model.PlayerRef) ([]model.PopulatedPlayer, error) {
		return []model.PopulatedPlayer{{Profile: &model.Player{UUID: "coop", Username: "coop"}}}, nil
	}
	data, errs := run(t, newClient(t, src), `{ skyblock { profile(player_name: "sloth") { members } } }`)
	require.Empty(t, errs)

	var result struct {
		Skyblock struct {
			Profile struct {
				Members map[string]map[string]interface{} `json:"members"`
			} `json:"profile"`
		} `json:"skyblock"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &result))
	members := result.Skyblock.Profile.Members
	require.Contains(t, members["coop"], "player")
	require.NotContains(t, members["uuid-sloth"], "player")
	require.Equal(t, 10.0, members["uuid-sloth"]["coin_purse"])
}

func TestProfileCancelledBeforeMerge(t *testing.T) {
	var c calls
	src := fakeSources(&c)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	populate := src.FetchPlayersBatch
	src.FetchPlayersBatch = func(ctx context.Context, refs []model.PlayerRef) ([]model.PopulatedPlayer, error) {
		cancel()
		return populate(ctx, refs)
	}
	data, errs := run(t, newClient(t, src), `{ skyblock { profile(player_name: "sloth") { id } } }`,
		func(r *client.Request) { r.HTTP = r.HTTP.WithContext(ctx) })
	require.JSONEq(t, `{"skyblock":{"profile":null}}`, data)
	require.Len(t, errs, 1)
	require.Equal(t, "CANCELLED", errs[0].Extensions["code"])
}

func TestFailureIsolation(t *testing.T) {
	var c calls
	src := fakeSources(&c)
	src.FetchPlayer = func(ctx context.Context, name string) (*model.Player, error) {
		return nil, slotherr.UpstreamF("player store unavailable")
	}
	data, errs := run(t, newClient(t, src), `{
		players { player(player_name: "sloth") { username } }
		skyblock { items }
		bans { watchdog { daily } }
	}`)
	require.JSONEq(t, `{
		"players":{"player":null},
		"skyblock":{"items":{"HYPERION":{"name":"Hyperion"}}},
		"bans":{"watchdog":{"daily":10}}}`, data)
	require.Len(t, errs, 1)
	require.Equal(t, "player store unavailable", errs[0].Message)
	require.Equal(t, []interface{}{"players", "player"}, errs[0].Path)
	require.Equal(t, "UPSTREAM_ERROR", errs[0].Extensions["code"])
}

func TestPanicIsolation(t *testing.T) {
	var c calls
	src := fakeSources(&c)
	src.FetchBanSnapshot = func(ctx context.Context) (*model.Bans, error) {
		panic("boom")
	}
	data, errs := run(t, newClient(t, src), `{ bans { staff { total } } metadata { version } }`)
	require.JSONEq(t, `{"bans":null,"metadata":{"version":"test"}}`, data)
	require.Len(t, errs, 1)
	require.Equal(t, "INTERNAL_ERROR", errs[0].Extensions["code"])
}

func TestNotFound(t *testing.T) {
	var c calls
	data, errs := run(t, newClient(t, fakeSources(&c)),
		`{ skyblock { profiles(player_name: "nobody") } }`)
	require.JSONEq(t, `{"skyblock":{"profiles":null}}`, data)
	require.Len(t, errs, 1)
	require.Equal(t, "NOT_FOUND", errs[0].Extensions["code"])
}

func TestCachedDocumentsDefaultToEmpty(t *testing.T) {
	var c calls
	src := fakeSources(&c)
	src.FetchCachedValue = func(ctx context.Context, key string) (string, bool, error) {
		return "", false, nil
	}
	data, errs := run(t, newClient(t, src), `{ skyblock { items profiles(player_name: "sloth") } }`)
	require.Empty(t, errs)
	require.JSONEq(t, `{"skyblock":{"items":{},"profiles":{}}}`, data)
}

func TestCachedProfiles(t *testing.T) {
	var c calls
	src := fakeSources(&c)
	var gotKey string
	src.FetchCachedValue = func(ctx context.Context, key string) (string, bool, error) {
		gotKey = key
		return `{"p1":{"cute_name":"Mango"}}`, true, nil
	}
	data, errs := run(t, newClient(t, src), `{ skyblock { profiles(player_name: "sloth") } }`)
	require.Empty(t, errs)
	require.JSONEq(t, `{"skyblock":{"profiles":{"p1":{"cute_name":"Mango"}}}}`, data)
	require.Equal(t, "skyblock_profiles:uuid-sloth", gotKey)
}

func TestAuctions(t *testing.T) {
	var c calls
	src := fakeSources(&c)
	var gotFrom, gotTo int64
	byID := src.QueryAuctionByID
	src.QueryAuctionByID = func(ctx context.Context, from, to int64, itemID string) ([]model.Auction, error) {
		gotFrom, gotTo = from, to
		return byID(ctx, from, to, itemID)
	}
	data, errs := run(t, newClient(t, src),
		`{ skyblock { auctions(item_id: "HYPERION", from: 1000) { uuid item_id highest_bid } } }`)
	require.Empty(t, errs)
	require.JSONEq(t, `{"skyblock":{"auctions":[
		{"uuid":"a1","item_id":"HYPERION","highest_bid":100},
		{"uuid":"a2","item_id":"HYPERION","highest_bid":300},
		{"uuid":"a3","item_id":"HYPERION","highest_bid":0}]}}`, data)
	require.Equal(t, int64(1000), gotFrom)
	require.Equal(t, int64(0), gotTo)
}

func TestAuctionStats(t *testing.T) {
	var c calls
	src := fakeSources(&c)
	cl := newClient(t, src)
	data, errs := run(t, cl, `{ skyblock { auction_stats(item_id: "HYPERION") {
		average_price median_price standard_deviation min_price max_price sold } } }`)
	require.Empty(t, errs)
	require.JSONEq(t, `{"skyblock":{"auction_stats":{
		"average_price":200,"median_price":200,"standard_deviation":100,
		"min_price":100,"max_price":300,"sold":2}}}`, data)

	src.QueryAuctionByID = func(ctx context.Context, from, to int64, itemID string) ([]model.Auction, error) {
		return nil, nil
	}
	data, errs = run(t, newClient(t, src), `{ skyblock { auction_stats(item_id: "NONE") { average_price sold } } }`)
	require.Empty(t, errs)
	require.JSONEq(t, `{"skyblock":{"auction_stats":{"average_price":null,"sold":0}}}`, data)
}

func TestAllAuctionsPassesArguments(t *testing.T) {
	var c calls
	src := fakeSources(&c)
	var got map[string]interface{}
	src.QueryAuctionsByFilter = func(ctx context.Context, args map[string]interface{}) ([]model.Auction, error) {
		got = args
		return nil, nil
	}
	data, errs := run(t, newClient(t, src),
		`{ skyblock { all_auctions(category: "weapon", active: true, limit: 5) { uuid } } }`)
	require.Empty(t, errs)
	require.JSONEq(t, `{"skyblock":{"all_auctions":null}}`, data)
	require.Equal(t, "weapon", got["category"])
	require.Equal(t, true, got["active"])
	require.EqualValues(t, 5, got["limit"])
	require.NotContains(t, got, "rarity")
}

func TestRootFields(t *testing.T) {
	var c calls
	data, errs := run(t, newClient(t, fakeSources(&c)), `{
		guild(player_name: "sloth", populate_players: true) { name members { rank profile { username } } }
		leaderboards(type: "players", sortBy: "karma")
		get_leaderboard_template(template: "general_level")
		metadata { version counts }
		bans { watchdog { last_minute daily total } staff { daily total } }
	}`)
	require.Empty(t, errs)
	require.JSONEq(t, `{
		"guild":{"name":"Sloths","members":[{"rank":"Guild Master","profile":{"username":"sloth"}}]},
		"leaderboards":[{"type":"players","sortBy":"karma"}],
		"get_leaderboard_template":[{"template":"general_level"}],
		"metadata":{"version":"test","counts":{"players":2}},
		"bans":{"watchdog":{"last_minute":1,"daily":10,"total":100},"staff":{"daily":2,"total":20}}}`, data)
}

func TestAliasesAndTypename(t *testing.T) {
	var c calls
	data, errs := run(t, newClient(t, fakeSources(&c)), `{
		sb: skyblock { __typename first: bazaar(item_id: "A") second: bazaar(item_id: "B") }
	}`)
	require.Empty(t, errs)
	require.JSONEq(t, `{"sb":{"__typename":"Skyblock","first":1,"second":2}}`, data)
}

func TestIntrospectionDisabled(t *testing.T) {
	var c calls
	data, errs := run(t, newClient(t, fakeSources(&c)), `{ __type(name: "Query") { name } }`)
	require.JSONEq(t, `{"__type":null}`, data)
	require.Len(t, errs, 1)
	require.Equal(t, "introspection disabled", errs[0].Message)
}
