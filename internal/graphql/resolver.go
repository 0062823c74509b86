// Package graphql provides the query interface.
//
// The schema is assembled at startup from a template and the game catalog, so there is no
// generated code: every object type that needs data fetching has a field table mapping
// field names to handlers. Types without a table are plain data projected from their
// parent's value.
package graphql

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/slothpixel/sloth/internal/util/slothlog"
	"github.com/slothpixel/sloth/internal/util/slotherr"
	"github.com/slothpixel/sloth/internal/util/timer"
)

var logger = slothlog.SubLogger("graphql")

// FieldFunc resolves one field. parent is the value its object was resolved to, args the
// field arguments with defaults applied.
type FieldFunc func(ctx context.Context, parent interface{}, args map[string]interface{}) (interface{}, error)

type fieldTable map[string]FieldFunc

const (
	queryType    = "Query"
	boostersType = "Boosters"
	playersType  = "Players"
	skyblockType = "Skyblock"
)

// Resolver maps the fields of Query and its grouping types onto Sources.
type Resolver struct {
	src    Sources
	games  []string
	tables map[string]fieldTable
}

// NewResolver builds the field tables once. games must be the list the schema was
// assembled from.
func NewResolver(src Sources, games []string) *Resolver {
	r := &Resolver{src: src, games: append([]string{}, games...)}
	root := fieldTable{
		"bans":                     r.bans,
		"boosters":                 r.boosters,
		"get_leaderboard_template": r.leaderboardTemplate,
		"guild":                    r.guild,
		"leaderboards":             r.leaderboards,
		"players":                  r.players,
		"skyblock":                 r.skyblock,
		"metadata":                 r.metadata,
	}
	for name, f := range root {
		root[name] = timed(timer.NewMilli("graphql_"+name), f)
	}
	r.tables = map[string]fieldTable{
		queryType:    root,
		boostersType: r.boosterFields(),
		playersType:  r.playerFields(),
		skyblockType: r.skyblockFields(),
	}
	return r
}

func timed(t timer.Timer, f FieldFunc) FieldFunc {
	return func(ctx context.Context, parent interface{}, args map[string]interface{}) (interface{}, error) {
		defer t.One()()
		return f(ctx, parent, args)
	}
}

// value drops typed nil results of failed adapter calls.
func value[T any](v T, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Resolver) bans(ctx context.Context, _ interface{}, _ map[string]interface{}) (interface{}, error) {
	return value(r.src.FetchBanSnapshot(ctx))
}

func (r *Resolver) boosters(ctx context.Context, _ interface{}, _ map[string]interface{}) (interface{}, error) {
	return &boosterScope{fetch: r.src.FetchBoosterSnapshot}, nil
}

func (r *Resolver) leaderboardTemplate(ctx context.Context, _ interface{}, args map[string]interface{}) (interface{}, error) {
	template, err := requireString(args, "template")
	if err != nil {
		return nil, err
	}
	return value(r.src.ComputeLeaderboard(ctx, nil, &template))
}

func (r *Resolver) guild(ctx context.Context, _ interface{}, args map[string]interface{}) (interface{}, error) {
	name, err := requireString(args, "player_name")
	if err != nil {
		return nil, err
	}
	return value(r.src.FetchGuildForPlayer(ctx, name, argBool(args, "populate_players")))
}

func (r *Resolver) leaderboards(ctx context.Context, _ interface{}, args map[string]interface{}) (interface{}, error) {
	params := make(map[string]interface{}, len(args))
	for k, v := range args {
		params[k] = v
	}
	return value(r.src.ComputeLeaderboard(ctx, params, nil))
}

// Scopes of the nested groups. They carry no arguments.
type playersScope struct{}
type skyblockScope struct{}

func (r *Resolver) players(ctx context.Context, _ interface{}, _ map[string]interface{}) (interface{}, error) {
	return playersScope{}, nil
}

func (r *Resolver) skyblock(ctx context.Context, _ interface{}, _ map[string]interface{}) (interface{}, error) {
	return skyblockScope{}, nil
}

func (r *Resolver) metadata(ctx context.Context, _ interface{}, _ map[string]interface{}) (interface{}, error) {
	return value(r.src.FetchMetadata(ctx, nil))
}

///////////////////// Arguments

func argString(args map[string]interface{}, name string) (string, bool) {
	s, ok := args[name].(string)
	return s, ok
}

func requireString(args map[string]interface{}, name string) (string, error) {
	s, ok := argString(args, name)
	if !ok || s == "" {
		return "", slotherr.ValidationF("argument %s is required", name)
	}
	return s, nil
}

func argBool(args map[string]interface{}, name string) bool {
	b, _ := args[name].(bool)
	return b
}

// argInt64 accepts what literals and decoded variables look like. Floats are truncated.
func argInt64(args map[string]interface{}, name string) (int64, bool, error) {
	switch v := args[name].(type) {
	case nil:
		return 0, false, nil
	case int:
		return int64(v), true, nil
	case int64:
		return v, true, nil
	case float64:
		return int64(v), true, nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false, slotherr.ValidationF("argument %s is not a number", name)
		}
		return int64(f), true, nil
	case string:
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false, slotherr.ValidationF("argument %s is not a number", name)
		}
		return i, true, nil
	}
	return 0, false, slotherr.ValidationF("argument %s is not a number", name)
}
