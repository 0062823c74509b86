package graphql

import (
	"context"
	"encoding/json"

	"github.com/slothpixel/sloth/internal/games"
	"github.com/slothpixel/sloth/internal/hypixel"
	"github.com/slothpixel/sloth/internal/model"
	"github.com/slothpixel/sloth/internal/util/slotherr"
)

func (r *Resolver) playerFields() fieldTable {
	return fieldTable{
		"player":       r.player,
		"achievements": r.achievements,
		"quests":       r.quests,
		"recent_games": r.recentGames,
	}
}

func (r *Resolver) player(ctx context.Context, _ interface{}, args map[string]interface{}) (interface{}, error) {
	name, err := requireString(args, "player_name")
	if err != nil {
		return nil, err
	}
	return value(r.src.FetchPlayer(ctx, name))
}

// achievements and quests fetch the player on their own, even when the same selection
// asks for the player too.
func (r *Resolver) achievements(ctx context.Context, _ interface{}, args map[string]interface{}) (interface{}, error) {
	p, err := r.playerArg(ctx, args)
	if err != nil {
		return nil, err
	}
	return p.Achievements, nil
}

func (r *Resolver) quests(ctx context.Context, _ interface{}, args map[string]interface{}) (interface{}, error) {
	p, err := r.playerArg(ctx, args)
	if err != nil {
		return nil, err
	}
	return p.Quests, nil
}

func (r *Resolver) playerArg(ctx context.Context, args map[string]interface{}) (*model.Player, error) {
	name, err := requireString(args, "player_name")
	if err != nil {
		return nil, err
	}
	p, err := r.src.FetchPlayer(ctx, name)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, slotherr.NotFoundF("player %s not found", name)
	}
	return p, nil
}

type recentGamesPayload struct {
	Games []model.RecentGame `json:"games"`
}

// recentGames returns new records in upstream order with game types renamed to standard
// names. The cached payload is left as it is.
func (r *Resolver) recentGames(ctx context.Context, _ interface{}, args map[string]interface{}) (interface{}, error) {
	name, err := requireString(args, "player_name")
	if err != nil {
		return nil, err
	}
	uuid, err := r.src.ResolveUUID(ctx, name)
	if err != nil {
		return nil, err
	}
	raw, err := r.src.FetchJobPayload(ctx, hypixel.GenerateJob(hypixel.RecentGamesJob, uuid))
	if err != nil {
		return nil, err
	}
	var payload recentGamesPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, slotherr.UpstreamE("recent games payload", err)
	}
	ret := make([]model.RecentGame, len(payload.Games))
	for i, g := range payload.Games {
		g.GameType = games.TypeToStandardName(g.GameType)
		ret[i] = g
	}
	return ret, nil
}
