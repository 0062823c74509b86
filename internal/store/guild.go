package store

import (
	"context"
	"encoding/json"

	"github.com/lib/pq"
	"github.com/tidwall/gjson"

	"github.com/slothpixel/sloth/internal/games"
	"github.com/slothpixel/sloth/internal/hypixel"
	"github.com/slothpixel/sloth/internal/model"
	"github.com/slothpixel/sloth/internal/util/slothlog"
	"github.com/slothpixel/sloth/internal/util/slotherr"
	"github.com/slothpixel/sloth/internal/util/timer"
)

var guildTimer = timer.NewMilli("store_guild")

// FetchGuildForPlayer returns the guild the player is in. With populatePlayers every
// member found gets its player record.
func (s *Store) FetchGuildForPlayer(ctx context.Context, name string, populatePlayers bool) (*model.Guild, error) {
	defer guildTimer.One()()
	uuid, err := s.ResolveUUID(ctx, name)
	if err != nil {
		return nil, err
	}
	body, err := s.FetchJobPayload(ctx, hypixel.GenerateJob(hypixel.GuildJob, uuid))
	if err != nil {
		return nil, err
	}
	raw := gjson.GetBytes(body, "guild")
	if !raw.IsObject() {
		return nil, slotherr.NotFoundF("%s is not in a guild", name)
	}
	guild := buildGuild(raw)
	s.storeGuild(ctx, guild)

	if populatePlayers && len(guild.Members) != 0 {
		refs := make([]model.PlayerRef, len(guild.Members))
		for i, m := range guild.Members {
			refs[i] = model.PlayerRef{UUID: m.UUID}
		}
		players, err := s.FetchPlayersBatch(ctx, refs)
		if err != nil {
			return nil, err
		}
		byUUID := make(map[string]*model.Player, len(players))
		for _, p := range players {
			if p.Profile != nil {
				byUUID[p.Profile.UUID] = p.Profile
			}
		}
		for i := range guild.Members {
			guild.Members[i].Profile = byUUID[guild.Members[i].UUID]
		}
	}
	return guild, nil
}

func buildGuild(raw gjson.Result) *model.Guild {
	exp := raw.Get("exp").Int()
	g := &model.Guild{
		ID:             raw.Get("_id").String(),
		Name:           raw.Get("name").String(),
		Tag:            raw.Get("tag").String(),
		TagColor:       raw.Get("tagColor").String(),
		Created:        raw.Get("created").Int(),
		Exp:            exp,
		Level:          guildLevel(exp),
		Description:    raw.Get("description").String(),
		PreferredGames: []string{},
		Members:        []model.GuildMember{},
	}
	raw.Get("preferredGames").ForEach(func(_, v gjson.Result) bool {
		g.PreferredGames = append(g.PreferredGames, games.TypeToStandardName(v.String()))
		return true
	})
	raw.Get("members").ForEach(func(_, m gjson.Result) bool {
		member := model.GuildMember{
			UUID:               m.Get("uuid").String(),
			Rank:               m.Get("rank").String(),
			Joined:             m.Get("joined").Int(),
			QuestParticipation: m.Get("questParticipation").Int(),
		}
		m.Get("expHistory").ForEach(func(day, v gjson.Result) bool {
			if member.ExpHistory == nil {
				member.ExpHistory = map[string]int64{}
			}
			member.ExpHistory[day.String()] = v.Int()
			return true
		})
		g.Members = append(g.Members, member)
		return true
	})
	return g
}

// Experience needed per guild level. Past the table every level takes the last value.
var guildLevelExp = []int64{
	100000, 150000, 250000, 500000, 750000, 1000000, 1250000, 1500000,
	2000000, 2500000, 2500000, 2500000, 2500000, 2500000, 3000000,
}

// guildLevel is fractional, two decimals.
func guildLevel(exp int64) float64 {
	level := 0
	for {
		need := guildLevelExp[len(guildLevelExp)-1]
		if level < len(guildLevelExp) {
			need = guildLevelExp[level]
		}
		if exp < need {
			frac := float64(exp) / float64(need)
			return float64(int64((float64(level)+frac)*100)) / 100
		}
		exp -= need
		level++
	}
}

func (s *Store) storeGuild(ctx context.Context, g *model.Guild) {
	if g.ID == "" {
		return
	}
	members := make([]string, len(g.Members))
	for i, m := range g.Members {
		members[i] = m.UUID
	}
	data, err := json.Marshal(g)
	if err == nil {
		_, err = s.DB.ExecContext(ctx,
			`INSERT INTO guilds (id, name, member_uuids, data, updated_at) VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, member_uuids = EXCLUDED.member_uuids,
				data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
			g.ID, g.Name, pq.Array(members), data)
	}
	if err != nil {
		logger.WarnT(slothlog.Tags(slothlog.Str("guild", g.ID), slothlog.Err(err)), "Guild upsert failed")
	}
}
