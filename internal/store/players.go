package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/lib/pq"
	"github.com/tidwall/gjson"

	"github.com/slothpixel/sloth/internal/hypixel"
	"github.com/slothpixel/sloth/internal/model"
	"github.com/slothpixel/sloth/internal/util/slothlog"
	"github.com/slothpixel/sloth/internal/util/slotherr"
	"github.com/slothpixel/sloth/internal/util/timer"
)

var (
	playerTimer = timer.NewMilli("store_player")
	batchTimer  = timer.NewMilli("store_players_batch")
)

// FetchPlayer serves the stored document while it is fresher than the job TTL. Stale
// documents are refreshed from upstream, and served as they are if that fails.
func (s *Store) FetchPlayer(ctx context.Context, name string) (*model.Player, error) {
	defer playerTimer.One()()
	uuid, err := s.ResolveUUID(ctx, name)
	if err != nil {
		return nil, err
	}

	var data []byte
	var updatedAt time.Time
	err = s.DB.QueryRowContext(ctx,
		`SELECT data, updated_at FROM players WHERE uuid = $1`, uuid).Scan(&data, &updatedAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, slotherr.UpstreamE("players query", err)
	}
	var stored *model.Player
	if err == nil {
		stored = &model.Player{}
		if err := json.Unmarshal(data, stored); err != nil {
			return nil, slotherr.InternalErrE(err)
		}
		if s.TTL.Jobs <= 0 || time.Since(updatedAt) < s.TTL.Jobs {
			return stored, nil
		}
	}

	p, err := s.fetchUpstreamPlayer(ctx, uuid)
	if err != nil {
		if stored != nil && !slotherr.IsNotFound(err) && ctx.Err() == nil {
			logger.WarnT(slothlog.Tags(slothlog.Str("uuid", uuid), slothlog.Err(err)),
				"Serving stale player")
			return stored, nil
		}
		return nil, err
	}
	return p, nil
}

// FetchPlayersBatch returns the players found, in no particular order. Players that cannot
// be fetched are left out.
func (s *Store) FetchPlayersBatch(ctx context.Context, refs []model.PlayerRef) ([]model.PopulatedPlayer, error) {
	defer batchTimer.One()()
	if len(refs) == 0 {
		return []model.PopulatedPlayer{}, nil
	}
	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = ref.UUID
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT uuid, data FROM players WHERE uuid = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, slotherr.UpstreamE("players batch query", err)
	}
	defer rows.Close()

	found := make(map[string]bool, len(ids))
	ret := make([]model.PopulatedPlayer, 0, len(ids))
	for rows.Next() {
		var uuid string
		var data []byte
		if err := rows.Scan(&uuid, &data); err != nil {
			return nil, slotherr.UpstreamE("players batch read", err)
		}
		var p model.Player
		if err := json.Unmarshal(data, &p); err != nil {
			logger.WarnT(slothlog.Tags(slothlog.Str("uuid", uuid), slothlog.Err(err)),
				"Skipping malformed player document")
			continue
		}
		found[uuid] = true
		ret = append(ret, model.PopulatedPlayer{Profile: &p})
	}
	if err := rows.Err(); err != nil {
		return nil, slotherr.UpstreamE("players batch read", err)
	}

	for _, id := range ids {
		if found[id] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := s.fetchUpstreamPlayer(ctx, id)
		if err != nil {
			logger.WarnT(slothlog.Tags(slothlog.Str("uuid", id), slothlog.Err(err)),
				"Player left out of batch")
			continue
		}
		found[id] = true
		ret = append(ret, model.PopulatedPlayer{Profile: p})
	}
	return ret, nil
}

func (s *Store) fetchUpstreamPlayer(ctx context.Context, uuid string) (*model.Player, error) {
	body, err := s.Hypixel.Get(ctx, hypixel.GenerateJob(hypixel.PlayerJob, uuid).Path)
	if err != nil {
		return nil, err
	}
	raw := gjson.GetBytes(body, "player")
	if !raw.IsObject() {
		return nil, slotherr.NotFoundF("player %s has never joined", uuid)
	}
	p := buildPlayer(raw)
	if p.UUID == "" {
		p.UUID = uuid
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, slotherr.InternalErrE(err)
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO players (uuid, username, data, updated_at) VALUES ($1, $2, $3, NOW())
		ON CONFLICT (uuid) DO UPDATE SET
			username = EXCLUDED.username, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		p.UUID, p.Username, data)
	if err != nil {
		logger.WarnT(slothlog.Tags(slothlog.Str("uuid", p.UUID), slothlog.Err(err)),
			"Player upsert failed")
	}
	return p, nil
}

// buildPlayer converts the upstream player object.
func buildPlayer(raw gjson.Result) *model.Player {
	exp := raw.Get("networkExp").Float()
	p := &model.Player{
		UUID:              raw.Get("uuid").String(),
		Username:          raw.Get("displayname").String(),
		Rank:              rank(raw),
		Exp:               exp,
		Level:             networkLevel(exp),
		Karma:             raw.Get("karma").Int(),
		AchievementPoints: raw.Get("achievementPoints").Int(),
		FirstLogin:        raw.Get("firstLogin").Int(),
		LastLogin:         raw.Get("lastLogin").Int(),
		LastGame:          raw.Get("mostRecentGameType").String(),
		MCVersion:         raw.Get("mcVersionRp").String(),
		Achievements:      objectMap(raw.Get("achievements")),
		Quests:            objectMap(raw.Get("quests")),
		Stats:             objectMap(raw.Get("stats")),
		Links:             objectMap(raw.Get("socialMedia.links")),
	}
	p.Online = p.LastLogin > raw.Get("lastLogout").Int()
	raw.Get("quests").ForEach(func(_, quest gjson.Result) bool {
		p.QuestsCompleted += quest.Get("completions.#").Int()
		return true
	})
	return p
}

// networkLevel is the two decimal network level for the total network experience.
func networkLevel(exp float64) float64 {
	level := math.Sqrt(2*exp+30625)/50 - 2.5
	return math.Round(level*100) / 100
}

func rank(raw gjson.Result) string {
	if r := raw.Get("rank").String(); r != "" && r != "NORMAL" {
		return r
	}
	if raw.Get("monthlyPackageRank").String() == "SUPERSTAR" {
		return "MVP_PLUS_PLUS"
	}
	for _, path := range []string{"newPackageRank", "packageRank"} {
		if r := raw.Get(path).String(); r != "" && r != "NONE" {
			return r
		}
	}
	return ""
}

func objectMap(r gjson.Result) map[string]interface{} {
	m, ok := r.Value().(map[string]interface{})
	if !ok {
		return nil
	}
	return m
}
