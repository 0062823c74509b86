package store

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/tidwall/gjson"

	"github.com/slothpixel/sloth/internal/db"
	"github.com/slothpixel/sloth/internal/model"
	"github.com/slothpixel/sloth/internal/util/slotherr"
	"github.com/slothpixel/sloth/internal/util/timer"
)

var leaderboardTimer = timer.NewMilli("store_leaderboard")

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 1000
)

// Predefined leaderboards, in the shape of the leaderboards query arguments.
var leaderboardTemplates = map[string]map[string]interface{}{
	"general_level": {
		"type": "players", "sortBy": "level", "columns": "uuid,username,rank,level", "limit": int64(100),
	},
	"general_karma": {
		"type": "players", "sortBy": "karma", "columns": "uuid,username,rank,karma", "limit": int64(100),
	},
	"general_achievement_points": {
		"type": "players", "sortBy": "achievement_points",
		"columns": "uuid,username,rank,achievement_points", "limit": int64(100),
	},
	"general_quests_completed": {
		"type": "players", "sortBy": "quests_completed",
		"columns": "uuid,username,rank,quests_completed", "limit": int64(100),
	},
	"guild_level": {
		"type": "guilds", "sortBy": "exp", "columns": "id,name,tag,level,exp", "limit": int64(100),
	},
}

// Documents a leaderboard can rank, by type.
var leaderboardTables = map[string]struct {
	table   string
	columns string
}{
	"players": {"players", "uuid,username"},
	"guilds":  {"guilds", "id,name"},
}

var (
	pathRE   = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)*$`)
	filterRE = regexp.MustCompile(`^([A-Za-z0-9_.]+)(>=|<=|=|>|<)(.+)$`)
)

// ComputeLeaderboard ranks documents by a numeric JSON path. Either params or the name of
// a predefined leaderboard is given.
func (s *Store) ComputeLeaderboard(ctx context.Context, params map[string]interface{}, template *string) ([]model.LeaderboardRow, error) {
	defer leaderboardTimer.One()()
	if template != nil {
		t, ok := leaderboardTemplates[*template]
		if !ok {
			return nil, slotherr.NotFoundF("no leaderboard template %q", *template)
		}
		params = t
	}

	kind, ok := leaderboardTables[stringParam(params, "type")]
	if !ok {
		return nil, slotherr.ValidationF("leaderboard type must be players or guilds")
	}
	sortBy := stringParam(params, "sortBy")
	if !pathRE.MatchString(sortBy) {
		return nil, slotherr.ValidationF("invalid sortBy %q", sortBy)
	}
	order := "DESC"
	if desc, ok := boolParam(params, "sortDesc"); ok && !desc {
		order = "ASC"
	}

	var args queryArgs
	var filters []string
	if filter := stringParam(params, "filter"); filter != "" {
		for _, clause := range strings.Split(filter, ",") {
			m := filterRE.FindStringSubmatch(strings.TrimSpace(clause))
			if m == nil || !pathRE.MatchString(m[1]) {
				return nil, slotherr.ValidationF("invalid filter %q", clause)
			}
			field := "data #>> " + args.add(pq.Array(strings.Split(m[1], "."))) + "::TEXT[]"
			if m[2] == "=" {
				filters = append(filters, field+" = "+args.add(m[3]))
				continue
			}
			if _, err := strconv.ParseFloat(m[3], 64); err != nil {
				return nil, slotherr.ValidationF("filter %q compares with a non-number", clause)
			}
			filters = append(filters, "("+field+")::NUMERIC "+m[2]+" "+args.add(m[3])+"::NUMERIC")
		}
	}

	columns := stringParam(params, "columns")
	if columns == "" {
		columns = kind.columns + "," + sortBy
	}
	paths := strings.Split(columns, ",")
	for i, p := range paths {
		paths[i] = strings.TrimSpace(p)
		if !pathRE.MatchString(paths[i]) {
			return nil, slotherr.ValidationF("invalid column %q", p)
		}
	}

	limit, err := intParam(params, "limit", defaultLeaderboardLimit)
	if err != nil {
		return nil, err
	}
	if limit < 1 || maxLeaderboardLimit < limit {
		return nil, slotherr.ValidationF("limit must be between 1 and %d", maxLeaderboardLimit)
	}
	offset, err := offsetParam(params, limit)
	if err != nil {
		return nil, err
	}

	sortPath := args.add(pq.Array(strings.Split(sortBy, ".")))
	q := `SELECT data FROM ` + kind.table + ` ` + db.Where(filters...) +
		` ORDER BY (data #>> ` + sortPath + `::TEXT[])::NUMERIC ` + order + ` NULLS LAST` +
		` LIMIT ` + args.add(limit) + ` OFFSET ` + args.add(offset)

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, queryFailed("leaderboard query", err)
	}
	defer rows.Close()

	ret := []model.LeaderboardRow{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, slotherr.UpstreamE("leaderboard read", err)
		}
		row := make(model.LeaderboardRow, len(paths))
		for _, p := range paths {
			row[p] = gjson.GetBytes(data, p).Value()
		}
		ret = append(ret, row)
	}
	if err := rows.Err(); err != nil {
		return nil, queryFailed("leaderboard read", err)
	}
	return ret, nil
}
