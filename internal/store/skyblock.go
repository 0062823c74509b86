package store

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/slothpixel/sloth/internal/cache"
	"github.com/slothpixel/sloth/internal/hypixel"
	"github.com/slothpixel/sloth/internal/model"
	"github.com/slothpixel/sloth/internal/util/slothlog"
	"github.com/slothpixel/sloth/internal/util/slotherr"
	"github.com/slothpixel/sloth/internal/util/timer"
)

var profileTimer = timer.NewMilli("store_skyblock_profile")

// profileSummary is the cached per player index of profiles.
type profileSummary struct {
	ProfileID string   `json:"profile_id"`
	CuteName  string   `json:"cute_name"`
	FirstJoin int64    `json:"first_join"`
	LastSave  int64    `json:"last_save"`
	Members   []string `json:"members"`
}

// BuildSkyblockProfile returns the profile profileID of the player, or the one the player
// saved last for an empty profileID. Without populate only the player's own member entry
// is kept.
func (s *Store) BuildSkyblockProfile(ctx context.Context, uuid, profileID string, populate bool) (*model.SkyblockProfile, error) {
	defer profileTimer.One()()
	body, err := s.FetchJobPayload(ctx, hypixel.GenerateJob(hypixel.SkyblockProfilesJob, uuid))
	if err != nil {
		return nil, err
	}
	profiles := gjson.GetBytes(body, "profiles").Array()
	s.storeProfileIndex(ctx, uuid, profiles)

	var selected gjson.Result
	var lastSave int64 = -1
	for _, p := range profiles {
		if profileID != "" {
			if strings.EqualFold(p.Get("profile_id").String(), profileID) {
				selected = p
				break
			}
			continue
		}
		if save := p.Get("members." + uuid + ".last_save").Int(); lastSave < save {
			lastSave = save
			selected = p
		}
	}
	if !selected.Exists() {
		if profileID != "" {
			return nil, slotherr.NotFoundF("profile %s not found for %s", profileID, uuid)
		}
		return nil, slotherr.NotFoundF("%s has no skyblock profiles", uuid)
	}
	return buildProfile(selected, uuid, populate), nil
}

func buildProfile(p gjson.Result, uuid string, populate bool) *model.SkyblockProfile {
	ret := &model.SkyblockProfile{
		ID:       p.Get("profile_id").String(),
		CuteName: p.Get("cute_name").String(),
		Banking:  objectMap(p.Get("banking")),
		Members:  map[string]*model.ProfileMember{},
	}
	p.Get("members").ForEach(func(key, m gjson.Result) bool {
		id := key.String()
		if !populate && id != uuid {
			return true
		}
		ret.Members[id] = buildMember(id, m)
		return true
	})
	return ret
}

const skillPrefix = "experience_skill_"

func buildMember(id string, m gjson.Result) *model.ProfileMember {
	member := &model.ProfileMember{
		UUID:       id,
		FirstJoin:  m.Get("first_join").Int(),
		LastSave:   m.Get("last_save").Int(),
		CoinPurse:  m.Get("coin_purse").Float(),
		FairySouls: m.Get("fairy_souls_collected").Int(),
		Stats:      objectMap(m.Get("stats")),
	}
	m.ForEach(func(key, v gjson.Result) bool {
		if name := key.String(); strings.HasPrefix(name, skillPrefix) {
			if member.Skills == nil {
				member.Skills = map[string]interface{}{}
			}
			member.Skills[strings.TrimPrefix(name, skillPrefix)] = v.Float()
		}
		return true
	})
	return member
}

// storeProfileIndex caches the player's profile index, keyed by profile id.
func (s *Store) storeProfileIndex(ctx context.Context, uuid string, profiles []gjson.Result) {
	index := make(map[string]profileSummary, len(profiles))
	for _, p := range profiles {
		summary := profileSummary{
			ProfileID: p.Get("profile_id").String(),
			CuteName:  p.Get("cute_name").String(),
			FirstJoin: p.Get("members." + uuid + ".first_join").Int(),
			LastSave:  p.Get("members." + uuid + ".last_save").Int(),
			Members:   []string{},
		}
		p.Get("members").ForEach(func(key, _ gjson.Result) bool {
			summary.Members = append(summary.Members, key.String())
			return true
		})
		index[summary.ProfileID] = summary
	}
	data, err := json.Marshal(index)
	if err == nil {
		err = s.Cache.Set(ctx, cache.SkyblockProfilesKey(uuid), data, s.TTL.Profiles)
	}
	if err != nil {
		logger.WarnT(slothlog.Tags(slothlog.Str("uuid", uuid), slothlog.Err(err)), "Profile index not stored")
	}
}
