// Package model holds the domain results returned by the data access adapters.
// JSON field names are the field names of the query schema.
package model

import "encoding/json"

type Player struct {
	UUID              string                 `json:"uuid"`
	Username          string                 `json:"username"`
	Online            bool                   `json:"online"`
	Rank              string                 `json:"rank,omitempty"`
	Level             float64                `json:"level"`
	Exp               float64                `json:"exp"`
	Karma             int64                  `json:"karma"`
	AchievementPoints int64                  `json:"achievement_points"`
	QuestsCompleted   int64                  `json:"quests_completed"`
	FirstLogin        int64                  `json:"first_login,omitempty"`
	LastLogin         int64                  `json:"last_login,omitempty"`
	LastGame          string                 `json:"last_game,omitempty"`
	MCVersion         string                 `json:"mc_version,omitempty"`
	Achievements      map[string]interface{} `json:"achievements,omitempty"`
	Quests            map[string]interface{} `json:"quests,omitempty"`
	Stats             map[string]interface{} `json:"stats,omitempty"`
	Links             map[string]interface{} `json:"links,omitempty"`
}

// PlayerRef is the input element of the batch populate adapter.
type PlayerRef struct {
	UUID string `json:"uuid"`
}

// PopulatedPlayer is the output element of the batch populate adapter.
type PopulatedPlayer struct {
	Profile *Player `json:"profile"`
}

type GuildMember struct {
	UUID               string           `json:"uuid"`
	Rank               string           `json:"rank"`
	Joined             int64            `json:"joined"`
	QuestParticipation int64            `json:"quest_participation"`
	ExpHistory         map[string]int64 `json:"exp_history,omitempty"`
	Profile            *Player          `json:"profile,omitempty"`
}

type Guild struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Tag            string        `json:"tag,omitempty"`
	TagColor       string        `json:"tag_color,omitempty"`
	Created        int64         `json:"created"`
	Exp            int64         `json:"exp"`
	Level          float64       `json:"level"`
	Description    string        `json:"description,omitempty"`
	PreferredGames []string      `json:"preferred_games"`
	Members        []GuildMember `json:"members"`
}

type Booster struct {
	UUID           string   `json:"uuid"`
	Multiplier     float64  `json:"multiplier"`
	Activated      int64    `json:"activated"`
	OriginalLength int64    `json:"original_length"`
	Length         int64    `json:"length"`
	Active         bool     `json:"active"`
	Stacked        []string `json:"stacked,omitempty"`
}

type GameBoosters struct {
	Game     string    `json:"game"`
	Boosters []Booster `json:"boosters"`
}

// BoosterSnapshot keeps the games in the order the upstream listed them.
type BoosterSnapshot struct {
	Boosters []GameBoosters
}

// ForGame returns ok=false for games without an entry.
func (s *BoosterSnapshot) ForGame(game string) ([]Booster, bool) {
	for _, g := range s.Boosters {
		if g.Game == game {
			return g.Boosters, true
		}
	}
	return nil, false
}

type BanCounts struct {
	LastMinute int64 `json:"last_minute,omitempty"`
	Daily      int64 `json:"daily"`
	Total      int64 `json:"total"`
}

type Bans struct {
	Watchdog BanCounts `json:"watchdog"`
	Staff    BanCounts `json:"staff"`
}

type Auction struct {
	UUID       string `json:"uuid"`
	Auctioneer string `json:"auctioneer"`
	ItemID     string `json:"item_id"`
	ItemName   string `json:"item_name,omitempty"`
	Category   string `json:"category,omitempty"`
	Tier       string `json:"tier,omitempty"`
	Start      int64  `json:"start"`
	End        int64  `json:"end"`
	StartBid   int64  `json:"starting_bid"`
	HighestBid int64  `json:"highest_bid"`
	Bin        bool   `json:"bin"`
	Bids       []Bid  `json:"bids,omitempty"`
	Claimed    bool   `json:"claimed"`
}

type Bid struct {
	Bidder    string `json:"bidder"`
	Amount    int64  `json:"amount"`
	Timestamp int64  `json:"timestamp"`
}

// AuctionStats aggregates are nil when there is no sold auction to compute them from.
type AuctionStats struct {
	AveragePrice      *float64 `json:"average_price"`
	MedianPrice       *float64 `json:"median_price"`
	StandardDeviation *float64 `json:"standard_deviation"`
	MinPrice          *float64 `json:"min_price"`
	MaxPrice          *float64 `json:"max_price"`
	Sold              int      `json:"sold"`
}

// BazaarProduct is kept as the upstream sent it.
type BazaarProduct = json.RawMessage

type ProfileMember struct {
	UUID       string                 `json:"uuid"`
	FirstJoin  int64                  `json:"first_join,omitempty"`
	LastSave   int64                  `json:"last_save,omitempty"`
	CoinPurse  float64                `json:"coin_purse"`
	FairySouls int64                  `json:"fairy_souls"`
	Skills     map[string]interface{} `json:"skills,omitempty"`
	Stats      map[string]interface{} `json:"stats,omitempty"`
	Player     *Player                `json:"player,omitempty"`
}

type SkyblockProfile struct {
	ID       string                    `json:"id"`
	CuteName string                    `json:"cute_name,omitempty"`
	Banking  map[string]interface{}    `json:"banking,omitempty"`
	Members  map[string]*ProfileMember `json:"members"`
}

type RecentGame struct {
	Date     int64  `json:"date"`
	GameType string `json:"gameType"`
	Mode     string `json:"mode,omitempty"`
	Map      string `json:"map,omitempty"`
	Ended    int64  `json:"ended,omitempty"`
}

// LeaderboardRow holds the requested columns of one ranked document.
type LeaderboardRow map[string]interface{}

type Metadata struct {
	Version string         `json:"version,omitempty"`
	Games   []string       `json:"games,omitempty"`
	Counts  map[string]int `json:"counts,omitempty"`
}
