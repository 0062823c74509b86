package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/slothpixel/sloth/internal/hypixel"
	"github.com/slothpixel/sloth/internal/model"
)

// Sources are the data access adapters the resolvers call. Each one owns its connections and
// caching; resolvers only orchestrate them.
type Sources struct {
	FetchPlayer       func(ctx context.Context, name string) (*model.Player, error)
	FetchPlayersBatch func(ctx context.Context, refs []model.PlayerRef) ([]model.PopulatedPlayer, error)

	FetchBazaarSnapshot  func(ctx context.Context) (map[string]model.BazaarProduct, error)
	FetchBanSnapshot     func(ctx context.Context) (*model.Bans, error)
	FetchBoosterSnapshot func(ctx context.Context) (*model.BoosterSnapshot, error)

	// args holds the all_auctions arguments as sent.
	QueryAuctionsByFilter func(ctx context.Context, args map[string]interface{}) ([]model.Auction, error)
	// Zero from or to leaves that side of the range open.
	QueryAuctionByID func(ctx context.Context, from, to int64, itemID string) ([]model.Auction, error)

	BuildSkyblockProfile func(ctx context.Context, uuid, profileID string, populate bool) (*model.SkyblockProfile, error)
	FetchGuildForPlayer  func(ctx context.Context, name string, populatePlayers bool) (*model.Guild, error)

	// Exactly one of params and template is set.
	ComputeLeaderboard func(ctx context.Context, params map[string]interface{}, template *string) ([]model.LeaderboardRow, error)

	ResolveUUID      func(ctx context.Context, name string) (string, error)
	FetchCachedValue func(ctx context.Context, key string) (value string, ok bool, err error)
	FetchJobPayload  func(ctx context.Context, job hypixel.Job) (json.RawMessage, error)

	// A nil selector returns every section.
	FetchMetadata func(ctx context.Context, selector *string) (*model.Metadata, error)
}

// Check reports the first adapter left unset.
func (s Sources) Check() error {
	v := reflect.ValueOf(s)
	for i := 0; i < v.NumField(); i++ {
		if v.Field(i).IsNil() {
			return fmt.Errorf("data source %s not configured", v.Type().Field(i).Name)
		}
	}
	return nil
}
