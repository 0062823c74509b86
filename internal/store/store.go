// Package store implements the data access adapters over the document store, the cache and
// the upstream API.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgconn"

	"github.com/slothpixel/sloth/internal/cache"
	"github.com/slothpixel/sloth/internal/graphql"
	"github.com/slothpixel/sloth/internal/hypixel"
	"github.com/slothpixel/sloth/internal/util/slothlog"
	"github.com/slothpixel/sloth/internal/util/slotherr"
)

var logger = slothlog.SubLogger("store")

// TTL is how long derived entries stay in the cache.
type TTL struct {
	Jobs     time.Duration
	UUIDs    time.Duration
	Profiles time.Duration
}

type Store struct {
	DB      *sql.DB
	Cache   *cache.Client
	Hypixel *hypixel.Client
	Mojang  *hypixel.Mojang
	TTL     TTL

	// Version is reported by the metadata adapter.
	Version string
}

// Sources exposes the adapters to the resolvers.
func (s *Store) Sources() graphql.Sources {
	return graphql.Sources{
		FetchPlayer:           s.FetchPlayer,
		FetchPlayersBatch:     s.FetchPlayersBatch,
		FetchBazaarSnapshot:   s.FetchBazaarSnapshot,
		FetchBanSnapshot:      s.FetchBanSnapshot,
		FetchBoosterSnapshot:  s.FetchBoosterSnapshot,
		QueryAuctionsByFilter: s.QueryAuctionsByFilter,
		QueryAuctionByID:      s.QueryAuctionByID,
		BuildSkyblockProfile:  s.BuildSkyblockProfile,
		FetchGuildForPlayer:   s.FetchGuildForPlayer,
		ComputeLeaderboard:    s.ComputeLeaderboard,
		ResolveUUID:           s.ResolveUUID,
		FetchCachedValue:      s.FetchCachedValue,
		FetchJobPayload:       s.FetchJobPayload,
		FetchMetadata:         s.FetchMetadata,
	}
}

func (s *Store) FetchCachedValue(ctx context.Context, key string) (string, bool, error) {
	return s.Cache.Get(ctx, key)
}

// FetchJobPayload serves the upstream resource of job from the cache when present.
// Cache write failures only cost a later refetch.
func (s *Store) FetchJobPayload(ctx context.Context, job hypixel.Job) (json.RawMessage, error) {
	key := cache.JobKey(job.Path)
	cached, ok, err := s.Cache.Get(ctx, key)
	if err != nil {
		logger.WarnT(slothlog.Tags(slothlog.Str("key", key), slothlog.Err(err)), "Cache read failed")
	} else if ok {
		return json.RawMessage(cached), nil
	}

	body, err := s.Hypixel.Get(ctx, job.Path)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, key, body, s.TTL.Jobs); err != nil {
		logger.WarnT(slothlog.Tags(slothlog.Str("key", key), slothlog.Err(err)), "Cache write failed")
	}
	return body, nil
}

func decodeUpstream(op string, body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return slotherr.UpstreamE(op, err)
	}
	return nil
}

// queryFailed classifies a failed document query. Postgres data exceptions, such as a text
// value cast to NUMERIC, come from the caller's parameters.
func queryFailed(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "22") {
		return slotherr.ValidationF("%s: %s", op, pgErr.Message)
	}
	return slotherr.UpstreamE(op, err)
}
