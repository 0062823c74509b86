package store

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/slothpixel/sloth/internal/cache"
	"github.com/slothpixel/sloth/internal/util/slothlog"
	"github.com/slothpixel/sloth/internal/util/slotherr"
	"github.com/slothpixel/sloth/internal/util/timer"
)

var uuidTimer = timer.NewMilli("store_resolve_uuid")

var nameRE = regexp.MustCompile(`^[A-Za-z0-9_]{1,16}$`)

// ResolveUUID accepts a uuid, dashed or not, or a player name. Returns the undashed
// lowercase form.
func (s *Store) ResolveUUID(ctx context.Context, name string) (string, error) {
	defer uuidTimer.One()()
	if id, err := uuid.Parse(name); err == nil {
		return undashed(id), nil
	}
	if !nameRE.MatchString(name) {
		return "", slotherr.ValidationF("invalid player name %q", name)
	}

	key := cache.UUIDKey(strings.ToLower(name))
	cached, ok, err := s.Cache.Get(ctx, key)
	if err != nil {
		logger.WarnT(slothlog.Tags(slothlog.Str("key", key), slothlog.Err(err)), "Cache read failed")
	} else if ok {
		return cached, nil
	}

	raw, err := s.Mojang.UUID(ctx, name)
	if err != nil {
		return "", err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", slotherr.UpstreamE("name service uuid", err)
	}
	ret := undashed(id)
	if err := s.Cache.Set(ctx, key, []byte(ret), s.TTL.UUIDs); err != nil {
		logger.WarnT(slothlog.Tags(slothlog.Str("key", key), slothlog.Err(err)), "Cache write failed")
	}
	return ret, nil
}

func undashed(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")
}
