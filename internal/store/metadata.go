package store

import (
	"context"

	"github.com/slothpixel/sloth/internal/games"
	"github.com/slothpixel/sloth/internal/model"
	"github.com/slothpixel/sloth/internal/util/slotherr"
	"github.com/slothpixel/sloth/internal/util/timer"
)

var metadataTimer = timer.NewMilli("store_metadata")

// FetchMetadata returns every section for a nil selector, else only the one named.
func (s *Store) FetchMetadata(ctx context.Context, selector *string) (*model.Metadata, error) {
	defer metadataTimer.One()()
	section := ""
	if selector != nil {
		section = *selector
	}
	ret := &model.Metadata{}
	switch section {
	case "", "version", "games", "counts":
	default:
		return nil, slotherr.ValidationF("unknown metadata section %q", section)
	}
	if section == "" || section == "version" {
		ret.Version = s.Version
	}
	if section == "" || section == "games" {
		ret.Games = games.StandardNames()
	}
	if section == "" || section == "counts" {
		var players, guilds, auctions int
		err := s.DB.QueryRowContext(ctx, `SELECT
			(SELECT COUNT(*) FROM players),
			(SELECT COUNT(*) FROM guilds),
			(SELECT COUNT(*) FROM auctions)`).Scan(&players, &guilds, &auctions)
		if err != nil {
			return nil, slotherr.UpstreamE("metadata counts", err)
		}
		ret.Counts = map[string]int{"players": players, "guilds": guilds, "auctions": auctions}
	}
	return ret, nil
}
