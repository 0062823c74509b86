package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/slothpixel/sloth/internal/db"
	"github.com/slothpixel/sloth/internal/model"
	"github.com/slothpixel/sloth/internal/util/slotherr"
	"github.com/slothpixel/sloth/internal/util/timer"
)

var (
	auctionsTimer  = timer.NewMilli("store_auctions")
	auctionIDTimer = timer.NewMilli("store_auction_id")
)

const (
	defaultAuctionLimit = 100
	maxAuctionLimit     = 1000
)

var auctionSortColumns = map[string]string{
	"":             "end_ms",
	"end":          "end_ms",
	"start":        "start_ms",
	"highest_bid":  "highest_bid",
	"starting_bid": "(data->>'starting_bid')::BIGINT",
}

var nowMillis = func() int64 {
	return time.Now().UnixMilli()
}

// queryArgs numbers the positional parameters of a query as they are added.
type queryArgs []interface{}

func (a *queryArgs) add(v interface{}) string {
	*a = append(*a, v)
	return fmt.Sprintf("$%d", len(*a))
}

// QueryAuctionsByFilter pages through the auctions matching params. Pages start at 1.
func (s *Store) QueryAuctionsByFilter(ctx context.Context, params map[string]interface{}) ([]model.Auction, error) {
	defer auctionsTimer.One()()
	var args queryArgs
	var filters []string
	if id := stringParam(params, "id"); id != "" {
		filters = append(filters, "item_id = "+args.add(id))
	}
	if active, ok := boolParam(params, "active"); ok {
		op := "<="
		if active {
			op = ">"
		}
		filters = append(filters, "end_ms "+op+" "+args.add(nowMillis()))
	}
	if category := stringParam(params, "category"); category != "" {
		filters = append(filters, "category = "+args.add(strings.ToLower(category)))
	}
	if rarity := stringParam(params, "rarity"); rarity != "" {
		filters = append(filters, "tier = "+args.add(strings.ToUpper(rarity)))
	}
	from, err := intParam(params, "from", 0)
	if err != nil {
		return nil, err
	}
	to, err := intParam(params, "to", 0)
	if err != nil {
		return nil, err
	}
	filters = append(filters, rangeFilters(&args, from, to)...)

	sortColumn, ok := auctionSortColumns[stringParam(params, "sortBy")]
	if !ok {
		return nil, slotherr.ValidationF("cannot sort auctions by %q", stringParam(params, "sortBy"))
	}
	order := "DESC"
	switch strings.ToLower(stringParam(params, "sortOrder")) {
	case "", "desc":
	case "asc":
		order = "ASC"
	default:
		return nil, slotherr.ValidationF("sortOrder must be asc or desc")
	}

	limit, err := intParam(params, "limit", defaultAuctionLimit)
	if err != nil {
		return nil, err
	}
	if limit < 1 || maxAuctionLimit < limit {
		return nil, slotherr.ValidationF("limit must be between 1 and %d", maxAuctionLimit)
	}
	offset, err := offsetParam(params, limit)
	if err != nil {
		return nil, err
	}

	q := `SELECT data FROM auctions ` + db.Where(filters...) +
		` ORDER BY ` + sortColumn + ` ` + order +
		` LIMIT ` + args.add(limit) + ` OFFSET ` + args.add(offset)
	return s.queryAuctions(ctx, q, args)
}

// QueryAuctionByID returns the auctions of itemID that ended in [from, to], oldest first.
func (s *Store) QueryAuctionByID(ctx context.Context, from, to int64, itemID string) ([]model.Auction, error) {
	defer auctionIDTimer.One()()
	var args queryArgs
	filters := []string{"item_id = " + args.add(itemID)}
	filters = append(filters, rangeFilters(&args, from, to)...)
	q := `SELECT data FROM auctions ` + db.Where(filters...) + ` ORDER BY end_ms ASC`
	return s.queryAuctions(ctx, q, args)
}

func rangeFilters(args *queryArgs, from, to int64) []string {
	var ret []string
	if from != 0 {
		ret = append(ret, "end_ms >= "+args.add(from))
	}
	if to != 0 {
		ret = append(ret, "end_ms <= "+args.add(to))
	}
	return ret
}

func (s *Store) queryAuctions(ctx context.Context, q string, args queryArgs) ([]model.Auction, error) {
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, slotherr.UpstreamE("auctions query", err)
	}
	defer rows.Close()

	ret := []model.Auction{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, slotherr.UpstreamE("auctions read", err)
		}
		var a model.Auction
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, slotherr.InternalErrE(err)
		}
		ret = append(ret, a)
	}
	if err := rows.Err(); err != nil {
		return nil, slotherr.UpstreamE("auctions read", err)
	}
	return ret, nil
}
