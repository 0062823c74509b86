package graphql

import (
	"strings"

	"github.com/slothpixel/sloth/internal/util/slotherr"
)

// ItemFilterKind tells how many bazaar products a query selects.
type ItemFilterKind int

const (
	// NoFilter selects every product.
	NoFilter ItemFilterKind = iota
	// SingleItem selects one product and returns it unwrapped.
	SingleItem
	// ItemSet selects products by ID and returns them keyed by ID.
	ItemSet
)

// ItemFilter is the parsed item_id argument of bazaar queries.
type ItemFilter struct {
	Kind ItemFilterKind
	IDs  []string
}

const itemSeparator = ","

// ParseItemFilter accepts nil, a string or a list of strings. A string containing the
// separator is a set, so is any list, even with a single element.
func ParseItemFilter(raw interface{}) (ItemFilter, error) {
	switch v := raw.(type) {
	case nil:
		return ItemFilter{Kind: NoFilter}, nil
	case string:
		if v == "" {
			return ItemFilter{Kind: NoFilter}, nil
		}
		if strings.Contains(v, itemSeparator) {
			return ItemFilter{Kind: ItemSet, IDs: strings.Split(v, itemSeparator)}, nil
		}
		return ItemFilter{Kind: SingleItem, IDs: []string{v}}, nil
	case []string:
		return ItemFilter{Kind: ItemSet, IDs: append([]string{}, v...)}, nil
	case []interface{}:
		ids := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return ItemFilter{}, slotherr.ValidationF("item_id list must contain strings, got %T", e)
			}
			ids = append(ids, s)
		}
		return ItemFilter{Kind: ItemSet, IDs: ids}, nil
	}
	return ItemFilter{}, slotherr.ValidationF("item_id must be a string or a list of strings, got %T", raw)
}

func (f ItemFilter) single() string {
	return f.IDs[0]
}
