package store

import (
	"encoding/json"
	"strconv"

	"github.com/slothpixel/sloth/internal/util/slotherr"
)

// Parameters come from query arguments: literals decode to int64 or float64, variables may
// stay json.Number.

func stringParam(params map[string]interface{}, name string) string {
	s, _ := params[name].(string)
	return s
}

func boolParam(params map[string]interface{}, name string) (value, ok bool) {
	value, ok = params[name].(bool)
	return
}

func intParam(params map[string]interface{}, name string, def int64) (int64, error) {
	switch v := params[name].(type) {
	case nil:
		return def, nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		if f, err := v.Float64(); err == nil {
			return int64(f), nil
		}
	case string:
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i, nil
		}
	}
	return 0, slotherr.ValidationF("%s must be a number", name)
}

const maxPage = 100000

// offsetParam reads the 1-based page and returns the offset of its first row.
func offsetParam(params map[string]interface{}, limit int64) (int64, error) {
	page, err := intParam(params, "page", 1)
	if err != nil {
		return 0, err
	}
	if page < 1 || maxPage < page {
		return 0, slotherr.ValidationF("page must be between 1 and %d", maxPage)
	}
	return (page - 1) * limit, nil
}
