package graphql

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"
)

// marshalLeaf coerces a scalar or enum value to the output form of def. Custom scalars
// pass through as JSON.
func marshalLeaf(def *ast.Definition, v interface{}) (graphql.Marshaler, error) {
	if def.Kind == ast.Enum {
		s, err := graphql.UnmarshalString(v)
		if err != nil {
			return nil, err
		}
		if def.EnumValues.ForName(s) == nil {
			return nil, fmt.Errorf("%q is not a value of %s", s, def.Name)
		}
		return graphql.MarshalString(s), nil
	}

	switch def.Name {
	case "Int":
		i, err := unmarshalInt(v)
		if err != nil {
			return nil, err
		}
		return graphql.MarshalInt64(i), nil
	case "Float":
		f, err := graphql.UnmarshalFloat(v)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%v is not a finite Float", f)
		}
		return graphql.MarshalFloat(f), nil
	case "String":
		switch v.(type) {
		case string, json.Number, bool, int, int64, float64:
		default:
			return nil, fmt.Errorf("%T is not a String", v)
		}
		s, err := graphql.UnmarshalString(v)
		if err != nil {
			return nil, err
		}
		return graphql.MarshalString(s), nil
	case "Boolean":
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%T is not a Boolean", v)
		}
		return graphql.MarshalBoolean(b), nil
	case "ID":
		s, err := graphql.UnmarshalID(v)
		if err != nil {
			return nil, err
		}
		return graphql.MarshalID(s), nil
	}
	return graphql.MarshalAny(v), nil
}

// unmarshalInt accepts integral numbers in any of the decoded JSON forms.
func unmarshalInt(v interface{}) (int64, error) {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%s is not an Int", n)
		}
		v = f
	}
	if f, ok := v.(float64); ok {
		if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			return 0, fmt.Errorf("%v is not an Int", f)
		}
		return int64(f), nil
	}
	return graphql.UnmarshalInt64(v)
}

func decodeJSON(r io.Reader) (interface{}, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// normalize turns adapter results into the generic shapes of decoded JSON so that plain
// data types can be projected by field name. Typed nils become nil.
func normalize(v interface{}) (interface{}, error) {
	switch v.(type) {
	case nil, string, bool, json.Number, float64, int, int64, map[string]interface{}, []interface{}:
		return v, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decodeJSON(bytes.NewReader(b))
}

func projectField(parent interface{}, name string) interface{} {
	m, ok := parent.(map[string]interface{})
	if !ok {
		return nil
	}
	return m[name]
}
