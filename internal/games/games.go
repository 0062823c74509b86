// Package games is the catalog of known game types. The standard names drive the
// per-game booster fields of the query schema.
package games

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
)

type GameType struct {
	ID           int    `json:"id"`
	TypeName     string `json:"type_name"`
	DatabaseName string `json:"database_name"`
	CleanName    string `json:"clean_name"`
	StandardName string `json:"standard_name"`
}

//go:embed game_types.json
var catalogJSON []byte

var (
	catalog    []GameType
	byTypeName map[string]GameType
	byID       map[int]GameType
)

func init() {
	if err := json.Unmarshal(catalogJSON, &catalog); err != nil {
		panic(fmt.Sprintf("malformed game_types.json: %v", err))
	}
	byTypeName = make(map[string]GameType, len(catalog))
	byID = make(map[int]GameType, len(catalog))
	for _, g := range catalog {
		byTypeName[g.TypeName] = g
		byID[g.ID] = g
	}
}

// All returns the catalog in file order.
func All() []GameType {
	ret := make([]GameType, len(catalog))
	copy(ret, catalog)
	return ret
}

// StandardNames returns the standard names in catalog order.
func StandardNames() []string {
	ret := make([]string, len(catalog))
	for i, g := range catalog {
		ret[i] = g.StandardName
	}
	return ret
}

// TypeToStandardName maps an upstream type code like BEDWARS to BedWars.
// Unknown codes are returned unchanged.
func TypeToStandardName(typeName string) string {
	if g, ok := byTypeName[typeName]; ok {
		return g.StandardName
	}
	return typeName
}

func ByID(id int) (GameType, bool) {
	g, ok := byID[id]
	return g, ok
}

var nameRE = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

// Validate checks that every name can be used as a schema field name and that no two
// names collide.
func Validate(names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if !nameRE.MatchString(name) {
			return fmt.Errorf("game name %q is not a valid field name", name)
		}
		if seen[name] {
			return fmt.Errorf("game name %q listed twice", name)
		}
		seen[name] = true
	}
	return nil
}
