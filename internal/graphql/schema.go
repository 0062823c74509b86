package graphql

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

//go:embed schema.graphqls
var schemaTemplate string

// Placeholders of the schema template. Each one expands to text generated from the game
// catalog.
var placeholders = []struct {
	token    string
	generate func(games []string) string
}{
	{"BOOSTER_QUERY", boosterFields},
}

func boosterFields(games []string) string {
	lines := make([]string, len(games))
	for i, game := range games {
		lines[i] = "  " + game + ": [GameBooster]"
	}
	return strings.Join(lines, "\n")
}

var leftoverRE = regexp.MustCompile(`%[A-Z_]+%`)

// LoadTemplate reads the schema template from path, or returns the built-in one for an
// empty path.
func LoadTemplate(path string) (string, error) {
	if path == "" {
		return schemaTemplate, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("schema template unreadable: %w", err)
	}
	return string(b), nil
}

// Assemble substitutes every placeholder of template. The output only depends on the
// inputs, games keep their order.
func Assemble(template string, games []string) (string, error) {
	schema := template
	for _, p := range placeholders {
		token := "%" + p.token + "%"
		if !strings.Contains(schema, token) {
			return "", fmt.Errorf("schema template lacks placeholder %s", token)
		}
		schema = strings.Replace(schema, token, p.generate(games), 1)
	}
	if left := leftoverRE.FindString(schema); left != "" {
		return "", fmt.Errorf("schema placeholder %s left unsubstituted", left)
	}
	return schema, nil
}

// BuildSchema assembles and validates the schema. Any error is a startup failure.
func BuildSchema(template string, games []string) (*ast.Schema, string, error) {
	src, err := Assemble(template, games)
	if err != nil {
		return nil, "", err
	}
	schema, gqlErr := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphqls", Input: src})
	if gqlErr != nil {
		return nil, "", fmt.Errorf("assembled schema invalid: %w", gqlErr)
	}
	return schema, src, nil
}
