// Prints the schema the server would load, after placeholder substitution.
//
// Usage: schemadump [template file]
package main

import (
	"fmt"
	"os"

	"github.com/slothpixel/sloth/internal/games"
	"github.com/slothpixel/sloth/internal/graphql"
	"github.com/slothpixel/sloth/internal/util/slothlog"
)

func main() {
	path := ""
	switch len(os.Args) {
	case 1:
	case 2:
		path = os.Args[1]
	default:
		slothlog.Fatal("One optional template file argument only")
	}

	template, err := graphql.LoadTemplate(path)
	if err != nil {
		slothlog.FatalE(err, "Exit on schema template")
	}
	_, src, err := graphql.BuildSchema(template, games.StandardNames())
	if err != nil {
		slothlog.FatalE(err, "Exit on schema assembly")
	}
	fmt.Print(src)
}
