package main

import (
	"os"

	"github.com/mousdieng/neo4flix/cmd/neo4flix"
)

func main() {
	if err := neo4flix.Execute(); err != nil {
		os.Exit(1)
	}
}
