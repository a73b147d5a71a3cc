// Command jsongo inspects and edits the collections of a jsongo database
// stored as JSON files or in SQLite.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
