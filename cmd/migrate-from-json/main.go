// migrate-from-json is a one-time batch tool reading a legacy JSON export
// and emitting the nested product/build JSON shape on stdout.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"belt-and-braces/internal/migrate"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate-from-json datafile.json")
		os.Exit(2)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "migrate-from-json: %v\n", err)
		os.Exit(1)
	}

	var entries []migrate.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		fmt.Fprintf(os.Stderr, "migrate-from-json: %v\n", err)
		os.Exit(1)
	}

	products, err := migrate.Convert(entries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "migrate-from-json: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "migrate-from-json: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(out))
}
