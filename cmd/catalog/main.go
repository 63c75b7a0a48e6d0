package main

import (
	"flag"
	"fmt"
	"os"

	"ply-engine/engine"
)

func main() {
	in := flag.String("in", "", "catalog file to read (.csv or .csv.zst); empty uses the built-in catalog")
	out := flag.String("out", "", "write the catalog here; a .zst suffix compresses it")
	positions := flag.Bool("positions", false, "list every catalogued position")
	flag.Parse()

	var (
		c   *engine.Catalog
		err error
	)
	if *in == "" {
		c = engine.DefaultCatalog()
	} else if c, err = engine.LoadCatalogFile(*in); err != nil {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", *in, err)
		os.Exit(2)
	}

	if err := c.Verify(); err != nil {
		fmt.Fprintf(os.Stderr, "verify: %v\n", err)
		os.Exit(1)
	}

	for _, o := range c.Openings() {
		fmt.Printf("%-24s move<=%d plies=%d\n", o.Name, o.MaxFullmove, len(o.Moves))
	}
	if *positions {
		for _, fen := range c.Positions() {
			fmt.Println(fen)
		}
	}
	fmt.Printf("%d openings, %d positions\n", len(c.Openings()), len(c.Positions()))

	if *out != "" {
		if err := engine.WriteCatalogFile(*out, c); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", *out, err)
			os.Exit(2)
		}
	}
}
