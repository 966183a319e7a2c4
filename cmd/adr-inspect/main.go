// Command adr-inspect is a read-only store inspection tool: look up
// objects by ident, by bounding box, or by UUID, and dump their contents.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/vfrnav/adr/internal/store"
	"github.com/vfrnav/adr/pkg/geo"
	"github.com/vfrnav/adr/pkg/log"
	"github.com/vfrnav/adr/pkg/uuid"
)

var (
	dsn    = flag.String("dsn", "adr.sqlite3", "path to the store's SQLite database")
	mode   = flag.String("mode", "startswith", "ident match mode for 'ident': startswith|exact|exact_cs|contains|like")
	linked = flag.Bool("linked", false, "resolve contained Links, with no depth limit, before printing")
)

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
	}

	logger := log.New(false, "warn", "")
	ctx := context.Background()

	st, err := store.Open(ctx, store.Config{Path: *dsn, CacheSize: 256, Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "adr-inspect: open %s: %v\n", *dsn, err)
		os.Exit(1)
	}

	loadMode := store.LoadObject
	if *linked {
		loadMode = store.LoadObjectLinked
	}

	switch flag.Arg(0) {
	case "show":
		cmdShow(ctx, st, flag.Args()[1:], loadMode)
	case "ident":
		cmdIdent(ctx, st, flag.Args()[1:], loadMode)
	case "bbox":
		cmdBbox(ctx, st, flag.Args()[1:], loadMode)
	case "idents":
		cmdIdents(ctx, st)
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: adr-inspect [flags] <command> [args]

commands:
  show <uuid>...                 dump objects by UUID
  ident <pattern>                dump objects matching an ident pattern (-mode selects comparison)
  bbox <swlat> <swlon> <nelat> <nelon>   dump objects intersecting a bbox (degrees)
  idents                          dump the whole ident -> uuid index

flags:
`)
	flag.PrintDefaults()
	os.Exit(1)
}

func cmdShow(ctx context.Context, st *store.Store, args []string, loadMode store.LoadMode) {
	for _, a := range args {
		id, err := uuid.Parse(a)
		if err != nil {
			fmt.Fprintf(os.Stderr, "adr-inspect: %s: %v\n", a, err)
			continue
		}
		o, err := st.Load(ctx, id, loadMode)
		if err != nil {
			fmt.Fprintf(os.Stderr, "adr-inspect: load %s: %v\n", a, err)
			continue
		}
		spew.Dump(o)
	}
}

func cmdIdent(ctx context.Context, st *store.Store, args []string, loadMode store.LoadMode) {
	if len(args) != 1 {
		usage()
	}
	m, err := identMode(*mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "adr-inspect: %v\n", err)
		os.Exit(1)
	}
	objs, err := st.FindByIdent(ctx, args[0], m, loadMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "adr-inspect: find_by_ident: %v\n", err)
		os.Exit(1)
	}
	for _, o := range objs {
		spew.Dump(o)
	}
	fmt.Fprintf(os.Stderr, "%d object(s)\n", len(objs))
}

func cmdBbox(ctx context.Context, st *store.Store, args []string, loadMode store.LoadMode) {
	if len(args) != 4 {
		usage()
	}
	var swlat, swlon, nelat, nelon float64
	if _, err := fmt.Sscanf(args[0], "%f", &swlat); err != nil {
		fmt.Fprintf(os.Stderr, "adr-inspect: swlat: %v\n", err)
		os.Exit(1)
	}
	if _, err := fmt.Sscanf(args[1], "%f", &swlon); err != nil {
		fmt.Fprintf(os.Stderr, "adr-inspect: swlon: %v\n", err)
		os.Exit(1)
	}
	if _, err := fmt.Sscanf(args[2], "%f", &nelat); err != nil {
		fmt.Fprintf(os.Stderr, "adr-inspect: nelat: %v\n", err)
		os.Exit(1)
	}
	if _, err := fmt.Sscanf(args[3], "%f", &nelon); err != nil {
		fmt.Fprintf(os.Stderr, "adr-inspect: nelon: %v\n", err)
		os.Exit(1)
	}
	box := geo.Rect{SWLat: geo.ToFixed(swlat), SWLon: geo.ToFixed(swlon), NELat: geo.ToFixed(nelat), NELon: geo.ToFixed(nelon)}
	objs, err := st.FindByBbox(ctx, box, store.Filter{}, loadMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "adr-inspect: find_by_bbox: %v\n", err)
		os.Exit(1)
	}
	for _, o := range objs {
		spew.Dump(o)
	}
	fmt.Fprintf(os.Stderr, "%d object(s)\n", len(objs))
}

func cmdIdents(ctx context.Context, st *store.Store) {
	idx, err := st.IdentIndex(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "adr-inspect: ident_index: %v\n", err)
		os.Exit(1)
	}
	for _, ident := range idx.Keys() {
		v, _ := idx.Get(ident)
		fmt.Printf("%s -> %v\n", ident, v)
	}
}

func identMode(s string) (store.IdentMode, error) {
	switch s {
	case "startswith":
		return store.IdentStartsWith, nil
	case "exact":
		return store.IdentExact, nil
	case "exact_cs":
		return store.IdentExactCaseSensitive, nil
	case "contains":
		return store.IdentContains, nil
	case "like":
		return store.IdentLike, nil
	default:
		return 0, fmt.Errorf("unknown ident mode %q", s)
	}
}
