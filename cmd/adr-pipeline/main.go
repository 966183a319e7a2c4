// Command adr-pipeline runs the §4.3 DCT precomputation pipeline end to
// end: load the rule set and candidate points from the store, pair them
// up, compute each pair's availability, and persist the results back into
// the store's dct relation.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vfrnav/adr/internal/aup"
	"github.com/vfrnav/adr/internal/condition"
	"github.com/vfrnav/adr/internal/config"
	"github.com/vfrnav/adr/internal/dct"
	"github.com/vfrnav/adr/internal/evaluator"
	"github.com/vfrnav/adr/internal/model"
	"github.com/vfrnav/adr/internal/routegraph"
	"github.com/vfrnav/adr/internal/store"
	"github.com/vfrnav/adr/internal/terrain"
	"github.com/vfrnav/adr/pkg/geo"
	"github.com/vfrnav/adr/pkg/log"
)

var (
	configPath  = flag.String("config", "", "path to an adr-pipeline YAML config file")
	warningPath = flag.String("warnings", "adr-pipeline.warnings", "path to write the run's PipelineWarning summary")
	maxReachNM  = flag.Float64("max-reach-nm", 150, "largest DCT radius, in NM, any rule in the rule set covers")
	logDir      = flag.String("log-dir", "", "directory for rotating log files; empty logs to stderr only")
	aupCachePath = flag.String("aup-cache", "adr-pipeline.aupcache", "path to the persisted AUP answer cache")
)

func main() {
	flag.Parse()

	logger := log.New(false, "info", *logDir)

	if err := run(logger); err != nil {
		logger.Errorf("adr-pipeline: %v", err)
		os.Exit(1)
	}
}

func run(logger *log.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, err := store.Open(ctx, store.Config{
		Path:      cfg.SQLDSN,
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	now := model.Time(time.Now().Unix())
	cutoff := addDuration(now, cfg.Cutoff)
	futureCutoff := addDuration(now, cfg.FutureCutoff)

	logger.Infof("adr-pipeline: building candidate set over %v", cfg.ECACBBox)
	cands, err := dct.BuildCandidates(ctx, st, cfg.ECACBBox, *maxReachNM)
	if err != nil {
		return fmt.Errorf("build candidates: %w", err)
	}
	pairs := dct.Pairs(cands)
	logger.Infof("adr-pipeline: %d candidates, %d pairs", len(cands), len(pairs))

	rules, err := loadRules(ctx, st, cfg.ECACBBox)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	logger.Infof("adr-pipeline: %d applicable rules", len(rules))

	graph, err := buildGraph(ctx, st, now)
	if err != nil {
		logger.Warnf("adr-pipeline: airway graph unavailable, skipping elision: %v", err)
		graph = nil
	}

	if cfg.AUPURL == "" {
		logger.Warnf("adr-pipeline: no aup_url configured; AUP cache has no backing client, CrossingAirspaceActive evaluates Unknown")
	}
	avail := aup.NewCache(nil, cfg.CacheTTL, *aupCachePath, logger)

	oracle := terrain.Oracle(terrain.NullOracle{})
	if cfg.TerrainURL != "" {
		logger.Warnf("adr-pipeline: terrain_url %q configured but no terrain oracle is wired into this build; using a zero-elevation fallback", cfg.TerrainURL)
	}

	pipeline := &dct.Pipeline{
		Store:        st,
		Workers:      cfg.Workers,
		Rules:        rules,
		Avail:        avail,
		Cutoff:       cutoff,
		FutureCutoff: futureCutoff,
		OracleFor:    func(int) terrain.Oracle { return oracle },
		Graph:        graph,
		Log:          logger,
	}

	warn, err := pipeline.Run(ctx, pairs)
	if warn != nil {
		if serr := warn.Save(*warningPath); serr != nil {
			logger.Warnf("adr-pipeline: save warnings: %v", serr)
		}
	}
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}
	logger.Infof("adr-pipeline: done, warnings written to %s", *warningPath)
	return nil
}

func loadRules(ctx context.Context, st *store.Store, ecacBBox geo.Rect) ([]dct.ApplicableRule, error) {
	objs, err := st.FindAll(ctx, store.Filter{TypeMin: model.KindFlightRestriction, TypeMax: model.KindFlightRestriction}, store.LoadObjectLinked)
	if err != nil {
		return nil, err
	}
	ctxSimplify := condition.SimplifyContext{Bbox: ecacBBox, HasBbox: true}

	var out []dct.ApplicableRule
	for _, o := range objs {
		for i := range o.Slices {
			fr, ok := o.Slices[i].Payload.(*model.FlightRestrictionSlice)
			if !ok || !fr.Enabled {
				continue
			}
			rule := evaluator.PrepareRule(fr, ctxSimplify)
			span := model.TimeInterval{Start: model.TimeUnboundedPast, End: model.TimeUnboundedFuture}
			out = append(out, dct.ApplicableRule{Rule: rule, BBox: fr.BBox_, TimeSpan: span, Table: fr.TimeTable})
		}
	}
	return out, nil
}

// buildGraph loads every route segment valid at t and assembles the
// directed graph airway-preferred elision (§4.3.2 step 4) walks.
func buildGraph(ctx context.Context, st *store.Store, t model.Time) (*routegraph.Graph, error) {
	f := store.Filter{TypeMin: model.KindRouteSegment, TypeMax: model.KindRouteSegment, TMin: t, TMax: t + 1}
	objs, err := st.FindAll(ctx, f, store.LoadObjectLinked)
	if err != nil {
		return nil, err
	}
	g := routegraph.New(t)
	for _, o := range objs {
		for i := range o.Slices {
			seg, ok := o.Slices[i].Payload.(*model.RouteSegmentSlice)
			if !ok {
				continue
			}
			startCoord, sok := pointCoord(seg.Start)
			endCoord, eok := pointCoord(seg.End)
			if !sok || !eok {
				continue
			}
			g.BuildFromSegment(seg.Start.ID, seg.End.ID, seg.Route.ID, startCoord, endCoord, seg.Availability)
		}
	}
	return g, nil
}

func addDuration(t model.Time, d time.Duration) model.Time {
	return model.Time(int64(t) + int64(d/time.Second))
}

func loadConfig() (*config.Config, error) {
	return config.Load(*configPath)
}

func pointCoord(ref model.Ref) (geo.Point, bool) {
	if !ref.Resolved() {
		return geo.Point{}, false
	}
	for i := range ref.Object.Slices {
		switch p := ref.Object.Slices[i].Payload.(type) {
		case *model.NavaidSlice:
			return p.Coord, true
		case *model.DesignatedPointSlice:
			return p.Coord, true
		case *model.AirportSlice:
			return p.Coord, true
		}
	}
	return geo.Point{}, false
}
