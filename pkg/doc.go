// Package pkg provides the core libraries for codecity.
//
// # Overview
//
// Codecity turns a file/directory tree weighted by lines of code and commit
// counts into a code city: every directory becomes a foundation slab that
// its children stand on, every file a building whose footprint follows its
// size and whose color follows its activity. The pkg directory is organized
// into four areas:
//
//  1. Model: [tree], [metrics], [layout], [color], [scene]
//  2. Input and output: [io], [render/svg], [render/nodelink]
//  3. Infrastructure: [config], [cache], [store], [server], [observability]
//  4. Orchestration: [pipeline]
//
// # Architecture
//
// The data flow through codecity:
//
//	CSV / tree literal / checkout / URL
//	         ↓
//	    [io] package (fetch and decode records)
//	         ↓
//	    [tree] package (build and aggregate)
//	         ↓
//	    [metrics] + [layout] packages (heat, dimensions, row packing)
//	         ↓
//	    [scene] package (absolute boxes, pickables, tooltips)
//	         ↓
//	    JSON / SVG / DOT / PNG / PDF, HTTP API, snapshots
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/codecity/pkg/layout"
//	    "github.com/matzehuels/codecity/pkg/metrics"
//	    "github.com/matzehuels/codecity/pkg/scene"
//	    "github.com/matzehuels/codecity/pkg/tree"
//	)
//
//	root := tree.BuildTree([]tree.Record{
//	    {Path: "a/b.txt", LOC: 10, Count: 5},
//	    {Path: "a/c.txt", LOC: 20, Count: 2},
//	    {Path: "d.txt", LOC: 5, Count: 1},
//	})
//	heat := metrics.Normalize(root)
//	res := layout.Compute(root, heat)
//	city := scene.Build(res, heat, scene.DefaultPalette())
//
// Or run the whole pipeline with caching:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "commits.csv",
//	    Formats: []string{pipeline.FormatSVG},
//	})
package pkg
