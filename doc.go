/*
Package facet is an incremental solid-modeling session engine: it applies
sketch-based features to persistent sessions, composes their results into a
selectable model, and serves meshes and STEP exports of the geometry it built.

It separates the result model (named outputs plus a flat list of selectable
elements) from the geometry kernel behind it. Clients never hold geometry;
they hold opaque handles and query the model with declarative selectors.
This Hexagonal Architecture allows Facet to be embedded in any interface:
CLI, HTTP server, or agent infrastructure.

# Key Features

  - Deterministic selection: predicates narrow, ranking stages tie-break, and
    anything still ambiguous is an error rather than an arbitrary pick.
  - Composable results: each feature yields a partial result that merges onto
    the upstream model with last-writer-wins outputs and superseded-body
    shadowing.
  - State persistence: sessions snapshot to plain data, so any store backend
    (in-memory, Redis) can hold them, with optional TTL eviction.
  - Annotations: datums and geometric tolerances resolve against the model
    and embed into STEP exports.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/carverlab/facet"
		"github.com/carverlab/facet/pkg/feature"
		"github.com/carverlab/facet/pkg/geom"
		"github.com/carverlab/facet/pkg/model"
	)

	func main() {
		eng, err := facet.New()
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		f := feature.Feature{
			ID:        "base",
			Kind:      feature.KindExtrude,
			Profile:   feature.Rectangle{Width: 10, Height: 10},
			Axis:      geom.Vec3{Z: 1},
			Depth:     5,
			ResultKey: feature.DefaultResultKey,
		}

		sessionID, result, err := eng.ApplyFeature(ctx, "", model.NewResult(), f)
		if err != nil {
			log.Fatal(err)
		}

		body := result.Outputs[feature.DefaultResultKey]
		data, err := eng.ExportSTEP(ctx, sessionID, body.Meta.String(model.KeyHandle), "AP242")
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("exported %d bytes", len(data))
	}
*/
package facet
