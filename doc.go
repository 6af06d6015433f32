// Package planboard provides a Go library that projects live worker rosters
// and job assignments into immutable, render-ready schedule snapshots.
//
// Planboard subscribes to full-state worker and job feeds, maintains one
// assignment subscription per roster member, and recomputes the complete
// schedule on every upstream change. Consumers only ever observe fully
// assembled snapshots; partial updates and diffing are internal concerns that
// do not exist at the API boundary.
//
// # Quick Start
//
// Basic usage with default settings:
//
//	import "github.com/fieldline/planboard"
//
//	cfg := planboard.DefaultConfig()
//
//	feed := planboardfeed.NewMemory()
//	proj, err := planboard.NewProjector(&cfg, feed, feed)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := proj.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer proj.Stop(context.Background())
//
//	sub := proj.Subscribe(func(snap planboard.ScheduleSnapshot) {
//	    render(snap)
//	})
//	defer sub.Unsubscribe()
//
// # Key Features
//
//   - Full-State Projection: Every feed emission is the authoritative complete
//     state; snapshots are recomputed totally, never patched
//   - Stable Worker Colors: Color assignment is a pure function of worker ID,
//     stable across restarts and roster churn
//   - Leak-Free Roster Churn: Per-worker subscriptions are created and torn
//     down to exactly track the roster
//   - Guarded Mutations: Job creation and editing run through an explicit
//     Idle → Submitting → Confirmed/Failed state machine; the external store
//     remains the single writer
//
// # Architecture
//
// Data flows one way through three layers:
//
//	WorkerFeed → Roster ─┐
//	                     ├→ Projector → ScheduleSnapshot
//	JobFeed    → Index  ─┘
//
// The roster maintains the current worker set, the index maintains per-worker
// normalized event lists, and the projector combines both with color
// assignment into versioned snapshots. Mutations issued through the
// Controller go to the external JobStore and surface back through the job
// feed like any other upstream edit.
//
// # Advanced Usage
//
// Custom color palette and hooks:
//
//	colors := color.New(
//	    color.WithReserved(map[string]planboard.Color{"W-001": "#1E90FF"}),
//	)
//
//	hooks := &planboard.Hooks{
//	    OnFeedError: func(ctx context.Context, feed string, err error) error {
//	        showBanner(feed, err)
//	        return nil
//	    },
//	}
//
//	proj, err := planboard.NewProjector(&cfg, workerFeed, jobFeed,
//	    planboard.WithColorAssigner(colors),
//	    planboard.WithHooks(hooks),
//	)
//
// See the examples/ directory for complete working examples.
package planboard
