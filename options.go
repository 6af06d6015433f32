package planboard

import "github.com/fieldline/planboard/color"

// Option configures a Projector or Controller with optional dependencies.
type Option func(*componentOptions)

// componentOptions holds optional configuration shared by Projector and Controller.
type componentOptions struct {
	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger
	colors  *color.Assigner
}

// WithHooks sets lifecycle event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewProjector / NewController
//
// Example:
//
//	hooks := &planboard.Hooks{
//	    OnFeedError: func(ctx context.Context, feed string, err error) error {
//	        return showBanner(feed, err)
//	    },
//	}
//	proj, err := planboard.NewProjector(&cfg, workers, jobs, planboard.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *componentOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewProjector / NewController
//
// Example:
//
//	collector := myPrometheusCollector
//	proj, err := planboard.NewProjector(&cfg, workers, jobs, planboard.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *componentOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with slog and zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewProjector / NewController
//
// Example:
//
//	logger := zap.NewExample().Sugar()
//	proj, err := planboard.NewProjector(&cfg, workers, jobs, planboard.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *componentOptions) {
		o.logger = logger
	}
}

// WithColorAssigner sets a custom color assigner.
//
// Use this to pin reserved brand colors or swap the palette. The default is
// color.New() with the built-in palette.
//
// Parameters:
//   - colors: Color assigner used for snapshot workers and events
//
// Returns:
//   - Option: Functional option for NewProjector
//
// Example:
//
//	colors := color.New(color.WithReserved(map[string]types.Color{"W-001": "#005F99"}))
//	proj, err := planboard.NewProjector(&cfg, workers, jobs, planboard.WithColorAssigner(colors))
func WithColorAssigner(colors *color.Assigner) Option {
	return func(o *componentOptions) {
		o.colors = colors
	}
}
