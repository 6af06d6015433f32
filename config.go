package planboard

import (
	"fmt"
	"time"

	"github.com/fieldline/planboard/types"
)

// Config is the configuration for the Projector and Controller.
//
// All duration fields accept standard Go duration strings like "30s", "5m", "1h".
type Config struct {
	// RosterFilter selects which workers appear in snapshots. The zero value
	// matches every worker document; DefaultConfig() restricts the view to
	// active field workers, which is what the timeline renders.
	//
	// Note: SetDefaults never touches this field, because the zero value
	// ("match everything") is itself a meaningful choice.
	RosterFilter types.WorkerFilter `yaml:"-"`

	// Timezone interprets zone-less raw date/time values from job documents.
	// Must be an IANA name ("Europe/Berlin") or "UTC"/"Local".
	Timezone string `yaml:"timezone"`

	// SchedulingHorizon is how far into the future a mutation interval may
	// reach. Intervals ending beyond now+SchedulingHorizon are rejected
	// before the store is contacted.
	SchedulingHorizon time.Duration `yaml:"schedulingHorizon"`

	// SchedulingBackfill is how far into the past a mutation interval may
	// reach. Intervals starting before now-SchedulingBackfill are rejected.
	SchedulingBackfill time.Duration `yaml:"schedulingBackfill"`

	// ConfirmationTimeout bounds how long the controller waits to observe an
	// accepted mutation back in a snapshot before raising a
	// pending-confirmation warning instead of hanging indefinitely.
	ConfirmationTimeout time.Duration `yaml:"confirmationTimeout"`

	// OperationTimeout is the timeout for individual store calls.
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// StartupTimeout is the maximum time to wait for feed subscriptions to be
	// established during Start.
	StartupTimeout time.Duration `yaml:"startupTimeout"`

	// ShutdownTimeout is the maximum time Stop waits for background
	// goroutines to drain.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		RosterFilter:        types.WorkerFilter{Role: types.RoleWorker, ActiveOnly: true},
		Timezone:            "UTC",
		SchedulingHorizon:   180 * 24 * time.Hour,
		SchedulingBackfill:  30 * 24 * time.Hour,
		ConfirmationTimeout: 15 * time.Second,
		OperationTimeout:    10 * time.Second,
		StartupTimeout:      30 * time.Second,
		ShutdownTimeout:     10 * time.Second,
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Timezone == "" {
		cfg.Timezone = defaults.Timezone
	}
	if cfg.SchedulingHorizon == 0 {
		cfg.SchedulingHorizon = defaults.SchedulingHorizon
	}
	if cfg.SchedulingBackfill == 0 {
		cfg.SchedulingBackfill = defaults.SchedulingBackfill
	}
	if cfg.ConfirmationTimeout == 0 {
		cfg.ConfirmationTimeout = defaults.ConfirmationTimeout
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}
	if cfg.StartupTimeout == 0 {
		cfg.StartupTimeout = defaults.StartupTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	// Note: RosterFilter's zero value is meaningful (match all), so we don't apply a default
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Hard Validation Rules:
//   - Timezone must resolve to a known location
//   - SchedulingHorizon > 0 (a zero horizon forbids every future interval)
//   - SchedulingBackfill >= 0
//   - ConfirmationTimeout > 0 (a zero window would warn on every mutation)
//   - OperationTimeout > 0
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if _, err := cfg.Location(); err != nil {
		return fmt.Errorf("Timezone %q is not a known location: %w", cfg.Timezone, err)
	}

	if cfg.SchedulingHorizon <= 0 {
		return fmt.Errorf("SchedulingHorizon must be > 0, got %v", cfg.SchedulingHorizon)
	}

	if cfg.SchedulingBackfill < 0 {
		return fmt.Errorf("SchedulingBackfill must be >= 0, got %v", cfg.SchedulingBackfill)
	}

	if cfg.ConfirmationTimeout <= 0 {
		return fmt.Errorf("ConfirmationTimeout must be > 0, got %v", cfg.ConfirmationTimeout)
	}

	if cfg.OperationTimeout <= 0 {
		return fmt.Errorf("OperationTimeout must be > 0, got %v", cfg.OperationTimeout)
	}

	return nil
}

// ValidateWithWarnings checks configuration and logs warnings for non-recommended values.
//
// This is called after Validate() in NewProjector() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	// Warn if the confirmation window is shorter than a single store call is
	// allowed to take; every slow mutation would then raise a false warning.
	if cfg.ConfirmationTimeout < cfg.OperationTimeout {
		logger.Warn(
			"ConfirmationTimeout is below OperationTimeout",
			"confirmationTimeout", cfg.ConfirmationTimeout,
			"operationTimeout", cfg.OperationTimeout,
			"recommended", cfg.OperationTimeout,
		)
	}

	if cfg.SchedulingBackfill > cfg.SchedulingHorizon {
		logger.Warn(
			"SchedulingBackfill exceeds SchedulingHorizon, past edits will be accepted further back than future ones",
			"backfill", cfg.SchedulingBackfill,
			"horizon", cfg.SchedulingHorizon,
		)
	}
}

// Location resolves the configured timezone.
//
// Returns:
//   - *time.Location: The resolved location (UTC for an empty Timezone)
//   - error: Resolution failure for unknown names
func (cfg *Config) Location() (*time.Location, error) {
	if cfg.Timezone == "" {
		return time.UTC, nil
	}

	return time.LoadLocation(cfg.Timezone)
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Test timings are 10-100x faster than production defaults to enable
// rapid iteration without sacrificing test coverage. Use DefaultConfig()
// for production deployments.
//
// Returns:
//   - Config: Configuration with fast timings for tests
//
// Example:
//
//	cfg := planboard.TestConfig()
//	proj, err := planboard.NewProjector(&cfg, workerFeed, jobFeed)
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.ConfirmationTimeout = 500 * time.Millisecond // 30x faster
	cfg.OperationTimeout = 250 * time.Millisecond    // 40x faster
	cfg.StartupTimeout = 2 * time.Second             // 15x faster
	cfg.ShutdownTimeout = 1 * time.Second            // 10x faster

	return cfg
}
