package planboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldline/planboard/types"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	require.Equal(t, types.WorkerFilter{Role: types.RoleWorker, ActiveOnly: true}, cfg.RosterFilter)
	require.Equal(t, "UTC", cfg.Timezone)
	require.Equal(t, 180*24*time.Hour, cfg.SchedulingHorizon)
	require.Equal(t, 30*24*time.Hour, cfg.SchedulingBackfill)
}

func TestSetDefaults(t *testing.T) {
	t.Run("fills in missing values", func(t *testing.T) {
		cfg := Config{}
		SetDefaults(&cfg)

		require.Equal(t, "UTC", cfg.Timezone)
		require.Equal(t, 15*time.Second, cfg.ConfirmationTimeout)
		require.Equal(t, 10*time.Second, cfg.OperationTimeout)
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		cfg := Config{Timezone: "Europe/Berlin", ConfirmationTimeout: time.Minute}
		SetDefaults(&cfg)

		require.Equal(t, "Europe/Berlin", cfg.Timezone)
		require.Equal(t, time.Minute, cfg.ConfirmationTimeout)
	})

	t.Run("leaves the zero roster filter alone", func(t *testing.T) {
		// The zero filter means "match everything" and must not be replaced
		// with the production default.
		cfg := Config{}
		SetDefaults(&cfg)

		require.Equal(t, types.WorkerFilter{}, cfg.RosterFilter)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		cfg := Config{}
		SetDefaults(&cfg)

		return cfg
	}

	t.Run("accepts defaults", func(t *testing.T) {
		cfg := valid()

		require.NoError(t, cfg.Validate())
	})

	t.Run("rejects unknown timezone", func(t *testing.T) {
		cfg := valid()
		cfg.Timezone = "Mars/Olympus_Mons"

		require.Error(t, cfg.Validate())
	})

	t.Run("rejects non-positive horizon", func(t *testing.T) {
		cfg := valid()
		cfg.SchedulingHorizon = -time.Hour

		require.Error(t, cfg.Validate())
	})

	t.Run("rejects negative backfill", func(t *testing.T) {
		cfg := valid()
		cfg.SchedulingBackfill = -time.Hour

		require.Error(t, cfg.Validate())
	})

	t.Run("rejects non-positive confirmation timeout", func(t *testing.T) {
		cfg := valid()
		cfg.ConfirmationTimeout = 0

		require.Error(t, cfg.Validate())
	})

	t.Run("rejects non-positive operation timeout", func(t *testing.T) {
		cfg := valid()
		cfg.OperationTimeout = -time.Second

		require.Error(t, cfg.Validate())
	})
}

func TestConfig_Location(t *testing.T) {
	t.Run("resolves IANA names", func(t *testing.T) {
		cfg := Config{Timezone: "Europe/Berlin"}

		loc, err := cfg.Location()
		require.NoError(t, err)
		require.Equal(t, "Europe/Berlin", loc.String())
	})

	t.Run("empty timezone resolves to UTC", func(t *testing.T) {
		cfg := Config{}

		loc, err := cfg.Location()
		require.NoError(t, err)
		require.Equal(t, time.UTC, loc)
	})
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	require.NoError(t, cfg.Validate())
	require.Less(t, cfg.ConfirmationTimeout, DefaultConfig().ConfirmationTimeout)
	require.Less(t, cfg.OperationTimeout, DefaultConfig().OperationTimeout)
}
