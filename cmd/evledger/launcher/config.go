// This file maps environment and CLI context onto the launcher config.

package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-evcharge-ledger/integration"
	"github.com/rony4d/go-evcharge-ledger/ledger"
	"github.com/rony4d/go-evcharge-ledger/wallet"
)

// EnvPrefix prefixes every environment variable the launcher reads, e.g.
// EVLEDGER_LEDGER_DIFFICULTY or EVLEDGER_LOG_FORMAT.
const EnvPrefix = "EVLEDGER"

// Config aggregates every subsystem's configuration the launcher needs.
type Config struct {
	Preset  string
	Logging LoggingConfig `envconfig:"LOG"`
	Ledger  LedgerConfig  `envconfig:"LEDGER"`
	Session SessionConfig `envconfig:"SESSION"`
	Keys    KeyConfig     `envconfig:"KEY"`
}

type LoggingConfig struct {
	Verbosity int
	Format    string
	Color     bool
	SentryDSN string `envconfig:"SENTRY"`
}

type LedgerConfig struct {
	Difficulty  uint
	Reward      uint64
	MaxNonce    uint64
	MineTimeout time.Duration
}

type SessionConfig struct {
	Rate        uint64
	Energy      float64
	Ticks       int
	MinDuration time.Duration
	MaxDuration time.Duration
	Balance     int64
}

type KeyConfig struct {
	File         string
	PasswordFile string `envconfig:"PASSWORD"`
	LightKDF     bool
}

// LedgerParams converts to the ledger's own config type.
func (c LedgerConfig) LedgerParams() ledger.Config {
	return ledger.Config{
		Difficulty:   c.Difficulty,
		MiningReward: c.Reward,
		MaxNonce:     c.MaxNonce,
	}
}

// Scrypt returns the KDF parameters for new keyfiles.
func (c KeyConfig) Scrypt() wallet.ScryptParams {
	if c.LightKDF {
		return wallet.LightScrypt
	}
	return wallet.StandardScrypt
}

// -----------------------------------------------------------------------------
// Default config + builders
// -----------------------------------------------------------------------------

func defaultConfig() Config {
	d := DefaultConfig()
	l := ledger.DefaultConfig()
	return Config{
		Preset: d.Preset,
		Logging: LoggingConfig{
			Verbosity: d.Logging.Verbosity,
			Format:    d.Logging.Format,
			Color:     d.Logging.Color,
		},
		Ledger: LedgerConfig{
			Difficulty: l.Difficulty,
			Reward:     l.MiningReward,
			MaxNonce:   l.MaxNonce,
		},
		Session: SessionConfig{
			Rate:        d.Session.RatePerKwh,
			Energy:      d.Session.EnergyPerTick,
			Ticks:       d.Session.Ticks,
			MinDuration: d.Session.MinDuration,
			MaxDuration: d.Session.MaxDuration,
			Balance:     d.Session.Balance,
		},
		Keys: KeyConfig{
			File: d.Keys.KeyFile,
		},
	}
}

// MakeAllConfigs layers defaults, the selected preset, EVLEDGER_* environment
// variables and finally explicitly set CLI flags into one config.
func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig()

	if name, ok := os.LookupEnv(EnvPrefix + "_PRESET"); ok {
		cfg.Preset = name
	}
	if ctx.IsSet("preset") {
		cfg.Preset = ctx.String("preset")
	}
	preset, err := integration.GetPresetByName(cfg.Preset)
	if err != nil {
		return Config{}, err
	}
	applyPreset(&cfg, preset)

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("read %s_* environment: %w", EnvPrefix, err)
	}

	applyCLIOverrides(ctx, &cfg)

	if err := cfg.Ledger.LedgerParams().Validate(); err != nil {
		return Config{}, err
	}
	if cfg.Session.Ticks < 0 {
		return Config{}, fmt.Errorf("session ticks must not be negative, got %d", cfg.Session.Ticks)
	}
	return cfg, nil
}

// -----------------------------------------------------------------------------
// Preset / CLI wiring
// -----------------------------------------------------------------------------

func applyPreset(cfg *Config, preset integration.PresetConfig) {
	params := cfg.Ledger.LedgerParams()
	integration.ApplyPreset(&params, preset)
	cfg.Ledger.Difficulty = params.Difficulty
	cfg.Ledger.Reward = params.MiningReward
	cfg.Ledger.MaxNonce = params.MaxNonce
	cfg.Keys.LightKDF = preset.EnableLightKDF
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) {
	if ctx.IsSet("preset") {
		cfg.Preset = ctx.String("preset")
	}

	if ctx.IsSet("log.format") {
		cfg.Logging.Format = ctx.String("log.format")
	}
	if ctx.IsSet("log.verbosity") {
		cfg.Logging.Verbosity = ctx.Int("log.verbosity")
	}
	if ctx.IsSet("log.color") {
		cfg.Logging.Color = ctx.Bool("log.color")
	}
	if ctx.IsSet("log.sentry") {
		cfg.Logging.SentryDSN = ctx.String("log.sentry")
	}

	if ctx.IsSet("ledger.difficulty") {
		cfg.Ledger.Difficulty = ctx.Uint("ledger.difficulty")
	}
	if ctx.IsSet("ledger.reward") {
		cfg.Ledger.Reward = ctx.Uint64("ledger.reward")
	}
	if ctx.IsSet("ledger.maxnonce") {
		cfg.Ledger.MaxNonce = ctx.Uint64("ledger.maxnonce")
	}
	if ctx.IsSet("ledger.minetimeout") {
		cfg.Ledger.MineTimeout = ctx.Duration("ledger.minetimeout")
	}

	if ctx.IsSet("session.rate") {
		cfg.Session.Rate = ctx.Uint64("session.rate")
	}
	if ctx.IsSet("session.energy") {
		cfg.Session.Energy = ctx.Float64("session.energy")
	}
	if ctx.IsSet("session.ticks") {
		cfg.Session.Ticks = ctx.Int("session.ticks")
	}
	if ctx.IsSet("session.minduration") {
		cfg.Session.MinDuration = ctx.Duration("session.minduration")
	}
	if ctx.IsSet("session.maxduration") {
		cfg.Session.MaxDuration = ctx.Duration("session.maxduration")
	}
	if ctx.IsSet("session.balance") {
		cfg.Session.Balance = ctx.Int64("session.balance")
	}

	if ctx.IsSet("keyfile") {
		cfg.Keys.File = resolvePath(ctx.String("keyfile"))
	}
	if ctx.IsSet("password") {
		cfg.Keys.PasswordFile = resolvePath(ctx.String("password"))
	}
	if ctx.IsSet("lightkdf") {
		cfg.Keys.LightKDF = ctx.Bool("lightkdf")
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func resolvePath(p string) string {
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
