package launcher

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-evcharge-ledger/flags"
	"github.com/rony4d/go-evcharge-ledger/wallet"
)

// runConfigFromArgs runs MakeAllConfigs with a synthetic CLI context.
func runConfigFromArgs(t *testing.T, args []string) (Config, error) {
	t.Helper()

	app := cli.NewApp()
	app.HideHelp = true
	app.HideVersion = true
	app.Flags = flags.Merge(flags.CommonFlags(), flags.LedgerFlags(), flags.SessionFlags(), flags.KeyFlags())

	var (
		got    Config
		cfgErr error
	)
	app.Action = func(c *cli.Context) error {
		got, cfgErr = MakeAllConfigs(c)
		return nil
	}

	require.NoError(t, app.Run(append([]string{"evledger"}, args...)))
	return got, cfgErr
}

// TestMakeAllConfigs checks each layer: defaults, preset, environment and
// flags, in that order of precedence.
func TestMakeAllConfigs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want func(t *testing.T, cfg Config)
	}{
		{
			name: "defaults",
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, "default", cfg.Preset)
				require.Equal(t, uint(3), cfg.Ledger.Difficulty)
				require.Equal(t, uint64(100), cfg.Ledger.Reward)
				require.Equal(t, uint64(1<<24), cfg.Ledger.MaxNonce)
				require.Equal(t, 3, cfg.Logging.Verbosity)
				require.Equal(t, "text", cfg.Logging.Format)
				require.Equal(t, uint64(5), cfg.Session.Rate)
				require.Equal(t, time.Hour, cfg.Session.MaxDuration)
				require.False(t, cfg.Keys.LightKDF)
				require.Equal(t, wallet.StandardScrypt, cfg.Keys.Scrypt())
			},
		},
		{
			name: "dev preset flag",
			args: []string{"--preset", "dev"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, "dev", cfg.Preset)
				require.Equal(t, uint(2), cfg.Ledger.Difficulty)
				require.Equal(t, uint64(0), cfg.Ledger.MaxNonce)
				require.True(t, cfg.Keys.LightKDF)
			},
		},
		{
			name: "preset from environment",
			env:  map[string]string{"EVLEDGER_PRESET": "test"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, "test", cfg.Preset)
				require.Equal(t, uint(1), cfg.Ledger.Difficulty)
				require.Equal(t, uint64(10), cfg.Ledger.Reward)
			},
		},
		{
			name: "environment overrides preset",
			args: []string{"--preset", "production"},
			env: map[string]string{
				"EVLEDGER_LEDGER_DIFFICULTY":  "4",
				"EVLEDGER_LEDGER_MINETIMEOUT": "90s",
				"EVLEDGER_LOG_FORMAT":         "json",
				"EVLEDGER_SESSION_ENERGY":     "2.25",
				"EVLEDGER_KEY_LIGHTKDF":       "true",
			},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, uint(4), cfg.Ledger.Difficulty)
				require.Equal(t, uint64(1<<32), cfg.Ledger.MaxNonce, "untouched by environment")
				require.Equal(t, 90*time.Second, cfg.Ledger.MineTimeout)
				require.Equal(t, "json", cfg.Logging.Format)
				require.Equal(t, 2.25, cfg.Session.Energy)
				require.True(t, cfg.Keys.LightKDF)
			},
		},
		{
			name: "flags override environment",
			args: []string{
				"--ledger.difficulty", "1",
				"--ledger.reward", "7",
				"--log.verbosity", "5",
				"--log.sentry", "https://key@sentry.example.com/1",
				"--session.ticks", "9",
				"--session.balance", "-3",
			},
			env: map[string]string{
				"EVLEDGER_LEDGER_DIFFICULTY": "4",
				"EVLEDGER_LOG_VERBOSITY":     "1",
			},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, uint(1), cfg.Ledger.Difficulty)
				require.Equal(t, uint64(7), cfg.Ledger.Reward)
				require.Equal(t, 5, cfg.Logging.Verbosity)
				require.Equal(t, "https://key@sentry.example.com/1", cfg.Logging.SentryDSN)
				require.Equal(t, 9, cfg.Session.Ticks)
				require.Equal(t, int64(-3), cfg.Session.Balance)
			},
		},
		{
			name: "keyfile paths are resolved",
			args: []string{"--keyfile", "keys/station.key", "--password", "/run/secrets/pw", "--lightkdf"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, filepath.Join(GuessWorkDir(), "keys/station.key"), cfg.Keys.File)
				require.Equal(t, "/run/secrets/pw", cfg.Keys.PasswordFile)
				require.Equal(t, wallet.LightScrypt, cfg.Keys.Scrypt())
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for k, v := range test.env {
				t.Setenv(k, v)
			}
			cfg, err := runConfigFromArgs(t, test.args)
			require.NoError(t, err)
			test.want(t, cfg)
		})
	}
}

func TestMakeAllConfigsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"unknown preset", []string{"--preset", "archive"}, nil},
		{"difficulty too high", []string{"--ledger.difficulty", "65"}, nil},
		{"negative ticks", []string{"--session.ticks", "-1"}, nil},
		{"malformed environment", nil, map[string]string{"EVLEDGER_LEDGER_REWARD": "lots"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for k, v := range test.env {
				t.Setenv(k, v)
			}
			_, err := runConfigFromArgs(t, test.args)
			require.Error(t, err)
		})
	}
}
