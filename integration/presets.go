// Package integration provides named ledger presets. A preset bundles the
// proof-of-work difficulty, the mining reward, the bound on a single nonce
// search and the keyfile KDF strength into one profile, so operators pick
// "dev" or "production" instead of tuning each flag.
//
// Usage:
//
//	preset, err := integration.GetPresetByName("dev")
//	cfg := ledger.DefaultConfig()
//	integration.ApplyPreset(&cfg, preset)
//
// The launcher applies the preset first; environment and CLI flags then
// override individual fields.
package integration

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rony4d/go-evcharge-ledger/ledger"
)

// PresetConfig captures the parameters that vary across profiles.
type PresetConfig struct {
	Name           string // identifier used by --preset
	Difficulty     uint   // leading zero hex characters per block hash
	MiningReward   uint64 // minted per mined block
	MaxNonce       uint64 // nonces tried per block before giving up (0 = unbounded)
	EnableLightKDF bool   // cheap scrypt parameters for keyfiles
}

func DefaultPreset() PresetConfig {
	return PresetConfig{
		Name:           "default",
		Difficulty:     3,       // ~4k hashes per block
		MiningReward:   100,     // same as ledger.DefaultConfig
		MaxNonce:       1 << 24, // give up after ~16M tries
		EnableLightKDF: false,
	}
}

// DevPreset mines almost instantly and uses light keyfile encryption. Never
// use its keyfiles for real funds.
func DevPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "dev"
	cfg.Difficulty = 2
	cfg.MaxNonce = 0
	cfg.EnableLightKDF = true
	return cfg
}

// TestPreset is for automated tests: a single leading zero and a tight bound
// so a broken miner fails fast instead of hanging.
func TestPreset() PresetConfig {
	cfg := DevPreset()
	cfg.Name = "test"
	cfg.Difficulty = 1
	cfg.MiningReward = 10
	cfg.MaxNonce = 1 << 16
	return cfg
}

// ProductionPreset makes a block cost around a million hashes on average.
//
// Trade-offs:
//   - Settlement latency grows with difficulty; every settlement mines a block
//   - The nonce bound turns a pathological search into ErrMiningAborted
func ProductionPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "production"
	cfg.Difficulty = 5
	cfg.MaxNonce = 1 << 32
	return cfg
}

var presets = map[string]func() PresetConfig{
	"default":    DefaultPreset,
	"dev":        DevPreset,
	"test":       TestPreset,
	"production": ProductionPreset,
}

// PresetNames lists the known presets in alphabetical order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPresetByName looks up a preset by its identifier.
//
// Example:
//
//	preset, err := integration.GetPresetByName("production")
//	if err != nil {
//	    log.Fatal(err)
//	}
func GetPresetByName(name string) (PresetConfig, error) {
	mk, ok := presets[name]
	if !ok {
		return PresetConfig{}, fmt.Errorf("unknown preset: %q (valid: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return mk(), nil
}

// ApplyPreset copies the preset's ledger parameters into cfg.
func ApplyPreset(cfg *ledger.Config, preset PresetConfig) {
	if preset.Difficulty > 0 {
		cfg.Difficulty = preset.Difficulty
	}
	if preset.MiningReward > 0 {
		cfg.MiningReward = preset.MiningReward
	}
	// zero is meaningful (unbounded), so always applied
	cfg.MaxNonce = preset.MaxNonce
}

// Ledger returns the ledger configuration the preset describes.
func (p PresetConfig) Ledger() ledger.Config {
	cfg := ledger.DefaultConfig()
	ApplyPreset(&cfg, p)
	return cfg
}
