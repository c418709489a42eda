package launcher

import "time"

// Defaults bundles the baseline values the launcher uses before presets,
// environment and flags override them.
type Defaults struct {
	Preset  string
	Logging LoggingDefaults
	Session SessionDefaults
	Keys    KeyDefaults
}

// LoggingDefaults control the log output format and level.
type LoggingDefaults struct {
	Verbosity int    //	0=fatal .. 5=trace; 3 (info) shows one line per mined block and settlement.
	Format    string //	text for terminals, json for log shippers.
	Color     bool   //	Force ANSI colours in text output.
}

// SessionDefaults describe the demo charging session.
type SessionDefaults struct {
	RatePerKwh    uint64        //	Minor currency units per kWh.
	EnergyPerTick float64       //	kWh reported by each metering tick.
	Ticks         int           //	Metering ticks before the session ends; each tick is settled in its own block.
	MinDuration   time.Duration //	Contract terms lower bound.
	MaxDuration   time.Duration //	Contract terms upper bound.
	Balance       int64         //	Tracked balance the user wallet starts with.
}

// KeyDefaults locate the keyfile used by keygen and inspect-key.
type KeyDefaults struct {
	KeyFile string
}

func DefaultConfig() Defaults {
	return Defaults{
		Preset: "default",
		Logging: LoggingDefaults{
			Verbosity: 3,
			Format:    "text",
			Color:     false,
		},
		Session: SessionDefaults{
			RatePerKwh:    5,
			EnergyPerTick: 1.5,
			Ticks:         4,
			MinDuration:   5 * time.Minute,
			MaxDuration:   time.Hour,
			Balance:       1000,
		},
		Keys: KeyDefaults{
			KeyFile: "evledger.key",
		},
	}
}
