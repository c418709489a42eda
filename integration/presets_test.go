package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-evcharge-ledger/keys"
	"github.com/rony4d/go-evcharge-ledger/ledger"
)

func TestGetPresetByName(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			preset, err := GetPresetByName(name)
			require.NoError(t, err)
			require.Equal(t, name, preset.Name)
			require.NoError(t, preset.Ledger().Validate())
		})
	}

	_, err := GetPresetByName("archive")
	require.Error(t, err)
	require.Contains(t, err.Error(), "dev, production, test")
}

func TestApplyPreset(t *testing.T) {
	require := require.New(t)

	cfg := ledger.Config{Difficulty: 9, MiningReward: 1, MaxNonce: 5}
	ApplyPreset(&cfg, DevPreset())
	require.Equal(uint(2), cfg.Difficulty)
	require.Equal(uint64(100), cfg.MiningReward)
	require.Equal(uint64(0), cfg.MaxNonce, "dev mining is unbounded")

	ApplyPreset(&cfg, PresetConfig{Name: "partial", MaxNonce: 7})
	require.Equal(uint(2), cfg.Difficulty, "zero difficulty leaves the value")
	require.Equal(uint64(7), cfg.MaxNonce)
}

func TestTestPresetMines(t *testing.T) {
	require := require.New(t)

	bc, err := ledger.NewBlockchain(TestPreset().Ledger())
	require.NoError(err)
	miner, err := keys.Generate()
	require.NoError(err)

	block, err := bc.MinePendingTransactions(context.Background(), miner.Public())
	require.NoError(err)
	require.True(ledger.MeetsDifficulty(block.Hash, 1))
	require.Equal(int64(10), bc.GetBalanceOfAddress(miner.Public()))
}
