package launcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-evcharge-ledger/contract"
	"github.com/rony4d/go-evcharge-ledger/integration"
	"github.com/rony4d/go-evcharge-ledger/ledger"
	"github.com/rony4d/go-evcharge-ledger/settlement"
	"github.com/rony4d/go-evcharge-ledger/wallet"
)

type commandFunc func(ctx *cli.Context, cfg Config, logger *logrus.Logger) error

// withConfig resolves the layered config and the logger before running fn.
func withConfig(fn commandFunc) func(ctx *cli.Context) error {
	return func(ctx *cli.Context) error {
		cfg, err := MakeAllConfigs(ctx)
		if err != nil {
			return err
		}
		logger, err := NewLogger(cfg.Logging, ctx.App.ErrWriter)
		if err != nil {
			return err
		}
		return fn(ctx, cfg, logger)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// demoReport is what the demo command prints.
type demoReport struct {
	Contract contract.State       `json:"contract"`
	Receipts []settlement.Receipt `json:"receipts"`
	Balances map[string]int64     `json:"balances"`
	Blocks   []ledger.BlockView   `json:"blocks"`
}

func demoCommand(ctx *cli.Context, cfg Config, logger *logrus.Logger) error {
	log := logrus.NewEntry(logger)

	// The process owns the single ledger and hands it to every component.
	bc, err := ledger.NewBlockchain(cfg.Ledger.LedgerParams(), ledger.WithLogger(log))
	if err != nil {
		return err
	}
	user, err := wallet.GenerateKeyPair(wallet.WithBalance(cfg.Session.Balance))
	if err != nil {
		return err
	}
	station, err := wallet.GenerateKeyPair()
	if err != nil {
		return err
	}

	c, err := contract.NewChargingContract(
		contract.Parties{UserAddress: user.PublicKey(), StationAddress: station.PublicKey()},
		contract.Terms{
			RatePerKwh:  cfg.Session.Rate,
			MinDuration: cfg.Session.MinDuration,
			MaxDuration: cfg.Session.MaxDuration,
		},
		contract.WithLedger(bc),
		contract.WithLogger(log),
	)
	if err != nil {
		return err
	}
	svc := settlement.NewService(bc, station.PublicKey(), settlement.WithLogger(log))
	meta := contract.SessionMeta{
		SessionID: c.ID(),
		UserID:    user.PublicKey().Short(),
		StationID: station.PublicKey().Short(),
	}

	log.WithFields(logrus.Fields{
		"contract":   c.ID(),
		"difficulty": cfg.Ledger.Difficulty,
		"ticks":      cfg.Session.Ticks,
	}).Info("Starting charging session")

	if err := c.StartCharging(time.Now()); err != nil {
		return err
	}

	var receipts []settlement.Receipt
	for tick := 0; tick < cfg.Session.Ticks; tick++ {
		if err := c.RecordEnergy(cfg.Session.Energy); err != nil {
			return err
		}
		receipt, err := settleDue(svc, c, user, meta, cfg.Ledger.MineTimeout)
		if errors.Is(err, settlement.ErrNothingDue) {
			continue
		}
		if err != nil {
			return fmt.Errorf("settle tick %d: %w", tick, err)
		}
		receipts = append(receipts, receipt)
	}

	if err := c.EndCharging(time.Now()); err != nil {
		return err
	}
	if err := bc.Validate(); err != nil {
		return err
	}

	blocks := bc.Blocks()
	views := make([]ledger.BlockView, len(blocks))
	for i, b := range blocks {
		views[i] = b.View()
	}
	return writeJSON(ctx.App.Writer, demoReport{
		Contract: c.GetContractState(),
		Receipts: receipts,
		Balances: map[string]int64{
			user.PublicKey().String():    bc.GetBalanceOfAddress(user.PublicKey()),
			station.PublicKey().String(): bc.GetBalanceOfAddress(station.PublicKey()),
		},
		Blocks: views,
	})
}

// settleDue mines one block per settlement, bounded by timeout when set.
func settleDue(svc *settlement.Service, c *contract.ChargingContract, payer *wallet.Wallet, meta contract.SessionMeta, timeout time.Duration) (settlement.Receipt, error) {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return svc.SettleDue(ctx, c, payer, meta)
}

type keyReport struct {
	Address  string `json:"address"`
	KeyFile  string `json:"keyfile"`
	Unlocked bool   `json:"unlocked"`
}

func keygenCommand(ctx *cli.Context, cfg Config, logger *logrus.Logger) error {
	w, err := wallet.GenerateKeyPair()
	if err != nil {
		return err
	}
	password, err := readPassword(cfg.Keys.PasswordFile, ctx.App.ErrWriter, true)
	if err != nil {
		return err
	}
	defer clear(password)

	if err := wallet.SaveKeyFile(cfg.Keys.File, w, password, cfg.Keys.Scrypt()); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"module":  "keygen",
		"address": w.PublicKey().Short(),
		"light":   cfg.Keys.LightKDF,
	}).Info("Keyfile written")

	return writeJSON(ctx.App.Writer, keyReport{
		Address:  w.PublicKey().String(),
		KeyFile:  cfg.Keys.File,
		Unlocked: true,
	})
}

func inspectKeyCommand(ctx *cli.Context, cfg Config, logger *logrus.Logger) error {
	addr, err := wallet.ReadKeyFileAddress(cfg.Keys.File)
	if err != nil {
		return err
	}
	report := keyReport{Address: addr.String(), KeyFile: cfg.Keys.File}

	if cfg.Keys.PasswordFile != "" {
		password, err := readPassword(cfg.Keys.PasswordFile, ctx.App.ErrWriter, false)
		if err != nil {
			return err
		}
		defer clear(password)
		if _, err := wallet.LoadKeyFile(cfg.Keys.File, password); err != nil {
			return err
		}
		report.Unlocked = true
	}
	return writeJSON(ctx.App.Writer, report)
}

func presetsCommand(ctx *cli.Context) error {
	tw := tabwriter.NewWriter(ctx.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDIFFICULTY\tREWARD\tMAXNONCE\tLIGHTKDF")
	for _, name := range integration.PresetNames() {
		p, err := integration.GetPresetByName(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%t\n", p.Name, p.Difficulty, p.MiningReward, p.MaxNonce, p.EnableLightKDF)
	}
	return tw.Flush()
}
