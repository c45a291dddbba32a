package launcher

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/solheist/go-pledge/flags"
	"github.com/solheist/go-pledge/inter"
	"github.com/solheist/go-pledge/metrics"
	"github.com/solheist/go-pledge/pledgecore"
	"github.com/solheist/go-pledge/store"
)

// Launch runs the CLI application.
func Launch(args []string) error {
	app := flags.NewApp()
	app.Flags = flags.CommonFlags()
	app.Commands = []cli.Command{
		{
			Name:   "purchase",
			Usage:  "Exchange a pledge contribution for locked tokens at the current phase rate",
			Action: purchaseCmd,
			Flags:  []cli.Flag{flags.AccountFlag, flags.AmountFlag, flags.TimeFlag},
		},
		{
			Name:   "update-reward",
			Usage:  "Accrue vesting rewards for a participant",
			Action: updateRewardCmd,
			Flags:  []cli.Flag{flags.AccountFlag, flags.TimeFlag},
		},
		{
			Name:   "view",
			Usage:  "Report a participant's reward balance",
			Action: viewCmd,
			Flags:  []cli.Flag{flags.AccountFlag},
		},
		{
			Name:   "claim",
			Usage:  "Settle a participant's accrued rewards",
			Action: claimCmd,
			Flags:  []cli.Flag{flags.AccountFlag},
		},
		{
			Name:   "inspect",
			Usage:  "Dump a participant's raw record",
			Action: inspectCmd,
			Flags:  []cli.Flag{flags.AccountFlag},
		},
	}
	return app.Run(args)
}

// env bundles everything a command needs after common setup.
type env struct {
	cfg Config
	log *logrus.Logger
	db  *store.Store
	eng *pledgecore.Engine
}

func makeEnv(ctx *cli.Context) (*env, error) {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return nil, err
	}
	log, err := setupLogging(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Metrics.Enable {
		startMetricsServer(cfg, log)
	}
	db, err := store.New(cfg.Node.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	rules := cfg.Rules()
	log.WithFields(logrus.Fields{
		"network": cfg.Network.Name,
		"datadir": cfg.Node.DataDir,
	}).Info("pledge engine started")
	return &env{
		cfg: cfg,
		log: log,
		db:  db,
		eng: pledgecore.New(rules, log),
	}, nil
}

func (e *env) close() {
	if err := e.db.Close(); err != nil {
		e.log.WithError(err).Warn("failed to close store")
	}
}

func startMetricsServer(cfg Config, log *logrus.Logger) {
	endpoint := net.JoinHostPort(cfg.Metrics.HTTPAddr, strconv.Itoa(cfg.Metrics.HTTPPort))
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	go func() {
		log.WithField("endpoint", endpoint).Info("metrics server started")
		if err := http.ListenAndServe(endpoint, mux); err != nil {
			log.WithError(err).Error("metrics server stopped")
		}
	}()
}

func parseAccount(ctx *cli.Context) (common.Address, error) {
	raw := ctx.String(flags.AccountFlag.Name)
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("invalid account address %q", raw)
	}
	return common.HexToAddress(raw), nil
}

func opTime(ctx *cli.Context) inter.Timestamp {
	if t := ctx.Uint64(flags.TimeFlag.Name); t != 0 {
		return inter.Timestamp(t)
	}
	return inter.FromTime(time.Now())
}

func purchaseCmd(ctx *cli.Context) error {
	e, err := makeEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	account, err := parseAccount(ctx)
	if err != nil {
		return err
	}
	amount := ctx.Uint64(flags.AmountFlag.Name)
	now := opTime(ctx)

	st, err := e.db.GetState(account)
	if err != nil {
		return err
	}
	st, err = e.eng.Purchase(st, amount, now)
	if err != nil {
		return err
	}
	if err := e.db.PutState(account, st); err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "locked tokens: %d\n", st.LockedTokens)
	return nil
}

func updateRewardCmd(ctx *cli.Context) error {
	e, err := makeEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	account, err := parseAccount(ctx)
	if err != nil {
		return err
	}
	now := opTime(ctx)

	st, err := e.db.GetState(account)
	if err != nil {
		return err
	}
	st = e.eng.UpdateReward(st, now)
	if err := e.db.PutState(account, st); err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "reward balance: %d\n", st.RewardBalance)
	return nil
}

func viewCmd(ctx *cli.Context) error {
	e, err := makeEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	account, err := parseAccount(ctx)
	if err != nil {
		return err
	}
	st, err := e.db.GetState(account)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "reward balance: %d\n", e.eng.ViewRewards(st))
	return nil
}

func claimCmd(ctx *cli.Context) error {
	e, err := makeEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	account, err := parseAccount(ctx)
	if err != nil {
		return err
	}
	st, err := e.db.GetState(account)
	if err != nil {
		return err
	}
	claimed := st.RewardBalance
	st, err = e.eng.ClaimRewards(st, func(amount uint64) error {
		return e.db.Credit(account, amount)
	})
	if err != nil {
		return err
	}
	if err := e.db.PutState(account, st); err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "claimed rewards: %d\n", claimed)
	return nil
}

func inspectCmd(ctx *cli.Context) error {
	e, err := makeEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	account, err := parseAccount(ctx)
	if err != nil {
		return err
	}
	st, err := e.db.GetState(account)
	if err != nil {
		return err
	}
	claimed, err := e.db.Claimed(account)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "account: %s\n", account.Hex())
	fmt.Fprintf(ctx.App.Writer, "state:   %s\n", st.String())
	fmt.Fprintf(ctx.App.Writer, "claimed: %d\n", claimed)
	return nil
}
