package flags

import (
	cli "gopkg.in/urfave/cli.v1"
)

// CommonFlags returns the base set of CLI flags shared across commands.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "datadir",
			Usage: "Data directory for the pledge record store",
			Value: "~/.pledge",
		},
		cli.BoolFlag{
			Name:  "fakenet",
			Usage: "Use accelerated sale rules for local runs",
		},
		cli.StringFlag{
			Name:  "log.format",
			Usage: "Log output format (text|json)",
			Value: "text",
		},
		cli.IntFlag{
			Name:  "log.verbosity",
			Usage: "Logging verbosity (0=fatal,1=error,2=warn,3=info,4=debug,5=trace)",
			Value: 3,
		},
		cli.BoolFlag{
			Name:  "log.color",
			Usage: "Enable colored log output",
		},
		cli.BoolFlag{
			Name:  "metrics",
			Usage: "Enable collection of Prometheus-compatible metrics",
		},
		cli.StringFlag{
			Name:  "metrics.addr",
			Usage: "Metrics server listening interface",
			Value: "127.0.0.1",
		},
		cli.IntFlag{
			Name:  "metrics.port",
			Usage: "Metrics server listening port",
			Value: 6060,
		},
		cli.StringFlag{
			Name:  "sentry.dsn",
			Usage: "Sentry DSN for error reporting (disabled when empty)",
		},
	}
}

// AccountFlag selects the participant record an operation applies to.
var AccountFlag = cli.StringFlag{
	Name:  "account",
	Usage: "Hex address of the participant record",
}

// AmountFlag carries the pledge contribution for a purchase.
var AmountFlag = cli.Uint64Flag{
	Name:  "amount",
	Usage: "Pledge contribution amount",
}

// TimeFlag overrides the operation timestamp (UNIX seconds); zero means now.
var TimeFlag = cli.Uint64Flag{
	Name:  "time",
	Usage: "Operation timestamp as UNIX seconds (0 = current time)",
}
