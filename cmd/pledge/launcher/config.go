package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/solheist/go-pledge/pledge"
)

// Config aggregates every subsystem's configuration the launcher needs.
type Config struct {
	Node    NodeConfig
	Network NetworkConfig
	Metrics MetricsConfig
	Logging LoggingConfig
	Sentry  SentryConfig
}

type NodeConfig struct {
	DataDir string
}

type NetworkConfig struct {
	Name    string
	FakeNet bool
}

type MetricsConfig struct {
	Enable   bool
	HTTPAddr string
	HTTPPort int
}

type LoggingConfig struct {
	Verbosity int
	Format    string
	Color     bool
}

type SentryConfig struct {
	DSN string
}

func defaultConfig() Config {
	def := DefaultConfig()
	return Config{
		Node: NodeConfig{
			DataDir: def.Node.DataDir,
		},
		Network: NetworkConfig{
			Name:    def.Network.Name,
			FakeNet: def.Network.FakeNet,
		},
		Metrics: MetricsConfig{
			Enable:   def.Metrics.Enable,
			HTTPAddr: def.Metrics.HTTPAddr,
			HTTPPort: def.Metrics.HTTPPort,
		},
		Logging: LoggingConfig{
			Verbosity: def.Logging.Verbosity,
			Format:    def.Logging.Format,
			Color:     def.Logging.Color,
		},
		Sentry: SentryConfig{
			DSN: def.Sentry.DSN,
		},
	}
}

// MakeAllConfigs merges defaults and CLI flag overrides into a single
// config struct.
func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig()
	applyCLIOverrides(ctx, &cfg)

	cfg.Node.DataDir = resolvePath(cfg.Node.DataDir)
	if err := ensureDir(cfg.Node.DataDir); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Rules returns the economic rules preset selected by the config.
func (c Config) Rules() pledge.Rules {
	if c.Network.FakeNet {
		return pledge.FakeNetRules()
	}
	return pledge.MainNetRules()
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) {
	if ctx.GlobalIsSet("datadir") {
		cfg.Node.DataDir = ctx.GlobalString("datadir")
	}
	if ctx.GlobalBool("fakenet") {
		cfg.Network.FakeNet = true
		cfg.Network.Name = "fake"
	}

	if ctx.GlobalIsSet("log.format") {
		cfg.Logging.Format = ctx.GlobalString("log.format")
	}
	if ctx.GlobalIsSet("log.verbosity") {
		cfg.Logging.Verbosity = ctx.GlobalInt("log.verbosity")
	}
	if ctx.GlobalIsSet("log.color") {
		cfg.Logging.Color = ctx.GlobalBool("log.color")
	}

	if ctx.GlobalBool("metrics") {
		cfg.Metrics.Enable = true
	}
	if ctx.GlobalIsSet("metrics.addr") {
		cfg.Metrics.HTTPAddr = ctx.GlobalString("metrics.addr")
	}
	if ctx.GlobalIsSet("metrics.port") {
		cfg.Metrics.HTTPPort = ctx.GlobalInt("metrics.port")
	}

	if ctx.GlobalIsSet("sentry.dsn") {
		cfg.Sentry.DSN = ctx.GlobalString("sentry.dsn")
	}
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create datadir %s: %w", dir, err)
	}
	return nil
}

func resolvePath(p string) string {
	if strings.HasPrefix(p, "~") {
		return filepath.Join(guessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(guessWorkDir(), p)
}

func guessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func guessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
