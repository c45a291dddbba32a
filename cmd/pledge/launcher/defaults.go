package launcher

// Defaults bundles the baseline configuration values the launcher uses
// before CLI flags override them.

type Defaults struct {
	Node    NodeDefaults
	Network NetworkDefaults
	Metrics MetricsDefaults
	Logging LoggingDefaults
	Sentry  SentryDefaults
}

// NodeDefaults captures top-level settings of the record-store host.
type NodeDefaults struct {
	DataDir string // filesystem root for the participant record store
}

// NetworkDefaults selects the economic rules preset.
type NetworkDefaults struct {
	Name    string // rules preset name surfaced in logs
	FakeNet bool   // accelerated vesting/phases for local runs
}

// MetricsDefaults controls the Prometheus endpoint.
type MetricsDefaults struct {
	Enable   bool
	HTTPAddr string
	HTTPPort int
}

// LoggingDefaults controls log verbosity and format.
type LoggingDefaults struct {
	Verbosity int    // 0=fatal, 1=error, 2=warn, 3=info, 4=debug, 5=trace
	Format    string // text or json
	Color     bool
}

// SentryDefaults configures optional error reporting.
type SentryDefaults struct {
	DSN string // empty disables the hook
}

// DefaultConfig returns a fully populated Defaults instance.
func DefaultConfig() Defaults {
	return Defaults{
		Node: NodeDefaults{
			DataDir: "~/.pledge",
		},
		Network: NetworkDefaults{
			Name:    "main",
			FakeNet: false,
		},
		Metrics: MetricsDefaults{
			Enable:   false,
			HTTPAddr: "127.0.0.1",
			HTTPPort: 6060,
		},
		Logging: LoggingDefaults{
			Verbosity: 3,
			Format:    "text",
			Color:     true,
		},
		Sentry: SentryDefaults{},
	}
}
