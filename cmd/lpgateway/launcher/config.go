package launcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/lp-gateway/api"
	"github.com/rony4d/lp-gateway/integration"
	"github.com/rony4d/lp-gateway/inter"
	"github.com/rony4d/lp-gateway/logger"
	"github.com/rony4d/lp-gateway/queue"
	"github.com/rony4d/lp-gateway/store"
)

// Config aggregates every subsystem's configuration the launcher needs. It is
// the shape of the TOML config file.
type Config struct {
	Node    NodeConfig
	Gateway GatewayConfig
	Store   store.Config
	Queue   QueueConfig
	HTTP    HTTPConfig
	Metrics MetricsConfig
	Logging logger.Config
}

type NodeConfig struct {
	DataDir string
	Name    string
	Preset  string
}

type GatewayConfig struct {
	// Sender is the local account outbound messages are sent from.
	Sender                 string
	MaxIncomingMessageSize int
	// Routers is the admitted router list. Leaving it out keeps the stored
	// list, an empty list disables the gateway.
	Routers []string
	// Domains maps "evm:<chainID>" to the routers serving that domain.
	Domains map[string][]string
	// Endpoints maps a router to its relay URL.
	Endpoints map[string]string
	// Tokens maps a router to the bearer token it authenticates with.
	Tokens      map[string]string
	SendTimeout string
	// Instances are the foreign gateway instances allowed to send messages.
	Instances []string
}

type QueueConfig struct {
	ServiceInterval string
	BatchSize       int
}

type HTTPConfig struct {
	Enabled bool
	Addr    string
	Port    int
	// AdminToken guards state changing endpoints, which are disabled while
	// it is empty.
	AdminToken string
}

type MetricsConfig struct {
	Enabled bool
}

// MakeAllConfigs merges defaults, the preset, the config file and CLI flag
// overrides, in that order of increasing priority.
func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig()

	file := ctx.String("config")
	if file != "" {
		if err := loadConfigFile(file, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", file, err)
		}
	}

	preset := cfg.Node.Preset
	if ctx.IsSet("preset") {
		preset = ctx.String("preset")
	}
	if preset != "" {
		if err := applyPreset(&cfg, preset); err != nil {
			return Config{}, err
		}
		// values set explicitly in the file win over the preset
		if file != "" {
			if err := loadConfigFile(file, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to load config file %s: %w", file, err)
			}
		}
		cfg.Node.Preset = preset
	}

	applyCLIOverrides(ctx, &cfg)
	return cfg, nil
}

// NodeConfig converts the file level config into the node assembly config.
func (c Config) NodeConfig() (integration.Config, error) {
	res := integration.DefaultConfig()

	sender, err := inter.ParseDomainAddress(c.Gateway.Sender)
	if err != nil {
		return res, fmt.Errorf("gateway sender: %w", err)
	}
	if !sender.Domain.IsLocal() {
		return res, fmt.Errorf("gateway sender %s is not a local account", sender)
	}
	res.Gateway.Sender = sender
	if c.Gateway.MaxIncomingMessageSize > 0 {
		res.Gateway.MaxIncomingMessageSize = c.Gateway.MaxIncomingMessageSize
	}

	res.Routers.Admitted = c.Gateway.Routers
	res.Routers.Domains = c.Gateway.Domains
	res.Routers.Endpoints = c.Gateway.Endpoints
	res.Routers.Tokens = c.Gateway.Tokens
	res.Instances = c.Gateway.Instances
	if res.Routers.SendTimeout, err = parseDuration("Gateway.SendTimeout", c.Gateway.SendTimeout); err != nil {
		return res, err
	}

	res.Store = c.Store
	res.Queue = queue.Config{BatchSize: c.Queue.BatchSize}
	if res.Queue.ServiceInterval, err = parseDuration("Queue.ServiceInterval", c.Queue.ServiceInterval); err != nil {
		return res, err
	}
	if res.Queue.ServiceInterval <= 0 {
		return res, errors.New("queue service interval must be positive")
	}
	res.EnableMetrics = c.Metrics.Enabled
	return res, nil
}

// APIAuth returns the credentials the HTTP API accepts.
func (c Config) APIAuth() api.Auth {
	tokens := make(map[inter.RouterID]string, len(c.Gateway.Tokens))
	for router, token := range c.Gateway.Tokens {
		tokens[inter.RouterID(router)] = token
	}
	return api.Auth{RouterTokens: tokens, AdminToken: c.HTTP.AdminToken}
}

func parseDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// -----------------------------------------------------------------------------
// Config-file / CLI wiring
// -----------------------------------------------------------------------------

func loadConfigFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func applyPreset(cfg *Config, name string) error {
	preset, err := integration.GetPresetByName(name)
	if err != nil {
		return err
	}
	merged := integration.Config{Store: cfg.Store}
	integration.ApplyPreset(&merged, preset)

	cfg.Store = merged.Store
	if merged.Queue.ServiceInterval > 0 {
		cfg.Queue.ServiceInterval = merged.Queue.ServiceInterval.String()
	}
	if merged.Queue.BatchSize > 0 {
		cfg.Queue.BatchSize = merged.Queue.BatchSize
	}
	cfg.Metrics.Enabled = merged.EnableMetrics
	return nil
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) {
	if ctx.IsSet("datadir") {
		cfg.Node.DataDir = resolvePath(ctx.String("datadir"))
	}
	if ctx.IsSet("identity") {
		cfg.Node.Name = ctx.String("identity")
	}

	if ctx.IsSet("sender") {
		cfg.Gateway.Sender = ctx.String("sender")
	}
	if ctx.IsSet("routers") {
		cfg.Gateway.Routers = splitCSV(ctx.String("routers"))
		if cfg.Gateway.Routers == nil {
			cfg.Gateway.Routers = []string{}
		}
	}
	if ctx.IsSet("router.timeout") {
		cfg.Gateway.SendTimeout = ctx.Duration("router.timeout").String()
	}
	if ctx.IsSet("maxmsgsize") {
		cfg.Gateway.MaxIncomingMessageSize = ctx.Int("maxmsgsize")
	}

	if ctx.IsSet("store.backend") {
		cfg.Store.Backend = ctx.String("store.backend")
	}
	if ctx.IsSet("cache") {
		cfg.Store.CacheMB = ctx.Int("cache")
	}
	if ctx.IsSet("store.handles") {
		cfg.Store.Handles = ctx.Int("store.handles")
	}

	if ctx.IsSet("queue.interval") {
		cfg.Queue.ServiceInterval = ctx.Duration("queue.interval").String()
	}
	if ctx.IsSet("queue.batch") {
		cfg.Queue.BatchSize = ctx.Int("queue.batch")
	}

	if ctx.Bool("http") {
		cfg.HTTP.Enabled = true
	}
	if ctx.IsSet("http.addr") {
		cfg.HTTP.Addr = ctx.String("http.addr")
	}
	if ctx.IsSet("http.port") {
		cfg.HTTP.Port = ctx.Int("http.port")
	}
	if token := ctx.String("http.admintoken"); token != "" {
		cfg.HTTP.AdminToken = token
	}
	if ctx.Bool("metrics") {
		cfg.Metrics.Enabled = true
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
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create datadir %s: %w", dir, err)
	}
	return nil
}

func resolvePath(p string) string {
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func splitCSV(raw string) []string {
	var res []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			res = append(res, part)
		}
	}
	return res
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
