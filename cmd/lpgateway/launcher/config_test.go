package launcher

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/lp-gateway/flags"
	"github.com/rony4d/lp-gateway/inter"
)

// makeConfigs parses args with the gateway flags and merges the configs.
func makeConfigs(t *testing.T, args ...string) (Config, error) {
	var (
		cfg    Config
		cfgErr error
	)
	a := flags.NewApp("test", "test")
	a.Flags = gatewayFlags
	a.Action = func(ctx *cli.Context) error {
		cfg, cfgErr = MakeAllConfigs(ctx)
		return nil
	}
	require.NoError(t, a.Run(append([]string{"lpgateway"}, args...)))
	return cfg, cfgErr
}

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleConfig = `
[Node]
Name = "relay-1"

[Gateway]
Routers = ["axelar", "wormhole"]
SendTimeout = "3s"

[Gateway.Domains]
"evm:1" = ["axelar", "wormhole"]

[Gateway.Endpoints]
axelar = "http://127.0.0.1:9001/relay"

[Queue]
BatchSize = 8

[HTTP]
Enabled = true
Port = 18700
`

func TestMakeAllConfigs_Defaults(t *testing.T) {
	cfg, err := makeConfigs(t)
	require.NoError(t, err)
	require.Equal(t, defaultConfig(), cfg)
}

func TestMakeAllConfigs_FileAndFlags(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	cfg, err := makeConfigs(t, "--config", path, "--http.port", "18800", "--routers", "wormhole, axelar", "--log.verbosity", "5")
	require.NoError(t, err)

	require.Equal(t, "relay-1", cfg.Node.Name)
	require.Equal(t, []string{"wormhole", "axelar"}, cfg.Gateway.Routers)
	require.Equal(t, map[string][]string{"evm:1": {"axelar", "wormhole"}}, cfg.Gateway.Domains)
	require.Equal(t, "http://127.0.0.1:9001/relay", cfg.Gateway.Endpoints["axelar"])
	require.Equal(t, "3s", cfg.Gateway.SendTimeout)
	require.Equal(t, 8, cfg.Queue.BatchSize)
	require.Equal(t, DefaultServiceTick, cfg.Queue.ServiceInterval)
	require.True(t, cfg.HTTP.Enabled)
	require.Equal(t, 18800, cfg.HTTP.Port)
	require.Equal(t, 5, cfg.Logging.Verbosity)
}

func TestMakeAllConfigs_Preset(t *testing.T) {
	cfg, err := makeConfigs(t, "--preset", "lite")
	require.NoError(t, err)
	require.Equal(t, "lite", cfg.Node.Preset)
	require.Equal(t, "memory", cfg.Store.Backend)
	require.Equal(t, "200ms", cfg.Queue.ServiceInterval)
	require.Equal(t, 16, cfg.Queue.BatchSize)
	require.True(t, cfg.Metrics.Enabled)

	// file values win over the preset, flags win over both
	path := writeConfig(t, sampleConfig)
	cfg, err = makeConfigs(t, "--preset", "full", "--config", path, "--store.backend", "memory")
	require.NoError(t, err)
	require.Equal(t, 8, cfg.Queue.BatchSize)
	require.Equal(t, 256, cfg.Store.CacheMB)
	require.Equal(t, "memory", cfg.Store.Backend)

	_, err = makeConfigs(t, "--preset", "archive")
	require.Error(t, err)
}

func TestMakeAllConfigs_PresetFromFile(t *testing.T) {
	path := writeConfig(t, "[Node]\nPreset = \"lite\"\n")
	cfg, err := makeConfigs(t, "--config", path)
	require.NoError(t, err)
	require.Equal(t, "memory", cfg.Store.Backend)
}

func TestMakeAllConfigs_BadFile(t *testing.T) {
	_, err := makeConfigs(t, "--config", writeConfig(t, "[Node]\nColour = \"blue\"\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "Node.Colour")

	_, err = makeConfigs(t, "--config", writeConfig(t, "[Node\n"))
	require.Error(t, err)

	_, err = makeConfigs(t, "--config", filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestMakeAllConfigs_DataDir(t *testing.T) {
	cfg, err := makeConfigs(t, "--datadir", "~/gw")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(GuessHomeDir(), "gw"), cfg.Node.DataDir)

	cfg, err = makeConfigs(t, "--datadir", "/var/lib/gw")
	require.NoError(t, err)
	require.Equal(t, "/var/lib/gw", cfg.Node.DataDir)
}

func TestDumpConfigRoundTrip(t *testing.T) {
	cfg := defaultConfig()
	cfg.Gateway.Routers = []string{"axelar"}
	cfg.Gateway.Domains["evm:42161"] = []string{"axelar"}
	cfg.Gateway.Endpoints["axelar"] = "http://relay"

	var buf bytes.Buffer
	require.NoError(t, toml.NewEncoder(&buf).Encode(&cfg))

	loaded := defaultConfig()
	require.NoError(t, loadConfigFile(writeConfig(t, buf.String()), &loaded))
	require.Equal(t, cfg, loaded)
}

func TestNodeConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Gateway.Routers = []string{"a", "b"}
	cfg.Gateway.Domains = map[string][]string{"evm:1": {"a", "b"}}
	cfg.Queue.ServiceInterval = "250ms"
	cfg.Metrics.Enabled = true

	nodeCfg, err := cfg.NodeConfig()
	require.NoError(t, err)
	require.Equal(t, inter.Local(), nodeCfg.Gateway.Sender.Domain)
	require.Equal(t, inter.MaxIncomingMessageSize, nodeCfg.Gateway.MaxIncomingMessageSize)
	require.Equal(t, []string{"a", "b"}, nodeCfg.Routers.Admitted)
	require.Equal(t, 10*time.Second, nodeCfg.Routers.SendTimeout)
	require.Equal(t, 250*time.Millisecond, nodeCfg.Queue.ServiceInterval)
	require.Equal(t, DefaultQueueBatch, nodeCfg.Queue.BatchSize)
	require.True(t, nodeCfg.EnableMetrics)

	for name, mutate := range map[string]func(*Config){
		"bad sender":   func(c *Config) { c.Gateway.Sender = "nobody" },
		"evm sender":   func(c *Config) { c.Gateway.Sender = "evm:1/0x1111111111111111111111111111111111111111" },
		"bad timeout":  func(c *Config) { c.Gateway.SendTimeout = "soon" },
		"bad interval": func(c *Config) { c.Queue.ServiceInterval = "0s" },
	} {
		t.Run(name, func(t *testing.T) {
			bad := defaultConfig()
			mutate(&bad)
			_, err := bad.NodeConfig()
			require.Error(t, err)
		})
	}
}

const authConfig = `
[Gateway]
Instances = ["evm:1/0x1111111111111111111111111111111111111111"]

[Gateway.Tokens]
axelar = "axelar-secret"

[HTTP]
AdminToken = "file-secret"
`

func TestMakeAllConfigs_Auth(t *testing.T) {
	path := writeConfig(t, authConfig)

	cfg, err := makeConfigs(t, "--config", path)
	require.NoError(t, err)
	require.Equal(t, "file-secret", cfg.HTTP.AdminToken)

	auth := cfg.APIAuth()
	require.Equal(t, "file-secret", auth.AdminToken)
	require.Equal(t, map[inter.RouterID]string{"axelar": "axelar-secret"}, auth.RouterTokens)

	nodeCfg, err := cfg.NodeConfig()
	require.NoError(t, err)
	require.Equal(t, map[string]string{"axelar": "axelar-secret"}, nodeCfg.Routers.Tokens)
	require.Equal(t, []string{"evm:1/0x1111111111111111111111111111111111111111"}, nodeCfg.Instances)

	cfg, err = makeConfigs(t, "--config", path, "--http.admintoken", "flag-secret")
	require.NoError(t, err)
	require.Equal(t, "flag-secret", cfg.HTTP.AdminToken)
}
