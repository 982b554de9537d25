package launcher

import (
	"path/filepath"

	"github.com/rony4d/lp-gateway/gateway"
	"github.com/rony4d/lp-gateway/inter"
	"github.com/rony4d/lp-gateway/logger"
	"github.com/rony4d/lp-gateway/store"
)

const (
	DefaultHTTPAddr    = "127.0.0.1"
	DefaultHTTPPort    = 18600
	DefaultSendTimeout = "10s"
	DefaultServiceTick = "1s"
	DefaultQueueBatch  = 64
)

// defaultConfig is the configuration before the config file and flags are
// applied.
func defaultConfig() Config {
	return Config{
		Node: NodeConfig{
			DataDir: filepath.Join(GuessHomeDir(), ".lpgateway"),
			Name:    "lpgateway",
		},
		Gateway: GatewayConfig{
			Sender:                 gateway.DefaultConfig().Sender.String(),
			MaxIncomingMessageSize: inter.MaxIncomingMessageSize,
			Domains:                map[string][]string{},
			Endpoints:              map[string]string{},
			Tokens:                 map[string]string{},
			SendTimeout:            DefaultSendTimeout,
		},
		Store: store.DefaultConfig(),
		Queue: QueueConfig{
			ServiceInterval: DefaultServiceTick,
			BatchSize:       DefaultQueueBatch,
		},
		HTTP: HTTPConfig{
			Addr: DefaultHTTPAddr,
			Port: DefaultHTTPPort,
		},
		Logging: logger.DefaultConfig(),
	}
}
