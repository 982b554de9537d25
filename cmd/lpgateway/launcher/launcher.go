// Package launcher is the lpgateway command: it merges configuration, sets
// up logging, assembles the gateway node and serves it until interrupted.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/lp-gateway/api"
	"github.com/rony4d/lp-gateway/flags"
	"github.com/rony4d/lp-gateway/integration"
	"github.com/rony4d/lp-gateway/inter"
	"github.com/rony4d/lp-gateway/logger"
	"github.com/rony4d/lp-gateway/metrics"
)

const shutdownTimeout = 5 * time.Second

var (
	app = flags.NewApp("0.1.0", "the bridge message gateway")

	gatewayFlags = flags.Merge(
		flags.CommonFlags(),
		flags.NodeFlags(),
		flags.RouterFlags(),
		flags.QueueFlags(),
	)

	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "[<file>]",
		Flags:       gatewayFlags,
		Description: "The dumpconfig command shows the effective configuration in TOML.",
	}
)

func init() {
	app.Action = gatewayMain
	app.Flags = gatewayFlags
	app.Commands = []cli.Command{dumpConfigCommand}
}

// Launch runs the command line application.
func Launch(args []string) error {
	return app.Run(args)
}

func gatewayMain(ctx *cli.Context) error {
	if args := ctx.Args(); len(args) > 0 {
		return fmt.Errorf("invalid command: %q", args[0])
	}
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	if err := logger.Setup(cfg.Logging); err != nil {
		return err
	}
	nodeCfg, err := cfg.NodeConfig()
	if err != nil {
		return err
	}
	if cfg.Store.Backend != "memory" {
		if err := ensureDir(cfg.Node.DataDir); err != nil {
			return err
		}
	}

	node, err := integration.NewNode(cfg.Node.DataDir, nodeCfg, integration.NewLogHandler())
	if err != nil {
		return err
	}
	defer node.Close()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(runCtx, cfg, nodeCfg.Gateway.Sender, node)
}

// serve runs the queue service and, when enabled, the HTTP API until ctx is
// done or the API fails.
func serve(ctx context.Context, cfg Config, sender inter.DomainAddress, node *integration.Node) error {
	log := logger.New("launcher").WithField("name", cfg.Node.Name)
	if cfg.Metrics.Enabled {
		metrics.RegisterMetrics()
	}

	errc := make(chan error, 1)
	var srv *http.Server
	if cfg.HTTP.Enabled {
		srv = &http.Server{
			Addr:              net.JoinHostPort(cfg.HTTP.Addr, strconv.Itoa(cfg.HTTP.Port)),
			Handler:           api.NewServer(node.Gateway, node.Queue, sender, cfg.APIAuth()).Handler(cfg.Metrics.Enabled),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.WithField("addr", srv.Addr).Info("HTTP API listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}()
	}

	serviceCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		node.Run(serviceCtx)
	}()

	var err error
	select {
	case <-ctx.Done():
		log.Info("Shutting down")
	case err = <-errc:
		log.WithError(err).Error("HTTP API failed")
	}
	cancel()
	<-done

	if srv != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
			err = shutdownErr
		}
	}
	return err
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	out := ctx.App.Writer
	if ctx.NArg() > 0 {
		f, err := os.Create(ctx.Args().Get(0))
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return toml.NewEncoder(out).Encode(&cfg)
}
